package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/atacradio/atacbot/internal/config"
	"github.com/atacradio/atacbot/internal/player"
	"github.com/atacradio/atacbot/internal/radio"
	"github.com/atacradio/atacbot/internal/repository"
	"github.com/atacradio/atacbot/internal/ui"
)

const historyLimit = 10

type CommandHandler struct {
	cfg    *config.Config
	repo   *repository.Repo
	player *player.Player
	state  *radio.State
	bc     *ui.Broadcaster
}

func NewCommandHandler(cfg *config.Config, repo *repository.Repo, pl *player.Player, state *radio.State, bc *ui.Broadcaster) *CommandHandler {
	return &CommandHandler{
		cfg:    cfg,
		repo:   repo,
		player: pl,
		state:  state,
		bc:     bc,
	}
}

func (h *CommandHandler) RegisterCommands(s *discordgo.Session, appID, guildID string) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "join",
			Description: "Join your voice channel and start the radio",
		},
		{
			Name:        "leave",
			Description: "Leave the voice channel",
		},
		{
			Name:        "radio",
			Description: "Start the radio stream",
		},
		{
			Name:        "history",
			Description: "Show recently played tracks",
		},
		{
			Name:        "config",
			Description: "Bot settings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "get",
					Description: "Show the current settings",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set-panel-ephemeral",
					Description: "Choose whether control panels are only visible to the requester",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "value",
							Description: "Post panels as ephemeral messages",
							Required:    true,
						},
					},
				},
			},
		},
	}

	for _, cmd := range commands {
		if _, err := s.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
			return fmt.Errorf("create command %s: %w", cmd.Name, err)
		}
	}
	return nil
}

func (h *CommandHandler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(s, i)
	}
}

func (h *CommandHandler) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	switch data.Name {
	case "join", "radio":
		h.cmdStart(s, i)
	case "leave":
		h.cmdLeave(s, i)
	case "history":
		h.cmdHistory(s, i)
	case "config":
		h.cmdConfig(s, i)
	}
}

// cmdStart handles both /join and /radio: connect to the caller's voice
// channel if needed, start the transcode pipeline, and post a control panel.
func (h *CommandHandler) cmdStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" || i.Member == nil {
		h.reply(s, i, "This command only works in a server.", true)
		return
	}

	channelID, ok := userVoiceChannel(s, i.GuildID, i.Member.User.ID)
	if !ok {
		slog.Warn("start requested outside voice", "user", i.Member.User.ID)
		h.reply(s, i, "Please join a voice channel first.", true)
		return
	}

	ephemeral := h.panelEphemeral(i.GuildID)

	switch startActionFor(h.player.Connected(), h.player.ChannelID(), channelID) {
	case startRepost:
		// Already streaming here: just hand the caller a fresh panel.
		h.respondWithPanel(s, i, ephemeral)
		return
	case startBusy:
		h.reply(s, i, "I'm already in another voice channel! Please use /leave first.", true)
		return
	}

	if err := h.deferReply(s, i, ephemeral); err != nil {
		slog.Warn("failed to defer interaction", "error", err)
		return
	}

	if err := h.player.Connect(s, i.GuildID, channelID); err != nil {
		slog.Error("voice connect failed", "channel", channelID, "error", err)
		h.editReply(s, i, "Couldn't connect to your voice channel.")
		return
	}

	if err := h.player.StartStream(context.Background()); err != nil {
		slog.Error("stream start failed", "error", err)
		h.editReply(s, i, "Failed to retrieve stream URL.")
		return
	}

	h.bc.UpdatePresence(h.state.Track())
	h.followupWithPanel(s, i)
}

func (h *CommandHandler) cmdLeave(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		h.reply(s, i, "This command only works in a server.", true)
		return
	}
	if !h.player.Connected() {
		h.reply(s, i, "I'm not in a voice channel.", true)
		return
	}

	h.player.Disconnect()
	h.bc.UpdateAllPanels(context.Background(), ui.StoppedDescription, ui.StatusStopped, ui.ColorStopped)
	h.reply(s, i, "Disconnected from the voice channel.", true)
}

func (h *CommandHandler) cmdHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		h.reply(s, i, "This command only works in a server.", true)
		return
	}

	plays, err := h.repo.ListHistory(context.Background(), i.GuildID, historyLimit)
	if err != nil {
		slog.Error("failed to load track history", "error", err)
		h.reply(s, i, "Couldn't load the track history.", true)
		return
	}
	if len(plays) == 0 {
		h.reply(s, i, "No tracks recorded yet.", true)
		return
	}

	var sb strings.Builder
	for n, play := range plays {
		fmt.Fprintf(&sb, "%d. **%s** — <t:%d:R>\n", n+1, play.Title, play.PlayedAt.Unix())
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Recently played",
		Description: sb.String(),
		Color:       ui.ColorPlaying,
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Warn("failed to respond to interaction", "error", err)
	}
}

func (h *CommandHandler) cmdConfig(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		h.reply(s, i, "This command only works in a server.", true)
		return
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	switch sub.Name {
	case "get":
		settings, err := h.repo.UpsertSettings(context.Background(), i.GuildID)
		if err != nil {
			slog.Error("failed to load settings", "error", err)
			h.reply(s, i, "Couldn't load the settings.", true)
			return
		}
		h.reply(s, i, fmt.Sprintf("Panels ephemeral: **%t**", settings.PanelEphemeral), true)
	case "set-panel-ephemeral":
		if len(sub.Options) == 0 {
			return
		}
		value := sub.Options[0].BoolValue()
		if _, err := h.repo.UpsertSettings(context.Background(), i.GuildID); err != nil {
			slog.Error("failed to load settings", "error", err)
			h.reply(s, i, "Couldn't update the settings.", true)
			return
		}
		err := h.repo.UpdateSettings(context.Background(), &repository.Settings{
			GuildID:        i.GuildID,
			PanelEphemeral: value,
		})
		if err != nil {
			slog.Error("failed to update settings", "error", err)
			h.reply(s, i, "Couldn't update the settings.", true)
			return
		}
		h.reply(s, i, fmt.Sprintf("Panels ephemeral set to **%t**.", value), true)
	}
}

// respondWithPanel answers the interaction directly with a control panel and
// starts tracking it for fan-out edits.
func (h *CommandHandler) respondWithPanel(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) {
	status, color := h.panelStatus()
	embed, placeholder := h.bc.RenderPanel(context.Background(), status, color)
	data := &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: ui.PanelComponents(),
	}
	if placeholder {
		data.Files = []*discordgo.File{ui.PlaceholderFile()}
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		slog.Warn("failed to post control panel", "error", err)
		return
	}

	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		slog.Warn("failed to fetch panel message", "error", err)
		return
	}
	h.bc.Panels().Add(&ui.Panel{Interaction: i.Interaction, MessageID: msg.ID})
}

// followupWithPanel posts a control panel as a followup to an already
// deferred interaction.
func (h *CommandHandler) followupWithPanel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	status, color := h.panelStatus()
	embed, placeholder := h.bc.RenderPanel(context.Background(), status, color)
	params := &discordgo.WebhookParams{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: ui.PanelComponents(),
	}
	if placeholder {
		params.Files = []*discordgo.File{ui.PlaceholderFile()}
	}

	msg, err := s.FollowupMessageCreate(i.Interaction, true, params)
	if err != nil {
		slog.Warn("failed to post control panel", "error", err)
		return
	}
	h.bc.Panels().Add(&ui.Panel{Interaction: i.Interaction, MessageID: msg.ID})
}

func (h *CommandHandler) panelStatus() (string, int) {
	if h.player.Status() == player.StatusPaused {
		return ui.StatusPaused, ui.ColorPaused
	}
	return ui.StatusNowPlaying, ui.ColorPlaying
}

func (h *CommandHandler) panelEphemeral(guildID string) bool {
	settings, err := h.repo.UpsertSettings(context.Background(), guildID)
	if err != nil {
		slog.Warn("failed to load settings, defaulting panels to ephemeral", "error", err)
		return true
	}
	return settings.PanelEphemeral
}

func (h *CommandHandler) reply(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		slog.Warn("failed to respond to interaction", "error", err)
	}
}

func (h *CommandHandler) deferReply(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func (h *CommandHandler) editReply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		slog.Warn("failed to edit interaction response", "error", err)
	}
}

// startAction is what /join and /radio do given where the bot and the
// caller currently sit.
type startAction int

const (
	startConnect startAction = iota // not connected: full connect + stream flow
	startRepost                     // already streaming in the caller's channel
	startBusy                       // occupied elsewhere: reject, no new connection
)

func startActionFor(connected bool, botChannel, userChannel string) startAction {
	if !connected {
		return startConnect
	}
	if botChannel == userChannel {
		return startRepost
	}
	return startBusy
}

// userVoiceChannel reports the voice channel the user currently sits in.
func userVoiceChannel(s *discordgo.Session, guildID, userID string) (string, bool) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return "", false
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, true
		}
	}
	return "", false
}
