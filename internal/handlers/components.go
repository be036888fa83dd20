package handlers

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/atacradio/atacbot/internal/player"
	"github.com/atacradio/atacbot/internal/ui"
)

func (h *CommandHandler) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" || i.Member == nil {
		return
	}

	switch i.MessageComponentData().CustomID {
	case ui.ButtonPause:
		h.btnPause(s, i)
	case ui.ButtonResume:
		h.btnResume(s, i)
	case ui.ButtonStop:
		h.btnStop(s, i)
	}
}

// ackUpdate acknowledges a component interaction without changing the
// message. Every button press gets exactly one acknowledgement.
func (h *CommandHandler) ackUpdate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		slog.Warn("failed to acknowledge component", "error", err)
	}
}

func (h *CommandHandler) btnPause(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := h.player.Pause(); err != nil {
		// Nothing to pause, but the press still needs an ack.
		h.ackUpdate(s, i)
		return
	}

	h.ackUpdate(s, i)
	slog.Info("radio paused", "user", i.Member.User.ID)
	h.bc.UpdateAllPanels(context.Background(), h.state.Track(), ui.StatusPaused, ui.ColorPaused)
}

func (h *CommandHandler) btnResume(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch resumeActionFor(h.player.Connected(), h.player.Status()) {
	case resumeInPlace:
		h.ackUpdate(s, i)
		if err := h.player.Resume(); err != nil {
			slog.Warn("resume failed", "error", err)
			return
		}
		slog.Info("radio resumed", "user", i.Member.User.ID)
		h.bc.UpdateAllPanels(context.Background(), h.state.Track(), ui.StatusNowPlaying, ui.ColorPlaying)
		h.bc.UpdatePresence(h.state.Track())
	case resumeRestart:
		// Connection is up but nothing is playing (stream ended, or the
		// first start failed after connecting): fresh start in place.
		h.ackUpdate(s, i)
		if err := h.player.StartStream(context.Background()); err != nil {
			slog.Error("stream restart failed", "error", err)
			return
		}
		h.bc.UpdateAllPanels(context.Background(), h.state.Track(), ui.StatusNowPlaying, ui.ColorPlaying)
		h.bc.UpdatePresence(h.state.Track())
	case resumeNoop:
		// Already playing.
		h.ackUpdate(s, i)
	case resumeReconnect:
		// Fully disconnected: rejoining needs the presser to be in voice.
		channelID, ok := userVoiceChannel(s, i.GuildID, i.Member.User.ID)
		if !ok {
			h.reply(s, i, "Please join a voice channel first.", true)
			return
		}

		h.ackUpdate(s, i)
		if err := h.player.Connect(s, i.GuildID, channelID); err != nil {
			slog.Error("voice reconnect failed", "channel", channelID, "error", err)
			return
		}
		if err := h.player.StartStream(context.Background()); err != nil {
			slog.Error("stream start failed", "error", err)
			return
		}
		slog.Info("radio restarted", "user", i.Member.User.ID)
		h.bc.UpdateAllPanels(context.Background(), h.state.Track(), ui.StatusNowPlaying, ui.ColorPlaying)
		h.bc.UpdatePresence(h.state.Track())
	}
}

// resumeAction is what the resume button does for the current connection
// and playback status.
type resumeAction int

const (
	resumeReconnect resumeAction = iota // full reconnect, needs the presser in voice
	resumeInPlace                       // lift the pause gate
	resumeRestart                       // connected, no stream: fresh start in place
	resumeNoop                          // already playing
)

func resumeActionFor(connected bool, status player.Status) resumeAction {
	if !connected {
		return resumeReconnect
	}
	switch status {
	case player.StatusPaused:
		return resumeInPlace
	case player.StatusStopped, player.StatusDisconnected:
		return resumeRestart
	default:
		return resumeNoop
	}
}

func (h *CommandHandler) btnStop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.player.Connected() {
		h.ackUpdate(s, i)
		return
	}

	h.player.Stop()
	h.ackUpdate(s, i)
	slog.Info("radio stopped", "user", i.Member.User.ID)
	h.bc.UpdateAllPanels(context.Background(), ui.StoppedDescription, ui.StatusStopped, ui.ColorStopped)
}
