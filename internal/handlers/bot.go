package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/atacradio/atacbot/internal/config"
	"github.com/atacradio/atacbot/internal/metadata"
	"github.com/atacradio/atacbot/internal/player"
	"github.com/atacradio/atacbot/internal/poller"
	"github.com/atacradio/atacbot/internal/radio"
	"github.com/atacradio/atacbot/internal/repository"
	"github.com/atacradio/atacbot/internal/ui"
)

// Bot wires the Discord session to the radio pipeline and keeps the
// now-playing poller running for the lifetime of the process.
type Bot struct {
	cfg    *config.Config
	repo   *repository.Repo
	radio  *radio.Client
	state  *radio.State
	player *player.Player
	bc     *ui.Broadcaster
	cmd    *CommandHandler

	setupOnce sync.Once
}

func NewBot(cfg *config.Config, repo *repository.Repo) *Bot {
	radioClient := radio.NewClient(cfg.LicenseURL)
	state := radio.NewState()
	meta := metadata.NewLookup(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	pl := player.New(radioClient, state)
	bc := ui.NewBroadcaster(ui.NewPanelSet(), meta, state)

	b := &Bot{
		cfg:    cfg,
		repo:   repo,
		radio:  radioClient,
		state:  state,
		player: pl,
		bc:     bc,
	}
	b.cmd = NewCommandHandler(cfg, repo, pl, state, bc)
	return b
}

func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.BotToken)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("connected to discord", "user", r.User.Username)

		guildID := strconv.FormatInt(b.cfg.GuildID, 10)
		if err := b.cmd.RegisterCommands(s, r.User.ID, guildID); err != nil {
			slog.Error("failed to register commands", "error", err)
		}

		b.bc.Attach(s)
		b.setupOnce.Do(func() {
			go b.setup(ctx)
		})
	})
	dg.AddHandler(b.cmd.HandleInteraction)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	slog.Info("shutting down")
	b.player.Disconnect()
	return nil
}

// setup primes the station manifest and current track before the first poll
// so the presence is accurate as soon as the gateway is up.
func (b *Bot) setup(ctx context.Context) {
	manifest, err := b.radio.Resolve(ctx)
	if err != nil {
		slog.Error("initial stream resolution failed", "error", err)
	} else {
		b.state.SetManifest(manifest)
		title, err := b.radio.NowPlaying(ctx, manifest.TrackNameURL)
		if err != nil {
			slog.Warn("initial track fetch failed", "error", err)
		} else {
			b.state.SetTrack(title)
		}
	}

	b.bc.UpdatePresence(b.state.Track())

	p := poller.New(b.cfg.PollInterval, b.radio, b.state, b.onTrackChange)
	p.Run(ctx)
}

// onTrackChange fans the new title out to the presence and every live
// control panel, and records it for /history.
func (b *Bot) onTrackChange(ctx context.Context, title string) {
	guildID := strconv.FormatInt(b.cfg.GuildID, 10)
	if err := b.repo.AppendHistory(ctx, guildID, title); err != nil {
		slog.Warn("failed to record track history", "error", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.bc.UpdatePresence(title)
	}()
	go func() {
		defer wg.Done()
		b.bc.UpdateAllPanels(ctx, title, ui.StatusNowPlaying, ui.ColorPlaying)
	}()
	wg.Wait()
}
