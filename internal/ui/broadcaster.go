package ui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/atacradio/atacbot/internal/metadata"
	"github.com/atacradio/atacbot/internal/radio"
)

const (
	presenceState   = "📻 Radio ATAC"
	presenceDetails = "🎶 Musica della città"
)

// Broadcaster pushes the current track to everything user-visible: the
// bot's presence and every open control panel.
type Broadcaster struct {
	session *discordgo.Session
	panels  *PanelSet
	meta    *metadata.Lookup
	state   *radio.State
	ready   atomic.Bool
}

func NewBroadcaster(panels *PanelSet, meta *metadata.Lookup, state *radio.State) *Broadcaster {
	return &Broadcaster{panels: panels, meta: meta, state: state}
}

// Attach binds the gateway session once it is ready. Presence updates
// before this are no-ops.
func (b *Broadcaster) Attach(s *discordgo.Session) {
	b.session = s
	b.ready.Store(true)
}

func (b *Broadcaster) Panels() *PanelSet { return b.panels }

// UpdatePresence sets the "Listening to <track>" status. No-op until the
// session is ready.
func (b *Broadcaster) UpdatePresence(track string) {
	if !b.ready.Load() || b.session == nil {
		return
	}
	if track == "" {
		track = b.state.Track()
	}
	err := b.session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{{
			Name:    track,
			Type:    discordgo.ActivityTypeListening,
			State:   presenceState,
			Details: presenceDetails,
		}},
	})
	if err != nil {
		slog.Warn("presence update failed", "err", err)
	}
}

// RenderPanel builds a panel embed for the current track, reporting whether
// the placeholder attachment is needed in place of real artwork.
func (b *Broadcaster) RenderPanel(ctx context.Context, status string, color int) (*discordgo.MessageEmbed, bool) {
	track := b.state.Track()
	artwork := b.meta.Artwork(ctx, track)
	return PanelEmbed(status, track, color, artwork), artwork == ""
}

// UpdateAllPanels re-renders every tracked panel concurrently. A failing
// panel never aborts its siblings; a panel whose message is gone is dropped
// from the set instead of retried.
func (b *Broadcaster) UpdateAllPanels(ctx context.Context, description, status string, color int) {
	if !b.ready.Load() || b.session == nil {
		return
	}
	panels := b.panels.List()
	if len(panels) == 0 {
		return
	}

	// one artwork lookup per fan-out, not per panel
	artwork := b.meta.Artwork(ctx, b.state.Track())
	embed := PanelEmbed(status, description, color, artwork)

	var wg sync.WaitGroup
	for _, p := range panels {
		wg.Add(1)
		go func(p *Panel) {
			defer wg.Done()
			if err := b.editPanel(p, embed, artwork == ""); err != nil {
				if isGoneError(err) {
					slog.Debug("dropping stale panel", "messageID", p.MessageID)
					b.panels.Remove(p.MessageID)
					return
				}
				slog.Warn("panel update failed", "messageID", p.MessageID, "err", err)
			}
		}(p)
	}
	wg.Wait()
}

func (b *Broadcaster) editPanel(p *Panel, embed *discordgo.MessageEmbed, placeholder bool) error {
	embeds := []*discordgo.MessageEmbed{embed}
	edit := &discordgo.WebhookEdit{Embeds: &embeds}
	if placeholder {
		edit.Files = []*discordgo.File{PlaceholderFile()}
		edit.Attachments = &[]*discordgo.MessageAttachment{}
	}
	_, err := b.session.FollowupMessageEdit(p.Interaction, p.MessageID, edit)
	return err
}

// isGoneError reports whether the edit failed because the message (or its
// webhook) no longer exists or is no longer addressable.
func isGoneError(err error) bool {
	var rerr *discordgo.RESTError
	if !errors.As(err, &rerr) {
		return false
	}
	if rerr.Message != nil {
		switch rerr.Message.Code {
		case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownWebhook:
			return true
		}
	}
	return rerr.Response != nil && rerr.Response.StatusCode == http.StatusNotFound
}
