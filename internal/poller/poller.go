package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/atacradio/atacbot/internal/radio"
)

// TrackFetcher fetches the current now-playing title for a text endpoint.
type TrackFetcher interface {
	NowPlaying(ctx context.Context, textURL string) (string, error)
}

// Poller checks the now-playing endpoint on a fixed interval and invokes
// onChange when the stored title changes. Tick failures are logged and
// swallowed; the loop retries at the next interval with no backoff.
type Poller struct {
	interval time.Duration
	fetcher  TrackFetcher
	state    *radio.State
	onChange func(ctx context.Context, title string)
}

func New(interval time.Duration, fetcher TrackFetcher, state *radio.State, onChange func(ctx context.Context, title string)) *Poller {
	return &Poller{
		interval: interval,
		fetcher:  fetcher,
		state:    state,
		onChange: onChange,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("track poller started", "interval", p.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("track poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	title, err := p.fetcher.NowPlaying(ctx, p.state.TrackNameURL())
	if err != nil {
		slog.Warn("now playing fetch failed", "err", err)
		return
	}
	if !p.state.SetTrack(title) {
		return
	}
	slog.Info("track changed", "title", title)
	if p.onChange != nil {
		p.onChange(ctx, title)
	}
}
