package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atacradio/atacbot/internal/radio"
)

type fakeFetcher struct {
	title string
	err   error
	calls int
}

func (f *fakeFetcher) NowPlaying(ctx context.Context, textURL string) (string, error) {
	f.calls++
	return f.title, f.err
}

func TestTickFiresOnChange(t *testing.T) {
	state := radio.NewState()
	fetcher := &fakeFetcher{title: "New Song"}

	var got []string
	p := New(time.Second, fetcher, state, func(ctx context.Context, title string) {
		got = append(got, title)
	})

	p.tick(context.Background())
	if len(got) != 1 || got[0] != "New Song" {
		t.Fatalf("onChange calls = %v, want one call with New Song", got)
	}
	if state.Track() != "New Song" {
		t.Errorf("Track = %q", state.Track())
	}
}

func TestTickSkipsUnchangedTitle(t *testing.T) {
	state := radio.NewState()
	state.SetTrack("Same Song")
	fetcher := &fakeFetcher{title: "Same Song"}

	fired := 0
	p := New(time.Second, fetcher, state, func(ctx context.Context, title string) {
		fired++
	})

	p.tick(context.Background())
	p.tick(context.Background())
	if fired != 0 {
		t.Errorf("onChange fired %d times, want 0", fired)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls = %d, want 2", fetcher.calls)
	}
}

func TestTickSwallowsFetchErrors(t *testing.T) {
	state := radio.NewState()
	state.SetTrack("Old Song")
	fetcher := &fakeFetcher{err: errors.New("boom")}

	p := New(time.Second, fetcher, state, func(ctx context.Context, title string) {
		t.Error("onChange must not fire on fetch error")
	})

	p.tick(context.Background())
	if state.Track() != "Old Song" {
		t.Errorf("Track = %q, want unchanged", state.Track())
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	state := radio.NewState()
	fetcher := &fakeFetcher{title: "Song"}
	p := New(5*time.Millisecond, fetcher, state, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if fetcher.calls == 0 {
		t.Error("expected at least one poll before cancel")
	}
}
