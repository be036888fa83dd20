package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/atacradio/atacbot/internal/metadata"
	"github.com/atacradio/atacbot/internal/radio"
)

func TestBroadcastBeforeAttach(t *testing.T) {
	ps := NewPanelSet()
	ps.Add(&Panel{MessageID: "m1"})
	b := NewBroadcaster(ps, metadata.NewLookup("", ""), radio.NewState())

	// Both fan-outs must be no-ops until Attach binds the session.
	b.UpdatePresence("Some Song")
	b.UpdateAllPanels(context.Background(), "Some Song", StatusNowPlaying, ColorPlaying)

	if ps.Len() != 1 {
		t.Errorf("Len = %d, pre-attach update must not touch panels", ps.Len())
	}
}

func restError(status int, code int) error {
	err := &discordgo.RESTError{
		Response: &http.Response{StatusCode: status},
	}
	if code != 0 {
		err.Message = &discordgo.APIErrorMessage{Code: code}
	}
	return err
}

func TestIsGoneError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unknown message", restError(http.StatusNotFound, discordgo.ErrCodeUnknownMessage), true},
		{"unknown webhook", restError(http.StatusNotFound, discordgo.ErrCodeUnknownWebhook), true},
		{"plain 404", restError(http.StatusNotFound, 0), true},
		{"rate limited", restError(http.StatusTooManyRequests, 0), false},
		{"server error", restError(http.StatusInternalServerError, 0), false},
		{"wrapped", fmt.Errorf("edit panel: %w", restError(http.StatusNotFound, discordgo.ErrCodeUnknownMessage)), true},
		{"not a rest error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isGoneError(tt.err); got != tt.want {
				t.Errorf("isGoneError = %t, want %t", got, tt.want)
			}
		})
	}
}
