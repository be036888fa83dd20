package player

import "testing"

func TestTransitions(t *testing.T) {
	tests := []struct {
		from Status
		ev   Event
		want Status
		ok   bool
	}{
		{StatusDisconnected, EventPlay, StatusPlaying, true},
		{StatusDisconnected, EventPause, StatusDisconnected, false},
		{StatusDisconnected, EventResume, StatusDisconnected, false},
		{StatusDisconnected, EventStop, StatusDisconnected, false},

		{StatusPlaying, EventPause, StatusPaused, true},
		{StatusPlaying, EventStop, StatusStopped, true},
		{StatusPlaying, EventPlay, StatusPlaying, false},
		{StatusPlaying, EventResume, StatusPlaying, false},

		{StatusPaused, EventResume, StatusPlaying, true},
		{StatusPaused, EventStop, StatusStopped, true},
		{StatusPaused, EventPause, StatusPaused, false},
		{StatusPaused, EventPlay, StatusPaused, false},

		{StatusStopped, EventPlay, StatusPlaying, true},
		{StatusStopped, EventPause, StatusStopped, false},
		{StatusStopped, EventResume, StatusStopped, false},
		{StatusStopped, EventStop, StatusStopped, false},
	}

	for _, tt := range tests {
		got, ok := Next(tt.from, tt.ev)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Next(%s, %s) = %s, %t; want %s, %t",
				tt.from, tt.ev, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStatusStrings(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusDisconnected, "disconnected"},
		{StatusPlaying, "playing"},
		{StatusPaused, "paused"},
		{StatusStopped, "stopped"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
