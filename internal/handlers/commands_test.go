package handlers

import (
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/atacradio/atacbot/internal/player"
)

func stateSession(t *testing.T, voiceStates []*discordgo.VoiceState) *discordgo.Session {
	t.Helper()
	st := discordgo.NewState()
	if err := st.GuildAdd(&discordgo.Guild{ID: "g1", VoiceStates: voiceStates}); err != nil {
		t.Fatalf("GuildAdd: %v", err)
	}
	return &discordgo.Session{State: st}
}

func TestUserVoiceChannel(t *testing.T) {
	s := stateSession(t, []*discordgo.VoiceState{
		{UserID: "u1", ChannelID: "voice-1"},
		{UserID: "u2", ChannelID: "voice-2"},
	})

	ch, ok := userVoiceChannel(s, "g1", "u1")
	if !ok || ch != "voice-1" {
		t.Errorf("userVoiceChannel(u1) = %q, %t; want voice-1, true", ch, ok)
	}
	ch, ok = userVoiceChannel(s, "g1", "u2")
	if !ok || ch != "voice-2" {
		t.Errorf("userVoiceChannel(u2) = %q, %t; want voice-2, true", ch, ok)
	}
	if _, ok := userVoiceChannel(s, "g1", "u3"); ok {
		t.Error("user outside voice must not resolve a channel")
	}
	if _, ok := userVoiceChannel(s, "g2", "u1"); ok {
		t.Error("unknown guild must not resolve a channel")
	}
}

func TestStartActionFor(t *testing.T) {
	tests := []struct {
		name        string
		connected   bool
		botChannel  string
		userChannel string
		want        startAction
	}{
		{"not connected", false, "", "voice-1", startConnect},
		{"streaming in caller's channel", true, "voice-1", "voice-1", startRepost},
		{"occupied elsewhere", true, "voice-1", "voice-2", startBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := startActionFor(tt.connected, tt.botChannel, tt.userChannel)
			if got != tt.want {
				t.Errorf("startActionFor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResumeActionFor(t *testing.T) {
	tests := []struct {
		name      string
		connected bool
		status    player.Status
		want      resumeAction
	}{
		{"fully disconnected", false, player.StatusDisconnected, resumeReconnect},
		{"paused", true, player.StatusPaused, resumeInPlace},
		{"stream ended", true, player.StatusStopped, resumeRestart},
		{"connected but never started", true, player.StatusDisconnected, resumeRestart},
		{"already playing", true, player.StatusPlaying, resumeNoop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resumeActionFor(tt.connected, tt.status)
			if got != tt.want {
				t.Errorf("resumeActionFor = %d, want %d", got, tt.want)
			}
		})
	}
}
