package player

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestIsVoiceReady(t *testing.T) {
	if isVoiceReady(nil) {
		t.Error("nil connection reported ready")
	}

	vc := &discordgo.VoiceConnection{}
	if isVoiceReady(vc) {
		t.Error("unready connection reported ready")
	}

	vc.Ready = true
	if isVoiceReady(vc) {
		t.Error("connection without a send channel reported ready")
	}

	vc.OpusSend = make(chan []byte, 1)
	if !isVoiceReady(vc) {
		t.Error("ready connection reported not ready")
	}
}
