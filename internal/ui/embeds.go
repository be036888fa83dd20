package ui

import (
	"bytes"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/atacradio/atacbot/assets"
)

const (
	panelTitle  = "🎵 Radio ATAC Controls"
	panelFooter = "❤️🧡 Radio ATAC • Musica della città ❤️🧡"

	StatusNowPlaying = "Now Playing"
	StatusPaused     = "Paused"
	StatusStopped    = "Stopped"

	ColorPlaying = 0x57F287
	ColorPaused  = 0xE67E22
	ColorStopped = 0xED4245
)

// StoppedDescription replaces the track line on every panel when the radio
// is stopped via the panel's stop button.
const StoppedDescription = "Disconnected from voice channel"

// PanelEmbed renders one control panel. An empty artworkURL switches the
// thumbnail to the bundled placeholder attachment.
func PanelEmbed(status, track string, color int, artworkURL string) *discordgo.MessageEmbed {
	thumb := artworkURL
	if thumb == "" {
		thumb = "attachment://" + assets.ThumbnailName
	}
	return &discordgo.MessageEmbed{
		Title: panelTitle,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   status,
				Value:  fmt.Sprintf("```%s```", track),
				Inline: false,
			},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: panelFooter},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: thumb},
	}
}

// PlaceholderFile returns a fresh attachment reader for the placeholder
// thumbnail. A new reader per message, since discordgo consumes it.
func PlaceholderFile() *discordgo.File {
	return &discordgo.File{
		Name:        assets.ThumbnailName,
		ContentType: "image/png",
		Reader:      bytes.NewReader(assets.Thumbnail),
	}
}

// PanelComponents is the pause/resume/stop button row.
func PanelComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.PrimaryButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏸️"},
					CustomID: ButtonPause,
				},
				discordgo.Button{
					Style:    discordgo.SuccessButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏯️"},
					CustomID: ButtonResume,
				},
				discordgo.Button{
					Style:    discordgo.DangerButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏹️"},
					CustomID: ButtonStop,
				},
			},
		},
	}
}

const (
	ButtonPause  = "radio:pause"
	ButtonResume = "radio:resume"
	ButtonStop   = "radio:stop"
)
