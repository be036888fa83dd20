package ui

import (
	"io"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestPanelEmbed(t *testing.T) {
	embed := PanelEmbed(StatusNowPlaying, "Some Song", ColorPlaying, "http://a/100.jpg")

	if embed.Color != ColorPlaying {
		t.Errorf("Color = %#x", embed.Color)
	}
	if len(embed.Fields) != 1 {
		t.Fatalf("Fields = %d, want 1", len(embed.Fields))
	}
	if embed.Fields[0].Name != StatusNowPlaying {
		t.Errorf("field name = %q", embed.Fields[0].Name)
	}
	if !strings.Contains(embed.Fields[0].Value, "Some Song") {
		t.Errorf("field value = %q", embed.Fields[0].Value)
	}
	if embed.Thumbnail.URL != "http://a/100.jpg" {
		t.Errorf("Thumbnail = %q", embed.Thumbnail.URL)
	}
}

func TestPanelEmbedPlaceholder(t *testing.T) {
	embed := PanelEmbed(StatusStopped, StoppedDescription, ColorStopped, "")

	if !strings.HasPrefix(embed.Thumbnail.URL, "attachment://") {
		t.Errorf("Thumbnail = %q, want attachment reference", embed.Thumbnail.URL)
	}
}

func TestPlaceholderFileFreshReader(t *testing.T) {
	first, err := io.ReadAll(PlaceholderFile().Reader)
	if err != nil {
		t.Fatalf("read placeholder: %v", err)
	}
	second, err := io.ReadAll(PlaceholderFile().Reader)
	if err != nil {
		t.Fatalf("read placeholder: %v", err)
	}
	if len(first) == 0 || len(first) != len(second) {
		t.Errorf("reads = %d and %d bytes, want identical non-empty", len(first), len(second))
	}
}

func TestPanelComponents(t *testing.T) {
	comps := PanelComponents()
	if len(comps) != 1 {
		t.Fatalf("components = %d rows, want 1", len(comps))
	}
	row, ok := comps[0].(discordgo.ActionsRow)
	if !ok {
		t.Fatalf("row type = %T", comps[0])
	}

	want := []string{ButtonPause, ButtonResume, ButtonStop}
	if len(row.Components) != len(want) {
		t.Fatalf("buttons = %d, want %d", len(row.Components), len(want))
	}
	for n, c := range row.Components {
		btn, ok := c.(discordgo.Button)
		if !ok {
			t.Fatalf("button type = %T", c)
		}
		if btn.CustomID != want[n] {
			t.Errorf("button %d CustomID = %q, want %q", n, btn.CustomID, want[n])
		}
	}
}

func TestPanelSet(t *testing.T) {
	ps := NewPanelSet()
	ps.Add(&Panel{MessageID: "m1"})
	ps.Add(&Panel{MessageID: "m2"})
	ps.Add(&Panel{MessageID: "m1"})

	if ps.Len() != 2 {
		t.Errorf("Len = %d, want 2", ps.Len())
	}

	ps.Remove("m1")
	if ps.Len() != 1 {
		t.Errorf("Len after Remove = %d, want 1", ps.Len())
	}

	list := ps.List()
	if len(list) != 1 || list[0].MessageID != "m2" {
		t.Errorf("List = %v", list)
	}
}
