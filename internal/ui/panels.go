package ui

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Panel is one posted control-panel message, addressed through its
// interaction webhook so ephemeral panels stay editable.
type Panel struct {
	Interaction *discordgo.Interaction
	MessageID   string
}

// PanelSet tracks every open panel. Panels whose messages turn out deleted
// or inaccessible are dropped during fan-out.
type PanelSet struct {
	mu     sync.Mutex
	panels map[string]*Panel
}

func NewPanelSet() *PanelSet {
	return &PanelSet{panels: make(map[string]*Panel)}
}

func (ps *PanelSet) Add(p *Panel) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.panels[p.MessageID] = p
}

func (ps *PanelSet) Remove(messageID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	delete(ps.panels, messageID)
}

func (ps *PanelSet) List() []*Panel {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	out := make([]*Panel, 0, len(ps.panels))
	for _, p := range ps.panels {
		out = append(out, p)
	}
	return out
}

func (ps *PanelSet) Len() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.panels)
}
