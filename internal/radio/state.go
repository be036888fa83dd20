package radio

import "sync"

const UnknownTrack = "Unknown Track"

// State is the single source of truth for the resolved stream and the
// currently playing track. One instance is owned by the bot and shared
// with the poller, player, and broadcaster.
type State struct {
	mu           sync.Mutex
	streamURL    string
	trackNameURL string
	currentTrack string
}

func NewState() *State {
	return &State{currentTrack: UnknownTrack}
}

func (s *State) SetManifest(m Manifest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamURL = m.StreamURL
	s.trackNameURL = m.TrackNameURL
}

func (s *State) StreamURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamURL
}

func (s *State) TrackNameURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trackNameURL
}

// SetTrack stores title and reports whether it differed from the previous
// value. Poll ticks with an unchanged title fan out nothing.
func (s *State) SetTrack(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if title == s.currentTrack {
		return false
	}
	s.currentTrack = title
	return true
}

func (s *State) Track() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTrack
}
