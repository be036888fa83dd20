package player

// Status is the playback state visible to commands and buttons.
type Status int

const (
	StatusDisconnected Status = iota
	StatusPlaying
	StatusPaused
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type Event int

const (
	EventPlay Event = iota
	EventPause
	EventResume
	EventStop
)

func (e Event) String() string {
	switch e {
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventStop:
		return "stop"
	default:
		return "unknown"
	}
}

// transitions is the explicit table for the panel state machine. Anything
// not listed is an illegal transition and a deliberate no-op: pausing while
// not playing, resuming while already playing, stopping while disconnected.
// Stopped is re-entrant into Playing via a full reconnect (EventPlay).
var transitions = map[Status]map[Event]Status{
	StatusDisconnected: {
		EventPlay: StatusPlaying,
	},
	StatusPlaying: {
		EventPause: StatusPaused,
		EventStop:  StatusStopped,
	},
	StatusPaused: {
		EventResume: StatusPlaying,
		EventStop:   StatusStopped,
	},
	StatusStopped: {
		EventPlay: StatusPlaying,
	},
}

// Next returns the successor status for ev, or ok=false when the transition
// is illegal and the current status must be kept unchanged.
func Next(cur Status, ev Event) (Status, bool) {
	next, ok := transitions[cur][ev]
	if !ok {
		return cur, false
	}
	return next, true
}
