package playback

import "time"

// State represents the playback state machine.
//
//	┌──────┐  Play   ┌─────────┐  pause event  ┌────────┐
//	│ Idle │ ──────▶ │ Playing │ ────────────▶ │ Paused │
//	└──────┘         └─────────┘ ◀──────────── └────────┘
//	   ▲                  │        play event       │
//	   │  end of queue,   │                         │
//	   └── error ─────────┴─────────────────────────┘
//
// Playing and Paused follow the transport's own lifecycle events. Idle is
// entered when the queue runs out or the transport reports an error.
type State int

const (
	Idle State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a track is loaded (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// EventKind enumerates transport lifecycle events.
type EventKind int

const (
	EventPlay EventKind = iota
	EventPause
	EventEnded
	EventProgress
	EventError
)

// String returns the event name for debugging.
func (k EventKind) String() string {
	switch k {
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	case EventProgress:
		return "progress"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Progress is the transport's view of the loaded source.
type Progress struct {
	Position time.Duration // Elapsed playback time
	Duration time.Duration // Total length; zero when unknown
	Buffered time.Duration // End of the buffered range
}

// Event is a transport lifecycle event.
//
// Progress is set for EventProgress, Err for EventError.
type Event struct {
	Kind     EventKind
	Progress Progress
	Err      error
}
