package queue

// State of a guild's playback. Idle means the guild has no queue entry.
type State int

const (
	Idle State = iota
	Connecting
	Playing
	Advancing
	Draining
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Playing:
		return "playing"
	case Advancing:
		return "advancing"
	case Draining:
		return "draining"
	default:
		return "unknown"
	}
}

// Status tells the caller of Enqueue what happened to the track.
type Status int

const (
	Started Status = iota + 1
	Queued
)

func (s Status) String() string {
	switch s {
	case Started:
		return "started"
	case Queued:
		return "queued"
	default:
		return "unknown"
	}
}
