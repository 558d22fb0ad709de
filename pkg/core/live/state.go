// Package live implements the call session controller: a real-time voice or
// voice+video conversation with the Gemini Live backend. The session owns the
// capture pipeline, the gapless playback schedule, call-scoped transcripts,
// the quota countdown, and one-shot teardown.
package live

// State is the lifecycle phase of a call session.
type State int

const (
	StateConnecting State = iota
	StateListening
	StateSpeaking
	StateEnded
	StateError
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateListening:
		return "listening"
	case StateSpeaking:
		return "speaking"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can occur from s.
func (s State) Terminal() bool {
	return s == StateEnded || s == StateError
}

// Mode selects what the session streams upward: audio only, or audio plus
// sampled video frames.
type Mode string

const (
	ModeAudio Mode = "audio"
	ModeVideo Mode = "video"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeAudio || m == ModeVideo
}
