package live

import "context"

// Speaker identifies which side of the call a transcript fragment belongs to.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerModel Speaker = "model"
)

// ServerMessageKind tags messages arriving from the live backend.
type ServerMessageKind int

const (
	// MsgAudio carries a chunk of 24 kHz s16le model speech.
	MsgAudio ServerMessageKind = iota
	// MsgTranscript carries an incremental caption fragment.
	MsgTranscript
	// MsgTurnComplete marks the end of the model's turn.
	MsgTurnComplete
	// MsgInterrupted reports that the user spoke over the model.
	MsgInterrupted
	// MsgClosed reports that the backend closed the stream.
	MsgClosed
	// MsgError reports a backend failure; the stream is dead.
	MsgError
)

// ServerMessage is one event from the live backend.
type ServerMessage struct {
	Kind ServerMessageKind

	// PCM is set for MsgAudio: little-endian 16-bit mono at PlaybackRate.
	PCM []byte

	// Speaker and Text are set for MsgTranscript.
	Speaker Speaker
	Text    string

	// Err is set for MsgError.
	Err error
}

// Transport is the upstream connection of a call: outbound media in, server
// messages out. Implementations must make Close safe to call more than once
// and must close the Receive channel when the stream ends for any reason.
type Transport interface {
	// SendAudio pushes one chunk of 16 kHz s16le microphone audio.
	SendAudio(pcm []byte) error
	// SendVideoFrame pushes one JPEG-encoded camera frame.
	SendVideoFrame(jpeg []byte) error
	// Receive yields backend messages until the stream ends.
	Receive() <-chan ServerMessage
	// Close tears the stream down.
	Close() error
}

// DialOptions parameterize a new live connection.
type DialOptions struct {
	Model string
	Voice string
	// SystemInstruction steers the model's conversational persona.
	SystemInstruction string
}

// Dialer opens live connections. The production implementation speaks the
// Gemini Live API; tests substitute a fake.
type Dialer interface {
	Dial(ctx context.Context, opts DialOptions) (Transport, error)
}
