package live

// Event is something a session consumer may want to render: a state change, a
// caption update, a spoken-audio chunk, or a failure. Delivered on the
// session's Events channel; the channel is buffered and slow consumers lose
// events rather than stalling the call.
type Event interface {
	EventType() string
}

// StateEvent reports a lifecycle transition.
type StateEvent struct {
	State State `json:"state"`
}

func (StateEvent) EventType() string { return "state" }

// TranscriptEvent carries the accumulated caption text for one speaker.
type TranscriptEvent struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

func (TranscriptEvent) EventType() string { return "transcript" }

// TurnCompleteEvent marks the end of a model turn; both caption buffers have
// been cleared.
type TurnCompleteEvent struct{}

func (TurnCompleteEvent) EventType() string { return "turn_complete" }

// InterruptedEvent reports barge-in: the model was cut off and all scheduled
// playback was discarded.
type InterruptedEvent struct{}

func (InterruptedEvent) EventType() string { return "interrupted" }

// QuotaEvent reports the remaining call seconds after a countdown tick.
// Never emitted for unlimited plans.
type QuotaEvent struct {
	RemainingSeconds int `json:"remaining_seconds"`
}

func (QuotaEvent) EventType() string { return "quota" }

// ErrorEvent reports the failure that terminated the call.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (ErrorEvent) EventType() string { return "error" }

// EndedEvent reports normal call termination and its cause.
type EndedEvent struct {
	Reason EndReason `json:"reason"`
}

func (EndedEvent) EventType() string { return "ended" }

// EndReason names why a call ended.
type EndReason string

const (
	EndHangup        EndReason = "hangup"
	EndQuota         EndReason = "quota_exhausted"
	EndRemoteClose   EndReason = "remote_close"
	EndTransportFail EndReason = "transport_error"
)
