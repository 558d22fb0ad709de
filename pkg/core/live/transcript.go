package live

import (
	"strings"
	"sync"
)

// TranscriptBuffer accumulates caption fragments per speaker for the current
// turn. Contents are call-scoped: they are cleared at turn boundaries and are
// never persisted to chat history.
type TranscriptBuffer struct {
	mu    sync.Mutex
	user  strings.Builder
	model strings.Builder
}

// Append adds a fragment to the speaker's buffer and returns the accumulated
// text.
func (b *TranscriptBuffer) Append(speaker Speaker, fragment string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch speaker {
	case SpeakerModel:
		b.model.WriteString(fragment)
		return b.model.String()
	default:
		b.user.WriteString(fragment)
		return b.user.String()
	}
}

// Text returns the speaker's accumulated text.
func (b *TranscriptBuffer) Text(speaker Speaker) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if speaker == SpeakerModel {
		return b.model.String()
	}
	return b.user.String()
}

// Clear empties both buffers. Called on turn completion.
func (b *TranscriptBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.user.Reset()
	b.model.Reset()
}
