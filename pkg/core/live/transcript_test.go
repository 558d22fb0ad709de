package live

import "testing"

func TestTranscriptBuffer_PerSpeakerAccumulation(t *testing.T) {
	var b TranscriptBuffer

	if got := b.Append(SpeakerUser, "turn it "); got != "turn it " {
		t.Errorf("user append = %q", got)
	}
	if got := b.Append(SpeakerUser, "up"); got != "turn it up" {
		t.Errorf("user append = %q", got)
	}
	if got := b.Append(SpeakerModel, "Sure."); got != "Sure." {
		t.Errorf("model append = %q", got)
	}
	if got := b.Text(SpeakerUser); got != "turn it up" {
		t.Errorf("user buffer = %q, model text leaked in", got)
	}

	b.Clear()
	if b.Text(SpeakerUser) != "" || b.Text(SpeakerModel) != "" {
		t.Error("buffers not empty after Clear")
	}
}
