package types

// Result is the tagged union returned by the generation client. Exactly one
// concrete kind is produced per request; failures are an ErrorResult rather
// than a Go error, so no generation failure crosses the orchestrator boundary
// as a panic or wrapped error.
type Result interface {
	resultKind() string
}

// TextResult is a successful text generation, optionally grounded.
type TextResult struct {
	Text    string           `json:"text"`
	Sources []GroundingChunk `json:"sources,omitempty"`
}

func (TextResult) resultKind() string { return "text" }

// ImageResult is a successful image generation or edit, base64 JPEG/PNG bytes.
type ImageResult struct {
	Base64   string `json:"base64"`
	MIMEType string `json:"mime_type"`
}

func (ImageResult) resultKind() string { return "image" }

// VideoResult is a successful video generation; URL is the download link.
type VideoResult struct {
	URL string `json:"url"`
}

func (VideoResult) resultKind() string { return "video" }

// SpeechResult is synthesized speech: base64 PCM, 16-bit mono at 24 kHz.
type SpeechResult struct {
	AudioBase64 string `json:"audio_base64"`
}

func (SpeechResult) resultKind() string { return "speech" }

// ErrorResult reports a failed generation request with a display reason.
type ErrorResult struct {
	Message string `json:"message"`
}

func (ErrorResult) resultKind() string { return "error" }

// Err extracts the ErrorResult variant, if r is one.
func Err(r Result) (ErrorResult, bool) {
	e, ok := r.(ErrorResult)
	return e, ok
}
