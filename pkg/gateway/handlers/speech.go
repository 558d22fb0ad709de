package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/dhozzi-app/dhozzi/pkg/core/types"
)

// SpeechSynthesizer is the slice of the generation client the speech
// endpoint needs.
type SpeechSynthesizer interface {
	GenerateSpeech(ctx context.Context, text string, voice types.Voice) types.Result
}

// SpeechHandler reads a message aloud: text in, base64 PCM out.
type SpeechHandler struct {
	Gen SpeechSynthesizer
}

func (h SpeechHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text  string `json:"text"`
		Voice string `json:"voice,omitempty"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeBadRequest(w, r, "text is required", "text")
		return
	}
	voice := types.Voice(strings.TrimSpace(body.Voice))
	if voice == "" {
		voice = types.VoiceZephyr
	}

	switch result := h.Gen.GenerateSpeech(r.Context(), body.Text, voice).(type) {
	case types.SpeechResult:
		writeJSON(w, http.StatusOK, map[string]string{
			"audio_base64": result.AudioBase64,
			"mime_type":    "audio/pcm;rate=24000",
		})
	case types.ErrorResult:
		writeGenerationFailed(w, r, result.Message)
	default:
		writeGenerationFailed(w, r, "unexpected speech result")
	}
}
