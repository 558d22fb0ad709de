package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/dhozzi-app/dhozzi/pkg/core/types"
)

// ImageEditor is the slice of the generation client the edit endpoint needs.
type ImageEditor interface {
	EditImage(ctx context.Context, imageBase64, mimeType, prompt string) types.Result
}

// ImageEditHandler applies a text instruction to an existing image.
type ImageEditHandler struct {
	Gen ImageEditor
}

func (h ImageEditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Image  *types.Attachment `json:"image"`
		Prompt string            `json:"prompt"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if body.Image == nil || body.Image.Base64 == "" || body.Image.MIMEType == "" {
		writeBadRequest(w, r, "image with base64 and mime_type is required", "image")
		return
	}
	if strings.TrimSpace(body.Prompt) == "" {
		writeBadRequest(w, r, "prompt is required", "prompt")
		return
	}

	switch result := h.Gen.EditImage(r.Context(), body.Image.Base64, body.Image.MIMEType, body.Prompt).(type) {
	case types.ImageResult:
		writeJSON(w, http.StatusOK, result)
	case types.ErrorResult:
		writeGenerationFailed(w, r, result.Message)
	default:
		writeGenerationFailed(w, r, "unexpected image result")
	}
}
