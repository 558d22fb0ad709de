package handlers

import (
	"net/http"
	"strings"

	"github.com/dhozzi-app/dhozzi/pkg/core/chat"
	"github.com/dhozzi-app/dhozzi/pkg/core/types"
)

// MessagesHandler runs chat exchanges through the orchestrator.
type MessagesHandler struct {
	Chat *chat.Orchestrator
}

type sendBody struct {
	Text          string            `json:"text"`
	Image         *types.Attachment `json:"image,omitempty"`
	UploadedVideo *types.Attachment `json:"uploaded_video,omitempty"`
	UploadedAudio *types.Attachment `json:"uploaded_audio,omitempty"`
}

type messagesResponse struct {
	Messages []types.Message `json:"messages"`
}

func (h MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("chatID")
	var body sendBody
	if !readJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeBadRequest(w, r, "text is required", "text")
		return
	}
	if body.Image != nil && (body.Image.Base64 == "" || body.Image.MIMEType == "") {
		writeBadRequest(w, r, "image needs base64 and mime_type", "image")
		return
	}

	msgs, err := h.Chat.Send(r.Context(), chat.SendRequest{
		UID:           uidFrom(r),
		ChatID:        chatID,
		Text:          body.Text,
		Image:         body.Image,
		UploadedVideo: body.UploadedVideo,
		UploadedAudio: body.UploadedAudio,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messagesResponse{Messages: msgs})
}

func (h MessagesHandler) Retry(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.Chat.Retry(r.Context(), uidFrom(r), r.PathValue("chatID"), r.PathValue("messageID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messagesResponse{Messages: msgs})
}
