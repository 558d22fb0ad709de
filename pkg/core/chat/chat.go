// Package chat orchestrates one message exchange: append the user message
// and an assistant placeholder, dispatch to the right generator by model
// category, then settle the placeholder in place with the result or an error
// marker so the client can offer a retry.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dhozzi-app/dhozzi/pkg/core/catalog"
	"github.com/dhozzi-app/dhozzi/pkg/core/types"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

// loadingMarker fills a media placeholder until generation settles.
const loadingMarker = "loading"

// Generator produces model output. Results are a tagged union; failures are
// ErrorResult, never a Go error.
type Generator interface {
	GenerateText(ctx context.Context, prompt, model string, history []types.Message, image *types.Attachment) types.Result
	GenerateImage(ctx context.Context, prompt string) types.Result
	GenerateVideo(ctx context.Context, prompt string, image *types.Attachment) types.Result
}

// ErrChatNotFound reports an unknown chat ID.
var ErrChatNotFound = fmt.Errorf("chat: not found")

// SendRequest is one user turn.
type SendRequest struct {
	UID    string
	ChatID string
	Text   string

	// Image rides along to vision models and video generation.
	Image *types.Attachment
	// Uploaded media kept on the user message for display only.
	UploadedVideo *types.Attachment
	UploadedAudio *types.Attachment
}

// Orchestrator coordinates sends against the history store.
type Orchestrator struct {
	gen       Generator
	histories store.Histories
	logger    *slog.Logger
	newID     func() string

	// Serializes history mutations per orchestrator. Generation itself runs
	// outside the lock, so overlapping sends only queue on the bookkeeping.
	mu sync.Mutex
}

// New builds an orchestrator.
func New(gen Generator, histories store.Histories, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		gen:       gen,
		histories: histories,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Send runs one exchange and returns the chat's full message list after the
// placeholder settled. The [user, placeholder] pair is appended and persisted
// before generation starts, so a crash mid-generation leaves a visible,
// retryable gap instead of losing the user's text.
func (o *Orchestrator) Send(ctx context.Context, req SendRequest) ([]types.Message, error) {
	userMsg := types.Message{
		ID:            o.newID(),
		Text:          req.Text,
		Sender:        types.SenderUser,
		UploadedVideo: req.UploadedVideo,
		UploadedAudio: req.UploadedAudio,
	}
	if req.Image != nil {
		userMsg.Image = req.Image.Base64
		userMsg.ImageMIMEType = req.Image.MIMEType
	}

	placeholderID := o.newID()
	model, history, err := o.appendPair(ctx, req.UID, req.ChatID, userMsg, placeholderID)
	if err != nil {
		return nil, err
	}

	result := o.dispatch(ctx, model, req, history)
	return o.settle(ctx, req.UID, req.ChatID, placeholderID, req.Text, model, result)
}

// Retry drops a failed assistant message and re-sends the user message just
// before it. Attachments are not replayed.
func (o *Orchestrator) Retry(ctx context.Context, uid, chatID, messageID string) ([]types.Message, error) {
	o.mu.Lock()
	items, err := o.histories.Load(ctx, uid)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	chat := findChat(items, chatID)
	if chat == nil {
		o.mu.Unlock()
		return nil, ErrChatNotFound
	}

	var prompt string
	found := false
	for i, m := range chat.Messages {
		if m.ID == messageID && m.Sender == types.SenderBot && i > 0 {
			prompt = chat.Messages[i-1].Text
			// Send replays the user message, so drop the old pair.
			chat.Messages = append(chat.Messages[:i-1], chat.Messages[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		o.mu.Unlock()
		return nil, ErrChatNotFound
	}
	if err := o.histories.Save(ctx, uid, items); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.mu.Unlock()

	return o.Send(ctx, SendRequest{UID: uid, ChatID: chatID, Text: prompt})
}

// appendPair stores the user message and an empty assistant placeholder, and
// snapshots the history that generation should see (everything before the
// pair).
func (o *Orchestrator) appendPair(ctx context.Context, uid, chatID string, userMsg types.Message, placeholderID string) (model string, history []types.Message, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	items, err := o.histories.Load(ctx, uid)
	if err != nil {
		return "", nil, err
	}
	chat := findChat(items, chatID)
	if chat == nil {
		return "", nil, ErrChatNotFound
	}
	model = chat.Model
	if model == "" {
		model = catalog.DefaultModel
	}

	history = make([]types.Message, len(chat.Messages))
	copy(history, chat.Messages)

	placeholder := types.Message{ID: placeholderID, Sender: types.SenderBot}
	switch catalog.CategoryOf(model) {
	case catalog.CategoryImage:
		placeholder.Image = loadingMarker
	case catalog.CategoryVideo:
		placeholder.Video = loadingMarker
	}
	chat.Messages = append(chat.Messages, userMsg, placeholder)

	if err := o.histories.Save(ctx, uid, items); err != nil {
		return "", nil, err
	}
	return model, history, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, model string, req SendRequest, history []types.Message) types.Result {
	switch catalog.CategoryOf(model) {
	case catalog.CategoryImage:
		return o.gen.GenerateImage(ctx, req.Text)
	case catalog.CategoryVideo:
		return o.gen.GenerateVideo(ctx, req.Text, req.Image)
	default:
		return o.gen.GenerateText(ctx, req.Text, model, history, req.Image)
	}
}

// settle replaces the placeholder in place with the generation outcome.
func (o *Orchestrator) settle(ctx context.Context, uid, chatID, placeholderID, prompt, model string, result types.Result) ([]types.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	items, err := o.histories.Load(ctx, uid)
	if err != nil {
		return nil, err
	}
	chat := findChat(items, chatID)
	if chat == nil {
		return nil, ErrChatNotFound
	}

	for i := range chat.Messages {
		if chat.Messages[i].ID != placeholderID {
			continue
		}
		chat.Messages[i] = settledMessage(placeholderID, prompt, result)
		break
	}

	if err := o.histories.Save(ctx, uid, items); err != nil {
		return nil, err
	}
	if e, ok := types.Err(result); ok {
		o.logger.Warn("generation failed", "chat_id", chatID, "model", model, "reason", e.Message)
	}
	out := make([]types.Message, len(chat.Messages))
	copy(out, chat.Messages)
	return out, nil
}

func settledMessage(id, prompt string, result types.Result) types.Message {
	msg := types.Message{ID: id, Sender: types.SenderBot}
	switch r := result.(type) {
	case types.TextResult:
		msg.Text = r.Text
		msg.Sources = r.Sources
	case types.ImageResult:
		msg.Text = fmt.Sprintf("Here is your generated image for: %q", prompt)
		msg.Image = r.Base64
		msg.ImageMIMEType = r.MIMEType
	case types.VideoResult:
		msg.Text = fmt.Sprintf("Here is your generated video for: %q", prompt)
		msg.Video = r.URL
	case types.ErrorResult:
		msg.Text = "Error: " + r.Message
		msg.IsError = true
	}
	return msg
}

// findChat walks the history tree, folders included, for a chat node.
func findChat(items []types.HistoryItem, id string) *types.HistoryItem {
	for i := range items {
		if items[i].Type == types.ItemChat && items[i].ID == id {
			return &items[i]
		}
		if items[i].Type == types.ItemFolder {
			if found := findChat(items[i].Items, id); found != nil {
				return found
			}
		}
	}
	return nil
}
