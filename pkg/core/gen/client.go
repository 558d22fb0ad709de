// Package gen wraps the Gemini API for one-shot generation: text with chat
// history, images, image edits, video, and speech. Every operation returns a
// types.Result; failures come back as ErrorResult, never as a Go error, so
// callers render them as errored chat messages instead of aborting.
package gen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"google.golang.org/genai"

	"github.com/dhozzi-app/dhozzi/pkg/core/types"
)

const (
	videoPollInterval = 10 * time.Second
	videoPollMax      = 90
)

var errVideoPending = errors.New("video operation still running")

// Client is a stateless generation client. Safe for concurrent use.
type Client struct {
	genai  *genai.Client
	apiKey string
	logger *slog.Logger
}

// NewClient connects to the Gemini API with the given key.
func NewClient(ctx context.Context, apiKey string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Client{genai: client, apiKey: apiKey, logger: logger}, nil
}

// GenerateText answers a prompt in the context of a chat history. The
// catalog model decides the backing Gemini model, persona instruction,
// search grounding, and thinking budget.
func (c *Client) GenerateText(ctx context.Context, prompt, model string, history []types.Message, image *types.Attachment) types.Result {
	contents, err := historyContents(history)
	if err != nil {
		return types.ErrorResult{Message: err.Error()}
	}

	userParts := make([]*genai.Part, 0, 2)
	if image != nil {
		data, err := base64.StdEncoding.DecodeString(image.Base64)
		if err != nil {
			return types.ErrorResult{Message: "invalid image attachment"}
		}
		userParts = append(userParts, &genai.Part{
			InlineData: &genai.Blob{Data: data, MIMEType: image.MIMEType},
		})
	}
	userParts = append(userParts, &genai.Part{Text: prompt})
	contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: userParts})

	cfg := &genai.GenerateContentConfig{}
	if si := personaInstruction(model); si != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: si}}}
	}
	if wantsSearch(model) {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if wantsThinking(model) {
		budget := proThinkingBudget
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}

	backing := backingModel(model, image != nil)
	resp, err := c.genai.Models.GenerateContent(ctx, backing, contents, cfg)
	if err != nil {
		c.logger.Warn("text generation failed", "model", backing, "error", err)
		return types.ErrorResult{Message: "Failed to generate response."}
	}

	return types.TextResult{
		Text:    resp.Text(),
		Sources: groundingSources(resp),
	}
}

// GenerateImage creates one square JPEG from a prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) types.Result {
	resp, err := c.genai.Models.GenerateImages(ctx, imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    "1:1",
	})
	if err != nil {
		c.logger.Warn("image generation failed", "error", err)
		return types.ErrorResult{Message: "Failed to generate image."}
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return types.ErrorResult{Message: "No image was generated."}
	}
	return types.ImageResult{
		Base64:   base64.StdEncoding.EncodeToString(resp.GeneratedImages[0].Image.ImageBytes),
		MIMEType: "image/jpeg",
	}
}

// EditImage rewrites an uploaded image per the instruction. The first inline
// image part of the response wins.
func (c *Client) EditImage(ctx context.Context, imageBase64, mimeType, prompt string) types.Result {
	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return types.ErrorResult{Message: "invalid image payload"}
	}
	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{Data: data, MIMEType: mimeType}},
			{Text: prompt},
		},
	}}
	resp, err := c.genai.Models.GenerateContent(ctx, imageEditModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		c.logger.Warn("image edit failed", "error", err)
		return types.ErrorResult{Message: "Failed to edit image."}
	}
	for _, part := range responseParts(resp) {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return types.ImageResult{
				Base64:   base64.StdEncoding.EncodeToString(part.InlineData.Data),
				MIMEType: part.InlineData.MIMEType,
			}
		}
	}
	return types.ErrorResult{Message: "No edited image was returned."}
}

// GenerateVideo starts a Veo operation and polls it to completion. The
// result URL carries the API key so it can be fetched directly.
func (c *Client) GenerateVideo(ctx context.Context, prompt string, image *types.Attachment) types.Result {
	var img *genai.Image
	if image != nil {
		data, err := base64.StdEncoding.DecodeString(image.Base64)
		if err != nil {
			return types.ErrorResult{Message: "invalid image attachment"}
		}
		img = &genai.Image{ImageBytes: data, MIMEType: image.MIMEType}
	}

	op, err := c.genai.Models.GenerateVideos(ctx, videoModel, prompt, img, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		Resolution:     "720p",
		AspectRatio:    "16:9",
	})
	if err != nil {
		c.logger.Warn("video generation failed", "error", err)
		return types.ErrorResult{Message: "Failed to generate video."}
	}

	backoff := retry.WithMaxRetries(videoPollMax, retry.NewConstant(videoPollInterval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if op.Done {
			return nil
		}
		next, perr := c.genai.Operations.GetVideosOperation(ctx, op, nil)
		if perr != nil {
			return perr
		}
		op = next
		if !op.Done {
			return retry.RetryableError(errVideoPending)
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("video polling failed", "error", err)
		return types.ErrorResult{Message: "Failed to generate video."}
	}

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 ||
		op.Response.GeneratedVideos[0].Video == nil ||
		op.Response.GeneratedVideos[0].Video.URI == "" {
		return types.ErrorResult{Message: "Video generation failed to produce a download link."}
	}
	return types.VideoResult{
		URL: fmt.Sprintf("%s&key=%s", op.Response.GeneratedVideos[0].Video.URI, c.apiKey),
	}
}

// GenerateSpeech synthesizes text with a prebuilt voice. Output is base64
// 16-bit mono PCM at 24 kHz.
func (c *Client) GenerateSpeech(ctx context.Context, text string, voice types.Voice) types.Result {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: "Say with a natural, friendly tone: " + text}},
	}}
	resp, err := c.genai.Models.GenerateContent(ctx, ttsModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: string(voice)},
			},
		},
	})
	if err != nil {
		c.logger.Warn("speech generation failed", "error", err)
		return types.ErrorResult{Message: "Failed to generate speech."}
	}
	for _, part := range responseParts(resp) {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return types.SpeechResult{
				AudioBase64: base64.StdEncoding.EncodeToString(part.InlineData.Data),
			}
		}
	}
	return types.ErrorResult{Message: "No audio data received from API."}
}

// historyContents converts chat history into Gemini contents: image part
// first, then text, empty messages dropped.
func historyContents(history []types.Message) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		parts := make([]*genai.Part, 0, 2)
		if msg.Image != "" && msg.ImageMIMEType != "" {
			data, err := base64.StdEncoding.DecodeString(msg.Image)
			if err != nil {
				return nil, fmt.Errorf("invalid image in history")
			}
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{Data: data, MIMEType: msg.ImageMIMEType},
			})
		}
		if msg.Text != "" {
			parts = append(parts, &genai.Part{Text: msg.Text})
		}
		if len(parts) == 0 {
			continue
		}
		role := genai.RoleModel
		if msg.Sender == types.SenderUser {
			role = genai.RoleUser
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}
	return out, nil
}

func groundingSources(resp *genai.GenerateContentResponse) []types.GroundingChunk {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	chunks := resp.Candidates[0].GroundingMetadata.GroundingChunks
	if len(chunks) == 0 {
		return nil
	}
	out := make([]types.GroundingChunk, 0, len(chunks))
	for _, chunk := range chunks {
		var converted types.GroundingChunk
		if chunk.Web != nil {
			converted.Web = &types.GroundingSource{URI: chunk.Web.URI, Title: chunk.Web.Title}
		}
		if chunk.Maps != nil {
			converted.Maps = &types.GroundingSource{URI: chunk.Maps.URI, Title: chunk.Maps.Title}
		}
		if converted.Web == nil && converted.Maps == nil {
			continue
		}
		out = append(out, converted)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func responseParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}
