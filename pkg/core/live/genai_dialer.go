package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"google.golang.org/genai"
)

const (
	audioMIME = "audio/pcm;rate=16000"
	jpegMIME  = "image/jpeg"
)

// GenAIDialer opens live sessions against the Gemini Live API.
type GenAIDialer struct {
	client *genai.Client
}

// NewGenAIDialer builds a dialer from an API key.
func NewGenAIDialer(ctx context.Context, apiKey string) (*GenAIDialer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &GenAIDialer{client: client}, nil
}

// Dial connects and starts a receive pump that translates backend messages
// into ServerMessages until the stream ends.
func (d *GenAIDialer) Dial(ctx context.Context, opts DialOptions) (Transport, error) {
	cfg := &genai.LiveConnectConfig{
		ResponseModalities:       []genai.Modality{genai.ModalityAudio},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if opts.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: opts.SystemInstruction}},
		}
	}
	if opts.Voice != "" {
		cfg.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: opts.Voice},
			},
		}
	}

	session, err := d.client.Live.Connect(ctx, opts.Model, cfg)
	if err != nil {
		return nil, fmt.Errorf("live connect: %w", err)
	}

	t := &genaiTransport{
		session: session,
		recv:    make(chan ServerMessage, 32),
	}
	go t.pump()
	return t, nil
}

type genaiTransport struct {
	session *genai.Session
	recv    chan ServerMessage

	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func (t *genaiTransport) SendAudio(pcm []byte) error {
	return t.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: pcm, MIMEType: audioMIME},
	})
}

func (t *genaiTransport) SendVideoFrame(jpeg []byte) error {
	return t.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: jpeg, MIMEType: jpegMIME},
	})
}

func (t *genaiTransport) Receive() <-chan ServerMessage { return t.recv }

func (t *genaiTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closing.Store(true)
		t.closeErr = t.session.Close()
	})
	return t.closeErr
}

// pump reads backend messages and fans them out as ServerMessages. Exits on
// any receive error; Close on our side surfaces as MsgClosed, everything else
// as MsgError.
func (t *genaiTransport) pump() {
	defer close(t.recv)
	for {
		msg, err := t.session.Receive()
		if err != nil {
			t.recv <- t.endMessage(err)
			return
		}
		sc := msg.ServerContent
		if sc == nil {
			continue
		}
		if sc.Interrupted {
			t.recv <- ServerMessage{Kind: MsgInterrupted}
		}
		if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
			t.recv <- ServerMessage{Kind: MsgTranscript, Speaker: SpeakerUser, Text: sc.InputTranscription.Text}
		}
		if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
			t.recv <- ServerMessage{Kind: MsgTranscript, Speaker: SpeakerModel, Text: sc.OutputTranscription.Text}
		}
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					t.recv <- ServerMessage{Kind: MsgAudio, PCM: part.InlineData.Data}
				}
			}
		}
		if sc.TurnComplete {
			t.recv <- ServerMessage{Kind: MsgTurnComplete}
		}
	}
}

// endMessage classifies the receive error that ended the pump. A close on
// our side or a clean remote shutdown is a MsgClosed; anything else is a
// transport failure and must surface as MsgError.
func (t *genaiTransport) endMessage(err error) ServerMessage {
	if t.closing.Load() || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return ServerMessage{Kind: MsgClosed}
	}
	return ServerMessage{Kind: MsgError, Err: fmt.Errorf("live receive: %w", err)}
}
