package protocol

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dhozzi-app/dhozzi/pkg/core/live"
)

func TestDecodeClientMessage_Hello(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"hello","mode":"video","voice":"Zephyr","model":"gemini-2.5-flash-native-audio-preview-09-2025"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	hello, ok := msg.(ClientHello)
	if !ok {
		t.Fatalf("type = %T", msg)
	}
	if hello.Mode != "video" || hello.Voice != "Zephyr" {
		t.Errorf("hello = %+v", hello)
	}
}

func TestDecodeClientMessage_HelloBadMode(t *testing.T) {
	if _, err := DecodeClientMessage([]byte(`{"type":"hello","mode":"hologram"}`)); err == nil {
		t.Fatal("bad mode accepted")
	}
}

func TestDecodeClientMessage_VideoFrame(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF}
	frame := map[string]string{"type": "video_frame", "jpeg_b64": "/9j/"}
	data, _ := json.Marshal(frame)

	msg, err := DecodeClientMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	vf, ok := msg.(ClientVideoFrame)
	if !ok {
		t.Fatalf("type = %T", msg)
	}
	if !bytes.Equal(vf.JPEG, raw) {
		t.Errorf("jpeg = %x, want %x", vf.JPEG, raw)
	}
}

func TestDecodeClientMessage_VideoFrameBadBase64(t *testing.T) {
	if _, err := DecodeClientMessage([]byte(`{"type":"video_frame","jpeg_b64":"!!"}`)); err == nil {
		t.Fatal("bad base64 accepted")
	}
}

func TestDecodeClientMessage_Hangup(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"hangup"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := msg.(ClientHangup); !ok {
		t.Fatalf("type = %T", msg)
	}
}

func TestDecodeClientMessage_Rejects(t *testing.T) {
	for _, data := range []string{
		`not json`,
		`{}`,
		`{"type":"steal_cookies"}`,
		`{"type":"video_frame"}`,
	} {
		if _, err := DecodeClientMessage([]byte(data)); err == nil {
			t.Errorf("accepted %q", data)
		}
	}
}

func TestEventPayload(t *testing.T) {
	tests := []struct {
		ev   live.Event
		want any
	}{
		{live.StateEvent{State: live.StateSpeaking}, ServerState{Type: "state", State: "speaking"}},
		{live.TranscriptEvent{Speaker: live.SpeakerUser, Text: "hi"}, ServerTranscript{Type: "transcript", Speaker: "user", Text: "hi"}},
		{live.TurnCompleteEvent{}, ServerTurnComplete{Type: "turn_complete"}},
		{live.InterruptedEvent{}, ServerInterrupted{Type: "interrupted"}},
		{live.QuotaEvent{RemainingSeconds: 42}, ServerQuota{Type: "quota", RemainingSeconds: 42}},
		{live.EndedEvent{Reason: live.EndHangup}, ServerEnded{Type: "ended", Reason: "hangup"}},
		{live.ErrorEvent{Message: "boom"}, ServerError{Type: "error", Message: "boom"}},
	}
	for _, tt := range tests {
		if got := EventPayload(tt.ev); got != tt.want {
			t.Errorf("EventPayload(%T) = %#v, want %#v", tt.ev, got, tt.want)
		}
	}
}
