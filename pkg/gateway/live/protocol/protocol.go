// Package protocol defines the /v1/live websocket wire format.
//
// The client opens with a JSON hello, then streams microphone audio as
// binary frames (PCM s16le mono at 16 kHz) and, in video mode, camera
// snapshots as JSON video_frame messages. The server answers with a JSON
// hello_ack, streams model audio back as binary frames (PCM s16le mono at
// 24 kHz), and interleaves JSON events for state, transcripts, quota, and
// teardown.
package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dhozzi-app/dhozzi/pkg/core/live"
)

type DecodeError struct {
	Message string
	Param   string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Param) == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Param)
}

func badRequest(message, param string) *DecodeError {
	return &DecodeError{Message: message, Param: param}
}

// ClientHello opens a live call.
type ClientHello struct {
	Type  string `json:"type"`
	Mode  string `json:"mode"`
	Voice string `json:"voice,omitempty"`
	Model string `json:"model,omitempty"`
}

// ClientVideoFrame carries one JPEG camera snapshot.
type ClientVideoFrame struct {
	Type    string `json:"type"`
	JPEGB64 string `json:"jpeg_b64"`

	// JPEG is the decoded payload, filled during decode.
	JPEG []byte `json:"-"`
}

// ClientHangup requests a local teardown.
type ClientHangup struct {
	Type string `json:"type"`
}

// DecodeClientMessage parses one JSON text frame from the client.
func DecodeClientMessage(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, badRequest("invalid json frame", "")
	}
	switch strings.TrimSpace(envelope.Type) {
	case "":
		return nil, badRequest("missing type", "type")
	case "hello":
		var msg ClientHello
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid hello frame", "")
		}
		if err := ValidateHello(&msg); err != nil {
			return nil, err
		}
		return msg, nil
	case "video_frame":
		var msg ClientVideoFrame
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid video_frame", "")
		}
		if strings.TrimSpace(msg.JPEGB64) == "" {
			return nil, badRequest("video_frame.jpeg_b64 is required", "jpeg_b64")
		}
		jpeg, err := base64.StdEncoding.DecodeString(msg.JPEGB64)
		if err != nil {
			return nil, badRequest("video_frame.jpeg_b64 is not valid base64", "jpeg_b64")
		}
		msg.JPEG = jpeg
		return msg, nil
	case "hangup":
		var msg ClientHangup
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid hangup", "")
		}
		return msg, nil
	default:
		return nil, badRequest("unsupported message type", "type")
	}
}

// ValidateHello checks the opening frame and fills defaults in place.
func ValidateHello(msg *ClientHello) error {
	mode := live.Mode(strings.TrimSpace(msg.Mode))
	if !mode.Valid() {
		return badRequest(`hello.mode must be "audio" or "video"`, "mode")
	}
	msg.Mode = string(mode)
	msg.Voice = strings.TrimSpace(msg.Voice)
	msg.Model = strings.TrimSpace(msg.Model)
	return nil
}

// ServerHelloAck confirms the negotiated call.
type ServerHelloAck struct {
	Type             string `json:"type"`
	SessionID        string `json:"session_id"`
	Model            string `json:"model"`
	CaptureRateHz    int    `json:"capture_rate_hz"`
	PlaybackRateHz   int    `json:"playback_rate_hz"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

type ServerState struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

type ServerTranscript struct {
	Type    string `json:"type"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type ServerTurnComplete struct {
	Type string `json:"type"`
}

type ServerInterrupted struct {
	Type string `json:"type"`
}

type ServerQuota struct {
	Type             string `json:"type"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

type ServerEnded struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type ServerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// EventPayload maps a session event to its wire message.
func EventPayload(ev live.Event) any {
	switch e := ev.(type) {
	case live.StateEvent:
		return ServerState{Type: "state", State: e.State.String()}
	case live.TranscriptEvent:
		return ServerTranscript{Type: "transcript", Speaker: string(e.Speaker), Text: e.Text}
	case live.TurnCompleteEvent:
		return ServerTurnComplete{Type: "turn_complete"}
	case live.InterruptedEvent:
		return ServerInterrupted{Type: "interrupted"}
	case live.QuotaEvent:
		return ServerQuota{Type: "quota", RemainingSeconds: e.RemainingSeconds}
	case live.EndedEvent:
		return ServerEnded{Type: "ended", Reason: string(e.Reason)}
	case live.ErrorEvent:
		return ServerError{Type: "error", Message: e.Message}
	default:
		return nil
	}
}
