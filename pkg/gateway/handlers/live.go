package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dhozzi-app/dhozzi/pkg/core/live"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/apierror"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/config"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/live/bridge"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/live/protocol"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/mw"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/ratelimit"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

// LiveHandler upgrades /v1/live to a websocket and runs one call session
// over it. The browser streams microphone PCM as binary frames and camera
// JPEGs as JSON; the session streams model audio and events back.
type LiveHandler struct {
	Config  config.Config
	Users   store.Users
	Dialer  live.Dialer
	Limiter *ratelimit.Limiter
	Logger  *slog.Logger
}

func (h LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := uidFrom(r)
	reqID, _ := mw.RequestIDFrom(r.Context())

	if !h.originAllowed(r) {
		mw.WriteError(w, http.StatusForbidden, &apierror.Error{
			Code: apierror.CodeUnauthorized, Message: "origin is not allowed", Param: "Origin", RequestID: reqID,
		})
		return
	}

	user, err := h.Users.Get(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var permit *ratelimit.Permit
	if h.Limiter != nil {
		dec := h.Limiter.AcquireLiveSession(uid, time.Now())
		if !dec.Allowed {
			mw.WriteError(w, http.StatusTooManyRequests, &apierror.Error{
				Code: apierror.CodeRateLimited, Message: "too many active calls", RequestID: reqID,
			})
			return
		}
		permit = dec.Permit
		defer permit.Release()
	}

	upgrader := websocket.Upgrader{
		// The origin allowlist was already applied above.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.Config.LiveMaxFrameBytes)

	writer := bridge.NewWriter(conn, h.Config.LiveWSWriteTimeout)

	hello, ok := h.readHello(conn, writer)
	if !ok {
		return
	}

	capture := bridge.NewCapture()
	video := bridge.NewVideo()
	session, err := live.New(live.Dependencies{
		Dialer:  h.Dialer,
		Capture: capture,
		Video:   video,
		Sink:    bridge.NewSink(writer),
		Logger:  h.Logger,
		Config: live.Config{
			Model: hello.Model,
			Voice: hello.Voice,
			Mode:  live.Mode(hello.Mode),
			Plan:  user.Plan,
		},
	})
	if err != nil {
		h.writeWSError(conn, writer, "failed to set up call")
		return
	}

	sessionID := "call_" + liveRandHex(8)
	if err := session.Start(r.Context()); err != nil {
		_ = writer.WriteJSON(protocol.ServerError{Type: "error", Message: "failed to connect call"})
		writer.Close()
		return
	}

	_ = writer.WriteJSON(protocol.ServerHelloAck{
		Type:             "hello_ack",
		SessionID:        sessionID,
		Model:            sessionModel(hello.Model),
		CaptureRateHz:    live.CaptureRate,
		PlaybackRateHz:   live.PlaybackRate,
		RemainingSeconds: session.RemainingSeconds(),
	})

	go writer.PingLoop(r.Context(), h.Config.LiveWSPingInterval)
	go h.pumpEvents(session, writer)
	h.readLoop(conn, session, capture, video)

	<-session.Done()
	writer.Close()
	h.logInfo("call session closed", "session_id", sessionID, "uid", uid, "request_id", reqID)
}

// readHello enforces that the first frame is a valid hello.
func (h LiveHandler) readHello(conn *websocket.Conn, writer *bridge.Writer) (protocol.ClientHello, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(h.Config.LiveHandshakeTimeout))
	messageType, frame, err := conn.ReadMessage()
	if err != nil {
		return protocol.ClientHello{}, false
	}
	if messageType != websocket.TextMessage {
		h.writeWSError(conn, writer, "first frame must be hello")
		return protocol.ClientHello{}, false
	}
	decoded, err := protocol.DecodeClientMessage(frame)
	if err != nil {
		h.writeWSError(conn, writer, err.Error())
		return protocol.ClientHello{}, false
	}
	hello, ok := decoded.(protocol.ClientHello)
	if !ok {
		h.writeWSError(conn, writer, "first frame must be hello")
		return protocol.ClientHello{}, false
	}
	_ = conn.SetReadDeadline(time.Now().Add(h.Config.LiveWSReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.Config.LiveWSReadTimeout))
	})
	return hello, true
}

// readLoop feeds inbound frames into the session until the socket drops or
// the client hangs up. Socket loss counts as a hangup; the session's own
// teardown handles the rest.
func (h LiveHandler) readLoop(conn *websocket.Conn, session *live.Session, capture *bridge.Capture, video *bridge.Video) {
	for {
		messageType, frame, err := conn.ReadMessage()
		if err != nil {
			session.Hangup()
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.Config.LiveWSReadTimeout))

		switch messageType {
		case websocket.BinaryMessage:
			capture.Push(frame)
		case websocket.TextMessage:
			decoded, err := protocol.DecodeClientMessage(frame)
			if err != nil {
				continue
			}
			switch msg := decoded.(type) {
			case protocol.ClientVideoFrame:
				video.Push(msg.JPEG)
			case protocol.ClientHangup:
				session.Hangup()
				return
			}
		}
	}
}

// pumpEvents forwards session events as JSON until teardown, then drains
// whatever is still buffered.
func (h LiveHandler) pumpEvents(session *live.Session, writer *bridge.Writer) {
	for {
		select {
		case ev := <-session.Events():
			if payload := protocol.EventPayload(ev); payload != nil {
				_ = writer.WriteJSON(payload)
			}
		case <-session.Done():
			for {
				select {
				case ev := <-session.Events():
					if payload := protocol.EventPayload(ev); payload != nil {
						_ = writer.WriteJSON(payload)
					}
				default:
					return
				}
			}
		}
	}
}

func (h LiveHandler) originAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	if len(h.Config.CORSAllowedOrigins) == 0 {
		return false
	}
	_, ok := h.Config.CORSAllowedOrigins[origin]
	return ok
}

func (h LiveHandler) writeWSError(conn *websocket.Conn, writer *bridge.Writer, message string) {
	_ = writer.WriteJSON(protocol.ServerError{Type: "error", Message: message})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message),
		time.Now().Add(2*time.Second))
}

func (h LiveHandler) logInfo(msg string, args ...any) {
	if h.Logger != nil {
		h.Logger.Info(msg, args...)
	}
}

func sessionModel(model string) string {
	if model == "" {
		return live.DefaultLiveModel
	}
	return model
}

func liveRandHex(nbytes int) string {
	b := make([]byte, nbytes)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format("150405.000000000")))
	}
	return hex.EncodeToString(b)
}
