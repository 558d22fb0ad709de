package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn is the slice of *websocket.Conn the writer needs.
type wsConn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
}

// Writer serializes all websocket writes. gorilla/websocket allows one
// concurrent writer, and the event pump and the audio sink both produce
// frames.
type Writer struct {
	ws           wsConn
	writeTimeout time.Duration

	mu sync.Mutex
}

func NewWriter(ws wsConn, writeTimeout time.Duration) *Writer {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Writer{ws: ws, writeTimeout: writeTimeout}
}

// WriteJSON sends one text frame.
func (w *Writer) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.write(websocket.TextMessage, data)
}

// WriteBinary sends one binary frame.
func (w *Writer) WriteBinary(data []byte) error {
	return w.write(websocket.BinaryMessage, data)
}

func (w *Writer) write(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ws.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
		return err
	}
	return w.ws.WriteMessage(messageType, data)
}

// PingLoop keeps intermediaries from idling the connection out. Runs until
// ctx is canceled or a ping write fails.
func (w *Writer) PingLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 20 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(w.writeTimeout)); err != nil {
				return
			}
		}
	}
}

// Close sends a normal close frame.
func (w *Writer) Close() {
	_ = w.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(w.writeTimeout))
}
