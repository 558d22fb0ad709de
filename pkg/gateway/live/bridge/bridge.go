// Package bridge adapts a websocket connection to a live call session: the
// browser's microphone frames become the session's capture source, its
// camera snapshots the video source, and the session's playback sink writes
// model audio back down the socket as binary frames.
package bridge

import (
	"sync"
	"sync/atomic"

	"github.com/dhozzi-app/dhozzi/pkg/core/live"
)

const captureBuffer = 16

// Capture feeds browser microphone audio into a session. Frames arrive as
// binary PCM s16le at live.CaptureRate; a slow session drops frames rather
// than backing up the websocket read loop.
type Capture struct {
	frames  chan []float32
	stopped atomic.Bool
}

func NewCapture() *Capture {
	return &Capture{frames: make(chan []float32, captureBuffer)}
}

// Push decodes one inbound audio frame. Frames pushed after Stop are
// discarded.
func (c *Capture) Push(pcm []byte) {
	if c.stopped.Load() || len(pcm) == 0 {
		return
	}
	select {
	case c.frames <- live.PCM16ToFloat(pcm):
	default:
	}
}

func (c *Capture) Frames() <-chan []float32 { return c.frames }

func (c *Capture) SampleRate() int { return live.CaptureRate }

func (c *Capture) Stop() { c.stopped.Store(true) }

// Video holds the most recent camera snapshot; the session samples it on
// its own cadence, so a fast camera simply overwrites stale frames.
type Video struct {
	mu      sync.Mutex
	jpeg    []byte
	fresh   bool
	stopped bool
}

func NewVideo() *Video {
	return &Video{}
}

// Push replaces the pending snapshot.
func (v *Video) Push(jpeg []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopped || len(jpeg) == 0 {
		return
	}
	v.jpeg = jpeg
	v.fresh = true
}

// Frame returns the pending snapshot once; repeat calls report nothing new
// until the next Push.
func (v *Video) Frame() ([]byte, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.fresh {
		return nil, false
	}
	v.fresh = false
	return v.jpeg, true
}

func (v *Video) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopped = true
	v.fresh = false
}

// Sink forwards model audio to the client as binary PCM s16le frames at
// live.PlaybackRate. Flush on barge-in needs no socket traffic; the client
// clears its own buffer when it sees the interrupted event.
type Sink struct {
	writer *Writer
}

func NewSink(w *Writer) *Sink {
	return &Sink{writer: w}
}

func (s *Sink) Play(samples []float32) {
	if len(samples) == 0 {
		return
	}
	_ = s.writer.WriteBinary(live.FloatToPCM16(samples))
}

func (s *Sink) StopAll() {}
