package live

import (
	"context"
	"sort"
	"sync"
	"time"
)

// fakeClock is a manually advanced Clock. Advance fires due timers in
// deadline order and delivers ticker ticks, all on the calling goroutine.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*fakeTimer
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, when: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 64), period: d, next: c.now.Add(d)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.when
		next.fired = true
		f := next.f
		c.mu.Unlock()
		f()
		c.mu.Lock()
	}
	c.now = target
	for _, t := range c.tickers {
		t.deliverThrough(target)
	}
	sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].when.Before(c.timers[j].when) })
	c.mu.Unlock()
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

type fakeTicker struct {
	ch     chan time.Time
	period time.Duration

	mu      sync.Mutex
	next    time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTicker) deliverThrough(target time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for !t.stopped && !t.next.After(target) {
		select {
		case t.ch <- t.next:
		default:
		}
		t.next = t.next.Add(t.period)
	}
}

// fakeSink records every chunk and counts StopAll calls.
type fakeSink struct {
	mu      sync.Mutex
	chunks  [][]float32
	stopped int
}

func (s *fakeSink) Play(samples []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, samples)
}

func (s *fakeSink) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped++
}

func (s *fakeSink) chunkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

func (s *fakeSink) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// fakeCapture is a hand-fed microphone.
type fakeCapture struct {
	frames chan []float32
	rate   int

	mu    sync.Mutex
	stops int
}

func newFakeCapture(rate int) *fakeCapture {
	return &fakeCapture{frames: make(chan []float32, 16), rate: rate}
}

func (c *fakeCapture) Frames() <-chan []float32 { return c.frames }
func (c *fakeCapture) SampleRate() int          { return c.rate }

func (c *fakeCapture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
}

func (c *fakeCapture) stopCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stops
}

// fakeVideo serves a fixed frame.
type fakeVideo struct {
	frame []byte

	mu    sync.Mutex
	stops int
}

func (v *fakeVideo) Frame() ([]byte, bool) { return v.frame, v.frame != nil }

func (v *fakeVideo) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stops++
}

// fakeTransport records outbound media and lets tests inject server messages.
type fakeTransport struct {
	recv chan ServerMessage

	mu     sync.Mutex
	audio  [][]byte
	frames [][]byte
	closes int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{recv: make(chan ServerMessage, 32)}
}

func (t *fakeTransport) SendAudio(pcm []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	buf := make([]byte, len(pcm))
	copy(buf, pcm)
	t.audio = append(t.audio, buf)
	return nil
}

func (t *fakeTransport) SendVideoFrame(jpeg []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, jpeg)
	return nil
}

func (t *fakeTransport) Receive() <-chan ServerMessage { return t.recv }

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closes == 0 {
		close(t.recv)
	}
	t.closes++
	return nil
}

func (t *fakeTransport) closeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closes
}

func (t *fakeTransport) audioCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.audio)
}

type fakeDialer struct {
	transport Transport
	err       error
}

func (d *fakeDialer) Dial(ctx context.Context, opts DialOptions) (Transport, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.transport, nil
}
