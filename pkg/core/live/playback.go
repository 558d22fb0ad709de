package live

import (
	"sync"
	"time"
)

// Sink renders scheduled audio. The gateway bridge forwards chunks to the
// browser's output device; tests record them.
type Sink interface {
	// Play hands over one chunk of mono float32 samples at PlaybackRate. The
	// queue guarantees chunks arrive in schedule order, back to back.
	Play(samples []float32)
	// StopAll silences every chunk handed over so far, immediately.
	StopAll()
}

// PlaybackQueue schedules model speech for gapless playback. Each enqueued
// chunk starts at the later of the current schedule tail and now, so
// consecutive chunks never overlap and never leave a gap while the backend
// keeps up. A completion timer per chunk shrinks the active set; the queue
// reports the busy/idle edges through the OnStart and OnDrained callbacks.
type PlaybackQueue struct {
	clock Clock
	sink  Sink

	// OnStart fires when the queue goes from idle to playing; OnDrained when
	// the last scheduled chunk finishes. Set before the first Enqueue.
	OnStart   func()
	OnDrained func()

	mu     sync.Mutex
	tail   time.Time
	nextID int
	active map[int]Timer
	closed bool
}

// NewPlaybackQueue builds an idle queue over the given sink.
func NewPlaybackQueue(clock Clock, sink Sink) *PlaybackQueue {
	return &PlaybackQueue{
		clock:  clock,
		sink:   sink,
		active: make(map[int]Timer),
	}
}

// Enqueue decodes one chunk of 24 kHz s16le PCM and schedules it after
// everything already queued. Empty chunks are dropped, as is anything that
// arrives after Close.
func (q *PlaybackQueue) Enqueue(pcm []byte) {
	samples := PCM16ToFloat(pcm)
	if len(samples) == 0 {
		return
	}
	dur := time.Duration(len(samples)) * time.Second / PlaybackRate

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	now := q.clock.Now()
	start := q.tail
	if start.Before(now) {
		start = now
	}
	end := start.Add(dur)
	q.tail = end

	wasIdle := len(q.active) == 0
	id := q.nextID
	q.nextID++
	q.active[id] = q.clock.AfterFunc(end.Sub(now), func() {
		q.finish(id)
	})
	q.mu.Unlock()

	q.sink.Play(samples)
	if wasIdle && q.OnStart != nil {
		q.OnStart()
	}
}

func (q *PlaybackQueue) finish(id int) {
	q.mu.Lock()
	if _, ok := q.active[id]; !ok {
		q.mu.Unlock()
		return
	}
	delete(q.active, id)
	drained := len(q.active) == 0
	q.mu.Unlock()

	if drained && q.OnDrained != nil {
		q.OnDrained()
	}
}

// Flush discards everything: stops all pending completion timers, silences
// the sink, and resets the schedule tail to now. Used on barge-in. No
// OnDrained callback fires for flushed chunks.
func (q *PlaybackQueue) Flush() {
	q.flush(false)
}

// Close flushes like Flush and additionally rejects every later Enqueue.
// Transport messages can still be in flight when the call tears down; the
// closed queue is what keeps them out of the sink.
func (q *PlaybackQueue) Close() {
	q.flush(true)
}

func (q *PlaybackQueue) flush(closing bool) {
	q.mu.Lock()
	if closing {
		q.closed = true
	}
	for id, t := range q.active {
		t.Stop()
		delete(q.active, id)
	}
	q.tail = q.clock.Now()
	q.mu.Unlock()

	q.sink.StopAll()
}

// Playing reports whether any chunk is scheduled and unfinished.
func (q *PlaybackQueue) Playing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.active) > 0
}

// Tail returns the end time of the last scheduled chunk.
func (q *PlaybackQueue) Tail() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tail
}
