package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Dependencies carries everything a Session needs. Dialer, Capture, and Sink
// are required; Video is required in video mode. Clock and Logger default to
// the real clock and slog.Default.
type Dependencies struct {
	Dialer  Dialer
	Capture CaptureSource
	Video   VideoSource
	Sink    Sink
	Clock   Clock
	Logger  *slog.Logger
	Config  Config
}

// Session is one live call. Create with New, drive with Start, observe via
// Events, stop with Hangup. All teardown paths converge on a single one-shot
// release of the capture device, the video sampler, the playback queue, and
// the transport; calling Hangup after the call ended is a no-op.
type Session struct {
	cfg     Config
	logger  *slog.Logger
	dialer  Dialer
	capture CaptureSource
	video   VideoSource
	clock   Clock

	transport   Transport
	playback    *PlaybackQueue
	transcripts TranscriptBuffer

	events chan Event
	done   chan struct{}

	mu    sync.Mutex
	state State

	remaining atomic.Int64
	limited   bool

	closed   atomic.Bool
	teardown sync.Once

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New validates dependencies and builds an unstarted session.
func New(deps Dependencies) (*Session, error) {
	if deps.Dialer == nil {
		return nil, fmt.Errorf("dialer is required")
	}
	if deps.Capture == nil {
		return nil, fmt.Errorf("capture source is required")
	}
	if deps.Sink == nil {
		return nil, fmt.Errorf("playback sink is required")
	}
	deps.Config.applyDefaults()
	if deps.Config.Mode == ModeVideo && deps.Video == nil {
		return nil, fmt.Errorf("video source is required in video mode")
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Session{
		cfg:     deps.Config,
		logger:  deps.Logger,
		dialer:  deps.Dialer,
		capture: deps.Capture,
		video:   deps.Video,
		clock:   deps.Clock,
		events:  make(chan Event, deps.Config.EventBuffer),
		done:    make(chan struct{}),
		state:   StateConnecting,
	}
	s.playback = NewPlaybackQueue(deps.Clock, deps.Sink)
	s.playback.OnStart = func() { s.setState(StateSpeaking) }
	s.playback.OnDrained = func() { s.setState(StateListening) }

	seconds, limited := QuotaSeconds(deps.Config.Plan, deps.Config.Mode)
	s.limited = limited
	s.remaining.Store(int64(seconds))
	return s, nil
}

// Events is the consumer-facing stream of state changes, captions, and
// failures. Buffered; events are dropped, not blocked on, when full.
func (s *Session) Events() <-chan Event { return s.events }

// Done closes when teardown has completed.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RemainingSeconds reports the quota left, or -1 for unlimited plans.
func (s *Session) RemainingSeconds() int {
	if !s.limited {
		return -1
	}
	return int(s.remaining.Load())
}

// Start dials the backend and launches the media loops. It returns once the
// call is established; the call then runs until Hangup, quota exhaustion, or
// a transport failure.
func (s *Session) Start(ctx context.Context) error {
	s.emit(StateEvent{State: StateConnecting})

	transport, err := s.dialer.Dial(ctx, DialOptions{
		Model:             s.cfg.Model,
		Voice:             s.cfg.Voice,
		SystemInstruction: s.cfg.SystemInstruction,
	})
	if err != nil {
		s.fail(fmt.Errorf("connect: %w", err))
		return err
	}
	s.mu.Lock()
	s.transport = transport
	s.mu.Unlock()

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go s.outboundLoop(loopCtx)
	go s.inboundLoop()
	// Tickers are created here, not inside the loops, so the countdown and
	// the frame sampler are registered with the clock before Start returns.
	if s.cfg.Mode == ModeVideo {
		s.wg.Add(1)
		go s.videoLoop(loopCtx, s.clock.NewTicker(s.cfg.FrameInterval))
	}
	if s.limited {
		s.wg.Add(1)
		go s.quotaLoop(loopCtx, s.clock.NewTicker(time.Second))
	}

	s.setState(StateListening)
	s.logger.Info("call connected",
		"model", s.cfg.Model,
		"mode", string(s.cfg.Mode),
		"quota_seconds", s.RemainingSeconds())
	return nil
}

// Hangup ends the call. Idempotent.
func (s *Session) Hangup() {
	s.end(EndHangup)
}

// outboundLoop forwards microphone frames upstream: resample to CaptureRate,
// quantize to s16le, send. Capture keeps flowing even while the model is
// being interrupted; the backend does its own voice-activity handling.
func (s *Session) outboundLoop(ctx context.Context) {
	defer s.wg.Done()
	srcRate := s.capture.SampleRate()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-s.capture.Frames():
			if !ok {
				return
			}
			pcm := FloatToPCM16(Resample(frame, srcRate, CaptureRate))
			if len(pcm) == 0 {
				continue
			}
			if err := s.transport.SendAudio(pcm); err != nil {
				if !s.closed.Load() {
					s.fail(fmt.Errorf("send audio: %w", err))
				}
				return
			}
		}
	}
}

// videoLoop samples the camera on a fixed-interval ticker, independent of the
// audio pipeline.
func (s *Session) videoLoop(ctx context.Context, ticker Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			frame, ok := s.video.Frame()
			if !ok {
				continue
			}
			if err := s.transport.SendVideoFrame(frame); err != nil {
				if !s.closed.Load() {
					s.fail(fmt.Errorf("send video frame: %w", err))
				}
				return
			}
		}
	}
}

func (s *Session) inboundLoop() {
	defer s.wg.Done()
	for msg := range s.transport.Receive() {
		switch msg.Kind {
		case MsgAudio:
			s.playback.Enqueue(msg.PCM)
		case MsgTranscript:
			text := s.transcripts.Append(msg.Speaker, msg.Text)
			s.emit(TranscriptEvent{Speaker: msg.Speaker, Text: text})
		case MsgTurnComplete:
			s.transcripts.Clear()
			s.emit(TurnCompleteEvent{})
		case MsgInterrupted:
			s.playback.Flush()
			s.setState(StateListening)
			s.emit(InterruptedEvent{})
		case MsgClosed:
			s.end(EndRemoteClose)
			return
		case MsgError:
			s.fail(msg.Err)
			return
		}
	}
	// Stream ended without a close frame.
	s.end(EndRemoteClose)
}

func (s *Session) quotaLoop(ctx context.Context, ticker Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			left := s.remaining.Add(-1)
			if left <= 0 {
				s.emit(QuotaEvent{RemainingSeconds: 0})
				s.end(EndQuota)
				return
			}
			s.emit(QuotaEvent{RemainingSeconds: int(left)})
		}
	}
}

// setState records a transition and emits it. Transitions out of a terminal
// state never happen; redundant transitions are dropped.
func (s *Session) setState(next State) {
	s.mu.Lock()
	if s.state.Terminal() || s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	s.mu.Unlock()
	s.emit(StateEvent{State: next})
}

func (s *Session) fail(err error) {
	msg := "call failed"
	if err != nil {
		msg = err.Error()
	}
	s.release(StateError, ErrorEvent{Message: msg})
}

func (s *Session) end(reason EndReason) {
	s.release(StateEnded, EndedEvent{Reason: reason})
}

// release is the single teardown path: stop capture and video, discard
// scheduled playback, close the transport, then report the final state.
// One-shot; every later call is a no-op.
func (s *Session) release(final State, last Event) {
	s.teardown.Do(func() {
		s.closed.Store(true)
		if s.cancel != nil {
			s.cancel()
		}
		s.capture.Stop()
		if s.video != nil {
			s.video.Stop()
		}
		s.playback.Close()

		s.mu.Lock()
		transport := s.transport
		wasTerminal := s.state.Terminal()
		if !wasTerminal {
			s.state = final
		}
		s.mu.Unlock()
		if transport != nil {
			if err := transport.Close(); err != nil {
				s.logger.Debug("transport close", "error", err)
			}
		}

		if !wasTerminal {
			s.emit(StateEvent{State: final})
			s.emit(last)
		}
		close(s.done)
		s.logger.Info("call ended", "state", final.String())
	})
}

func (s *Session) emit(e Event) {
	select {
	case s.events <- e:
	default:
		s.logger.Debug("live event dropped", "type", e.EventType())
	}
}
