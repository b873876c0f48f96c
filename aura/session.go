package aura

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-aura/algorithms/noise"
	"github.com/RyanBlaney/sonido-aura/logging"
	"github.com/RyanBlaney/sonido-aura/observe"
	"github.com/RyanBlaney/sonido-aura/sentiment"
)

// ErrSessionStopped is returned by Run after Stop
var ErrSessionStopped = errors.New("aura: session stopped")

// FrameSink receives every rendered frame. A sink that also implements
// io.Closer is closed by Session.Stop.
type FrameSink interface {
	Draw(Frame) error
}

// FrameSinkFunc adapts a function to FrameSink
type FrameSinkFunc func(Frame) error

func (f FrameSinkFunc) Draw(fr Frame) error { return f(fr) }

// SessionConfig configures the display loop
type SessionConfig struct {
	Width     float64 `json:"width" yaml:"width"`
	Height    float64 `json:"height" yaml:"height"`
	FrameRate float64 `json:"frame_rate" yaml:"frame_rate"` // Hz
	MaxFrames uint64  `json:"max_frames" yaml:"max_frames"` // 0 runs until stopped
	Seed      uint64  `json:"seed" yaml:"seed"`             // 0 picks one from the clock
}

// DefaultSessionConfig returns a 1280x720 viewport at 60 Hz
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Width:     1280,
		Height:    720,
		FrameRate: 60,
	}
}

// Option configures a Session
type Option func(*Session)

// WithMetrics records per-frame metrics on m
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithLogger replaces the global logger
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session owns a particle field and drives it from a ticker, reading the
// sentiment cell on every tick.
type Session struct {
	id      string
	cfg     SessionConfig
	cell    *sentiment.Cell
	sink    FrameSink
	metrics *observe.Metrics
	logger  logging.Logger

	mu      sync.Mutex
	field   *Field
	seq     uint64
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool

	closeOnce sync.Once
	closeErr  error
}

// NewSession creates the particle field. cell may be nil, in which case the
// aura stays neutral.
func NewSession(cell *sentiment.Cell, sink FrameSink, cfg SessionConfig, opts ...Option) (*Session, error) {
	if sink == nil {
		return nil, errors.New("aura: nil frame sink")
	}
	if !(cfg.FrameRate > 0) {
		return nil, fmt.Errorf("aura: invalid frame rate %g", cfg.FrameRate)
	}
	if cell == nil {
		cell = &sentiment.Cell{}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	field, err := NewField(cfg.Width, cfg.Height, noise.New(seed), rand.NewPCG(seed, seed^0x5bd1e995))
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:    uuid.NewString(),
		cfg:   cfg,
		cell:  cell,
		sink:  sink,
		field: field,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.GetGlobalLogger()
	}
	s.logger = s.logger.WithFields(logging.Fields{
		"component":  "aura_session",
		"session_id": s.id,
		"seed":       seed,
	})
	return s, nil
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id
}

// Run renders one frame per tick until ctx ends, Stop is called, MaxFrames
// is reached or the sink fails. It returns nil on Stop or MaxFrames and
// ctx.Err() on cancellation.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSessionStopped
	}
	if s.done != nil {
		s.mu.Unlock()
		return errors.New("aura: session already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancel, s.done = nil, nil
		s.mu.Unlock()
		close(done)
	}()

	defer s.metrics.SessionStarted(ctx, "display")()

	interval := time.Duration(float64(time.Second) / s.cfg.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Display loop started", logging.Fields{"interval": interval.String()})

	for {
		select {
		case <-ctx.Done():
			if s.isStopped() {
				s.logger.Info("Display loop stopped")
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}

		frame, ok := s.tick(ctx)
		if !ok {
			return nil
		}
		if err := s.sink.Draw(frame); err != nil {
			s.logger.Error(err, "Frame sink failed", logging.Fields{"seq": frame.Seq})
			return fmt.Errorf("draw frame %d: %w", frame.Seq, err)
		}
		if s.cfg.MaxFrames > 0 && frame.Seq >= s.cfg.MaxFrames {
			s.logger.Info("Frame limit reached", logging.Fields{"frames": frame.Seq})
			return nil
		}
	}
}

// tick steps and renders under the lock. It reports false once the field
// has been discarded.
func (s *Session) tick(ctx context.Context) (Frame, bool) {
	start := time.Now()
	sig := s.cell.Load()

	s.mu.Lock()
	if s.field == nil {
		s.mu.Unlock()
		return Frame{}, false
	}
	s.field.Step(sig)
	frame := Render(s.field, sig)
	s.seq++
	frame.Seq = s.seq
	s.mu.Unlock()

	s.metrics.RecordRender(ctx, string(frame.Sentiment), time.Since(start))
	return frame, true
}

func (s *Session) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Resize changes the viewport of the running field
func (s *Session) Resize(width, height float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.field == nil {
		return ErrSessionStopped
	}
	return s.field.Resize(width, height)
}

// Particles returns a copy of the current particles, nil after Stop
func (s *Session) Particles() []Particle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.field == nil {
		return nil
	}
	return s.field.Particles()
}

// Frames returns how many frames have been rendered
func (s *Session) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Stop halts tick scheduling, waits for Run to return, discards the
// particles and closes the sink if it is an io.Closer. It must not be
// called from the sink.
func (s *Session) Stop() error {
	s.mu.Lock()
	s.stopped = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	s.mu.Lock()
	s.field = nil
	s.mu.Unlock()

	s.closeOnce.Do(func() {
		if c, ok := s.sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				s.closeErr = fmt.Errorf("close frame sink: %w", err)
			}
		}
	})
	return s.closeErr
}
