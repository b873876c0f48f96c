package prosody

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-aura/capture"
	"github.com/RyanBlaney/sonido-aura/logging"
	"github.com/RyanBlaney/sonido-aura/observe"
)

// ErrSessionStopped is returned by Run after Stop
var ErrSessionStopped = errors.New("prosody: session stopped")

// Option configures a Session
type Option func(*Session)

// WithMetrics records per-tick metrics on m
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithLogger replaces the global logger
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session owns an audio source and the analyzer fed by it. It lives from
// NewSession until Stop.
type Session struct {
	id       string
	source   capture.Source
	analyzer *Analyzer
	metrics  *observe.Metrics
	logger   logging.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool

	closeOnce sync.Once
	closeErr  error
}

// NewSession takes ownership of source; Stop closes it
func NewSession(source capture.Source, cfg AnalyzerConfig, opts ...Option) (*Session, error) {
	if source == nil {
		return nil, errors.New("prosody: nil audio source")
	}
	if source.SampleRate() <= 0 {
		return nil, fmt.Errorf("prosody: invalid source sample rate %d", source.SampleRate())
	}

	s := &Session{
		id:       uuid.NewString(),
		source:   source,
		analyzer: NewAnalyzer(cfg),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.GetGlobalLogger()
	}
	s.logger = s.logger.WithFields(logging.Fields{
		"component":   "prosody_session",
		"session_id":  s.id,
		"sample_rate": source.SampleRate(),
	})
	return s, nil
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id
}

// Analyzer returns the session analyzer. Only read it while Run is not
// executing.
func (s *Session) Analyzer() *Analyzer {
	return s.analyzer
}

// Run pulls frames until the source is exhausted, ctx ends or Stop is
// called, handing every state to sink. It returns nil on exhaustion or Stop
// and ctx.Err() on cancellation. Only one Run may execute at a time.
func (s *Session) Run(ctx context.Context, sink Sink) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSessionStopped
	}
	if s.done != nil {
		s.mu.Unlock()
		return errors.New("prosody: session already running")
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

	defer s.metrics.SessionStarted(ctx, "analyzer")()
	s.logger.Info("Analysis started")

	for {
		frame, err := s.source.Next(ctx)
		if err != nil {
			return s.finish(ctx, err)
		}

		start := time.Now()
		state := s.analyzer.Process(frame)
		s.metrics.RecordAnalysis(ctx, state.VoiceActive, s.analyzer.PitchAccepted(), time.Since(start))

		if sink != nil {
			sink.Observe(state)
		}
	}
}

func (s *Session) finish(ctx context.Context, err error) error {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()

	switch {
	case stopped:
		s.logger.Info("Analysis stopped")
		return nil
	case errors.Is(err, io.EOF):
		s.logger.Info("Audio source exhausted", logging.Fields{"frames": s.analyzer.State().Frame})
		return nil
	case ctx.Err() != nil:
		s.logger.Debug("Analysis canceled")
		return ctx.Err()
	default:
		s.logger.Error(err, "Audio source failed")
		return fmt.Errorf("read audio frame: %w", err)
	}
}

// Stop halts Run, waits for it to return, closes the source exactly once
// and clears analysis history. It must not be called from the sink.
func (s *Session) Stop() error {
	s.mu.Lock()
	s.stopped = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	err := s.closeSource()
	if done != nil {
		<-done
	}

	s.analyzer.Reset()
	return err
}

func (s *Session) closeSource() error {
	s.closeOnce.Do(func() {
		if err := s.source.Close(); err != nil {
			s.closeErr = fmt.Errorf("close audio source: %w", err)
		}
	})
	return s.closeErr
}
