package capture

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
)

// pullSource drives a Framer from a synchronous sample producer. fill
// writes up to len(dst) samples and returns io.EOF once nothing is left.
type pullSource struct {
	framer  *Framer
	chunk   []float64
	fill    func(dst []float64) (int, error)
	pending []AudioFrame
	closed  atomic.Bool
	drained bool
}

func newPullSource(framer *Framer, chunkSize int, fill func([]float64) (int, error)) *pullSource {
	return &pullSource{
		framer: framer,
		chunk:  make([]float64, chunkSize),
		fill:   fill,
	}
}

func (ps *pullSource) SampleRate() int {
	return ps.framer.SampleRate()
}

func (ps *pullSource) Next(ctx context.Context) (AudioFrame, error) {
	for {
		if ps.closed.Load() {
			return AudioFrame{}, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return AudioFrame{}, err
		}
		if len(ps.pending) > 0 {
			frame := ps.pending[0]
			ps.pending = ps.pending[1:]
			return frame, nil
		}
		if ps.drained {
			return AudioFrame{}, io.EOF
		}

		n, err := ps.fill(ps.chunk)
		if n > 0 {
			ps.pending = append(ps.pending, ps.framer.Push(ps.chunk[:n])...)
		}
		if errors.Is(err, io.EOF) {
			// a trailing partial frame is dropped
			ps.drained = true
		} else if err != nil {
			return AudioFrame{}, err
		}
	}
}

func (ps *pullSource) Close() error {
	ps.closed.Store(true)
	return nil
}
