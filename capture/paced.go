package capture

import (
	"context"
	"time"
)

// Paced releases frames from a non-live source no faster than real time.
// A frame is held until the wall clock reaches the end of its samples,
// measured from the first Next call.
type Paced struct {
	Source
	start time.Time
}

// NewPaced wraps src
func NewPaced(src Source) *Paced {
	return &Paced{Source: src}
}

// Next returns the next frame once it is due
func (p *Paced) Next(ctx context.Context) (AudioFrame, error) {
	if p.start.IsZero() {
		p.start = time.Now()
	}

	frame, err := p.Source.Next(ctx)
	if err != nil {
		return frame, err
	}

	length := time.Duration(int64(len(frame.Samples)) * int64(time.Second) / int64(max(frame.SampleRate, 1)))
	wait := time.Until(p.start.Add(frame.Offset + length))
	if wait <= 0 {
		return frame, nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return AudioFrame{}, ctx.Err()
	case <-timer.C:
		return frame, nil
	}
}
