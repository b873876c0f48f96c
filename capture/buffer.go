package capture

import (
	"fmt"
	"io"
)

// BufferSource frames PCM held in memory
type BufferSource struct {
	*pullSource
	samples []float64
	pos     int
}

// NewBufferSource frames samples recorded at sampleRate. The slice is not
// copied and must not be modified while the source is in use.
func NewBufferSource(samples []float64, sampleRate int, cfg FramerConfig) (*BufferSource, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	framer, err := NewFramer(sampleRate, cfg)
	if err != nil {
		return nil, err
	}

	bs := &BufferSource{samples: samples}
	bs.pullSource = newPullSource(framer, max(cfg.HopSize, 1), bs.fill)
	return bs, nil
}

func (bs *BufferSource) fill(dst []float64) (int, error) {
	if bs.pos >= len(bs.samples) {
		return 0, io.EOF
	}
	n := copy(dst, bs.samples[bs.pos:])
	bs.pos += n
	return n, nil
}

// Len returns the total number of samples
func (bs *BufferSource) Len() int {
	return len(bs.samples)
}
