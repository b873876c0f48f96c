package common

// Ring is a fixed-capacity FIFO history. Pushing into a full ring evicts the
// oldest entry. It backs the pitch and volume histories used for smoothing
// statistics; it is not meant for exact replay.
type Ring[T any] struct {
	buffer   []T
	writePos int
	count    int
}

// NewRing creates a ring holding at most capacity entries
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buffer: make([]T, capacity)}
}

// Push appends v, evicting the oldest entry when full
func (r *Ring[T]) Push(v T) {
	r.buffer[r.writePos] = v
	r.writePos = (r.writePos + 1) % len(r.buffer)
	if r.count < len(r.buffer) {
		r.count++
	}
}

// Len returns number of stored entries
func (r *Ring[T]) Len() int {
	return r.count
}

// Latest returns the newest entry
func (r *Ring[T]) Latest() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	idx := (r.writePos - 1 + len(r.buffer)) % len(r.buffer)
	return r.buffer[idx], true
}

// Last copies the newest n entries, oldest first. n larger than Len returns
// everything.
func (r *Ring[T]) Last(n int) []T {
	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return []T{}
	}

	out := make([]T, n)
	start := (r.writePos - n + len(r.buffer)) % len(r.buffer)
	for i := range n {
		out[i] = r.buffer[(start+i)%len(r.buffer)]
	}
	return out
}

// Values copies all entries, oldest first
func (r *Ring[T]) Values() []T {
	return r.Last(r.count)
}

// Clear empties the ring
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.buffer {
		r.buffer[i] = zero
	}
	r.writePos = 0
	r.count = 0
}

// SlidingWindow cuts a sample stream into fixed-size frames
type SlidingWindow struct {
	buffer     []float64
	windowSize int
	hopSize    int
	writePos   int
}

// NewSlidingWindow creates a new sliding window. A hop equal to the window
// size yields back-to-back frames without overlap.
func NewSlidingWindow(windowSize, hopSize int) *SlidingWindow {
	if hopSize <= 0 || hopSize > windowSize {
		hopSize = windowSize
	}
	return &SlidingWindow{
		buffer:     make([]float64, windowSize),
		windowSize: windowSize,
		hopSize:    hopSize,
	}
}

// AddSamples adds samples and returns every frame completed by them
func (sw *SlidingWindow) AddSamples(samples []float64) [][]float64 {
	var frames [][]float64

	for len(samples) > 0 {
		n := copy(sw.buffer[sw.writePos:], samples)
		sw.writePos += n
		samples = samples[n:]

		if sw.writePos < sw.windowSize {
			continue
		}

		frame := make([]float64, sw.windowSize)
		copy(frame, sw.buffer)
		frames = append(frames, frame)

		// Keep the overlap for the next frame
		overlap := sw.windowSize - sw.hopSize
		copy(sw.buffer, sw.buffer[sw.hopSize:])
		sw.writePos = overlap
	}

	return frames
}

// Pending returns how many samples are buffered toward the next frame
func (sw *SlidingWindow) Pending() int {
	return sw.writePos
}

// Reset clears the sliding window
func (sw *SlidingWindow) Reset() {
	sw.writePos = 0
	for i := range sw.buffer {
		sw.buffer[i] = 0.0
	}
}

// GetHopSize returns the hop size
func (sw *SlidingWindow) GetHopSize() int {
	return sw.hopSize
}
