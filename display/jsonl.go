package display

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/RyanBlaney/sonido-aura/aura"
	"github.com/RyanBlaney/sonido-aura/prosody"
)

// JSONLines writes one JSON object per line. It serves both as an
// aura.FrameSink and a prosody.Sink.
type JSONLines struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
	lines  int64
	err    error
	closed bool
}

// NewJSONLines writes to w. Close flushes and closes w when it is an
// io.Closer; see NopClose.
func NewJSONLines(w io.Writer) *JSONLines {
	buf := bufio.NewWriter(w)
	j := &JSONLines{buf: buf, enc: json.NewEncoder(buf)}
	if c, ok := w.(io.Closer); ok {
		j.closer = c
	}
	return j
}

// NopClose keeps Close from closing the underlying writer
func (j *JSONLines) NopClose() *JSONLines {
	j.closer = nil
	return j
}

// Draw implements aura.FrameSink
func (j *JSONLines) Draw(f aura.Frame) error {
	return j.write(f)
}

// Observe implements prosody.Sink. Write errors are kept for Err.
func (j *JSONLines) Observe(s prosody.State) {
	_ = j.write(s)
}

func (j *JSONLines) write(v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return fmt.Errorf("jsonl: write after close")
	}
	if j.err != nil {
		return j.err
	}
	if err := j.enc.Encode(v); err != nil {
		j.err = fmt.Errorf("jsonl: encode: %w", err)
		return j.err
	}
	j.lines++
	return nil
}

// Lines returns how many objects were written
func (j *JSONLines) Lines() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lines
}

// Err returns the first write error
func (j *JSONLines) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Flush writes buffered lines through
func (j *JSONLines) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.buf.Flush()
}

// Close flushes and closes the writer. Calling it again is a no-op.
func (j *JSONLines) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true

	err := j.buf.Flush()
	if j.closer != nil {
		if cerr := j.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
