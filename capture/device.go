package capture

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/RyanBlaney/sonido-aura/logging"
)

// DeviceConfig configures microphone capture
type DeviceConfig struct {
	SampleRate int `json:"sample_rate" yaml:"sample_rate"`
	// Buffered callback chunks before new audio is dropped
	QueueDepth int `json:"queue_depth" yaml:"queue_depth"`
}

// DefaultDeviceConfig captures mono 44.1 kHz
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{SampleRate: 44100, QueueDepth: 64}
}

// Device captures signed 16-bit mono audio from the default input device
type Device struct {
	framer  *Framer
	mctx    *malgo.AllocatedContext
	dev     *malgo.Device
	chunks  chan []float64
	done    chan struct{}
	pending []AudioFrame
	dropped atomic.Int64

	closeOnce sync.Once
	closeErr  error
	logger    logging.Logger
}

// OpenDevice starts capturing immediately
func OpenDevice(cfg DeviceConfig, framing FramerConfig) (*Device, error) {
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = DefaultDeviceConfig().QueueDepth
	}
	framer, err := NewFramer(cfg.SampleRate, framing)
	if err != nil {
		return nil, err
	}

	d := &Device{
		framer: framer,
		chunks: make(chan []float64, cfg.QueueDepth),
		done:   make(chan struct{}),
		logger: logging.WithFields(logging.Fields{
			"component":   "capture_device",
			"sample_rate": cfg.SampleRate,
		}),
	}

	d.mctx, err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	d.dev, err = malgo.InitDevice(d.mctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: d.onData,
	})
	if err != nil {
		_ = d.mctx.Uninit()
		d.mctx.Free()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := d.dev.Start(); err != nil {
		d.dev.Uninit()
		_ = d.mctx.Uninit()
		d.mctx.Free()
		return nil, fmt.Errorf("failed to start capture device: %w", err)
	}

	d.logger.Info("Capture device started")
	return d, nil
}

// onData runs on the audio thread and must not block
func (d *Device) onData(_, input []byte, frameCount uint32) {
	samples := s16ToFloat64(input)
	select {
	case d.chunks <- samples:
	default:
		d.dropped.Add(1)
	}
}

// SampleRate returns the capture rate
func (d *Device) SampleRate() int {
	return d.framer.SampleRate()
}

// Next blocks until a frame is available
func (d *Device) Next(ctx context.Context) (AudioFrame, error) {
	for len(d.pending) == 0 {
		select {
		case <-ctx.Done():
			return AudioFrame{}, ctx.Err()
		case <-d.done:
			return AudioFrame{}, ErrClosed
		case chunk := <-d.chunks:
			d.pending = append(d.pending, d.framer.Push(chunk)...)
		}
	}

	frame := d.pending[0]
	d.pending = d.pending[1:]
	return frame, nil
}

// Dropped returns how many callback chunks were discarded because the
// consumer fell behind
func (d *Device) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops capture and releases the device. Safe to call more than once.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		close(d.done)
		d.dev.Uninit()
		d.closeErr = d.mctx.Uninit()
		d.mctx.Free()
		d.logger.Info("Capture device stopped", logging.Fields{"dropped_chunks": d.Dropped()})
	})
	return d.closeErr
}

// s16ToFloat64 converts little-endian signed 16-bit PCM to [-1, 1)
func s16ToFloat64(data []byte) []float64 {
	out := make([]float64, len(data)/2)
	for i := range out {
		out[i] = float64(int16(binary.LittleEndian.Uint16(data[i*2:]))) / 32768
	}
	return out
}
