package transcode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/RyanBlaney/sonido-aura/logging"
)

func init() {
	ffmpeg.LogCompiledCommand = false
}

// AudioData is decoded mono PCM
type AudioData struct {
	PCM        []float64     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
	Source     string        `json:"source,omitempty"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate" yaml:"target_sample_rate"`
	MaxDuration      time.Duration `json:"max_duration" yaml:"max_duration"` // 0 = whole file
	FFmpegPath       string        `json:"ffmpeg_path" yaml:"ffmpeg_path"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 44100,
		MaxDuration:      0,
		FFmpegPath:       "ffmpeg", // assume in PATH
	}
}

// Decoder converts any format ffmpeg understands into mono float64 PCM at
// the target sample rate.
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// DecodeFile decodes an audio file
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	logger.Debug("Starting audio file decode")
	return d.run(filename, nil, logger)
}

// DecodeReader decodes audio piped from r
func (d *Decoder) DecodeReader(r io.Reader) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeReader",
	})

	logger.Debug("Starting audio stream decode")
	return d.run("pipe:", r, logger)
}

func (d *Decoder) run(input string, stdin io.Reader, logger logging.Logger) (*AudioData, error) {
	if err := d.ValidateConfig(); err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	stream := ffmpeg.Input(input).
		Output("pipe:", d.outputArgs()).
		SetFfmpegPath(d.config.FFmpegPath).
		WithOutput(&stdout).
		WithErrorOutput(&stderr)
	if stdin != nil {
		stream = stream.WithInput(stdin)
	}
	err := stream.Run()
	if err != nil {
		logger.Error(err, "FFmpeg decode failed", logging.Fields{
			"stderr": strings.TrimSpace(stderr.String()),
		})
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToFloat64(stdout.Bytes())
	if len(samples) == 0 {
		return nil, fmt.Errorf("no audio samples decoded")
	}

	duration := time.Duration(len(samples)) * time.Second / time.Duration(d.config.TargetSampleRate)
	logger.Debug("FFmpeg decode completed", logging.Fields{
		"output_samples":     len(samples),
		"output_sample_rate": d.config.TargetSampleRate,
		"output_duration":    duration.Seconds(),
	})

	return &AudioData{
		PCM:        samples,
		SampleRate: d.config.TargetSampleRate,
		Channels:   1,
		Duration:   duration,
		Source:     input,
	}, nil
}

// outputArgs requests raw float64 little-endian mono at the target rate
func (d *Decoder) outputArgs() ffmpeg.KwArgs {
	args := ffmpeg.KwArgs{
		"loglevel": "error",
		"map":      "0:a:0?",
		"f":        "f64le",
		"acodec":   "pcm_f64le",
		"ac":       1,
		"ar":       d.config.TargetSampleRate,
	}
	if d.config.MaxDuration > 0 {
		args["t"] = fmt.Sprintf("%.3f", d.config.MaxDuration.Seconds())
	}
	return args
}

// bytesToFloat64 converts raw float64 little-endian bytes, dropping any
// trailing partial sample
func bytesToFloat64(data []byte) []float64 {
	data = data[:len(data)-len(data)%8]
	if len(data) == 0 {
		return nil
	}

	samples := make([]float64, len(data)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}
	return samples
}

// ValidateConfig validates the decoder configuration
func (d *Decoder) ValidateConfig() error {
	if d.config.TargetSampleRate <= 0 {
		return fmt.Errorf("target sample rate must be positive: %d", d.config.TargetSampleRate)
	}
	if d.config.MaxDuration < 0 {
		return fmt.Errorf("max duration must not be negative: %v", d.config.MaxDuration)
	}
	if d.config.FFmpegPath == "" {
		return fmt.Errorf("ffmpeg path is empty")
	}
	return nil
}

// Available reports whether the ffmpeg binary can be found
func (d *Decoder) Available() error {
	if _, err := exec.LookPath(d.config.FFmpegPath); err != nil {
		return fmt.Errorf("ffmpeg not found at %s: %w", d.config.FFmpegPath, err)
	}
	return nil
}
