// Package config loads the YAML configuration shared by the CLI commands.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-aura/aura"
	"github.com/RyanBlaney/sonido-aura/capture"
	"github.com/RyanBlaney/sonido-aura/prosody"
	"github.com/RyanBlaney/sonido-aura/transcode"
)

// SourceKind selects where audio comes from
type SourceKind string

const (
	SourceDevice SourceKind = "device"
	SourceFile   SourceKind = "file"
	SourceTone   SourceKind = "tone"
)

// IsValid reports whether k names a known source
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceDevice, SourceFile, SourceTone:
		return true
	}
	return false
}

// Config is the root configuration
type Config struct {
	Audio    AudioConfig            `json:"audio" yaml:"audio"`
	Analysis prosody.AnalyzerConfig `json:"analysis" yaml:"analysis"`
	Aura     aura.SessionConfig     `json:"aura" yaml:"aura"`
	Feed     FeedConfig             `json:"feed" yaml:"feed"`
	Metrics  MetricsConfig          `json:"metrics" yaml:"metrics"`
	Log      LogConfig              `json:"log" yaml:"log"`
}

// AudioConfig selects and configures the audio source
type AudioConfig struct {
	Source  SourceKind              `json:"source" yaml:"source"`
	File    string                  `json:"file" yaml:"file"`
	Framing capture.FramerConfig    `json:"framing" yaml:"framing"`
	Device  capture.DeviceConfig    `json:"device" yaml:"device"`
	Tone    capture.ToneConfig      `json:"tone" yaml:"tone"`
	Decoder transcode.DecoderConfig `json:"decoder" yaml:"decoder"`
}

// FeedConfig points at the sentiment WebSocket. An empty URL disables it.
type FeedConfig struct {
	URL string `json:"url" yaml:"url"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Addr        string `json:"addr" yaml:"addr"`
	ServiceName string `json:"service_name" yaml:"service_name"`
}

// LogConfig controls logger construction
type LogConfig struct {
	Level   string `json:"level" yaml:"level"`
	Format  string `json:"format" yaml:"format"` // console or json
	NoColor bool   `json:"no_color" yaml:"no_color"`
}

var validLevels = []string{"debug", "info", "warn", "error", "fatal"}

// DefaultConfig returns a configuration that analyses the default capture
// device and renders a neutral aura.
func DefaultConfig() *Config {
	tone := capture.ToneConfig{
		SampleRate: 16000,
		Frequency:  150,
		Amplitude:  0.5,
		Noise:      0.08,
		Seed:       1,
	}
	return &Config{
		Audio: AudioConfig{
			Source:  SourceDevice,
			Framing: capture.DefaultFramerConfig(),
			Device:  capture.DefaultDeviceConfig(),
			Tone:    tone,
			Decoder: *transcode.DefaultDecoderConfig(),
		},
		Analysis: prosody.DefaultAnalyzerConfig(),
		Aura:     aura.DefaultSessionConfig(),
		Metrics: MetricsConfig{
			Addr:        ":9464",
			ServiceName: "sonido-aura",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path over the defaults and validates it
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over DefaultConfig. Unknown keys are
// rejected. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns every problem found in cfg joined into one error
func Validate(cfg *Config) error {
	var errs []error

	// Audio
	a := cfg.Audio
	if !a.Source.IsValid() {
		errs = append(errs, fmt.Errorf("audio.source %q is invalid; valid values: device, file, tone", a.Source))
	}
	if a.Source == SourceFile && a.File == "" {
		errs = append(errs, errors.New("audio.file is required when audio.source is file"))
	}
	if a.Framing.FrameSize < 32 || a.Framing.FrameSize%2 != 0 {
		errs = append(errs, fmt.Errorf("audio.framing.frame_size %d must be even and at least 32", a.Framing.FrameSize))
	}
	if a.Framing.HopSize <= 0 || a.Framing.HopSize > a.Framing.FrameSize {
		errs = append(errs, fmt.Errorf("audio.framing.hop_size %d must be in [1, frame_size]", a.Framing.HopSize))
	}
	if a.Framing.LowpassHz < 0 {
		errs = append(errs, fmt.Errorf("audio.framing.lowpass_hz %g must not be negative", a.Framing.LowpassHz))
	}
	if a.Framing.Smoothing < 0 || a.Framing.Smoothing >= 1 {
		errs = append(errs, fmt.Errorf("audio.framing.smoothing %g is out of range [0, 1)", a.Framing.Smoothing))
	}
	if a.Framing.MaxDB <= a.Framing.MinDB {
		errs = append(errs, fmt.Errorf("audio.framing.max_decibels %g must exceed min_decibels %g", a.Framing.MaxDB, a.Framing.MinDB))
	}
	if a.Device.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.device.sample_rate %d must be positive", a.Device.SampleRate))
	}
	if a.Tone.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.tone.sample_rate %d must be positive", a.Tone.SampleRate))
	}
	if err := transcode.NewDecoder(&a.Decoder).ValidateConfig(); err != nil {
		errs = append(errs, fmt.Errorf("audio.decoder: %w", err))
	}

	// Analysis
	p := cfg.Analysis.Pitch
	if p.MinFreq < 0 || (p.MaxFreq > 0 && p.MaxFreq <= p.MinFreq) {
		errs = append(errs, fmt.Errorf("analysis.pitch range [%g, %g] is invalid", p.MinFreq, p.MaxFreq))
	}
	if p.Threshold < 0 || p.Threshold >= 1 {
		errs = append(errs, fmt.Errorf("analysis.pitch.threshold %g is out of range [0, 1)", p.Threshold))
	}
	if cfg.Analysis.MaxZCR > 0 && cfg.Analysis.MinZCR >= cfg.Analysis.MaxZCR {
		errs = append(errs, fmt.Errorf("analysis.min_zcr %g must be below max_zcr %g", cfg.Analysis.MinZCR, cfg.Analysis.MaxZCR))
	}
	if cfg.Analysis.HistorySize < 0 {
		errs = append(errs, fmt.Errorf("analysis.history_size %d must not be negative", cfg.Analysis.HistorySize))
	}
	if t := cfg.Analysis.Tonal; t.Window > 0 && t.MinSamples > cfg.Analysis.HistorySize && cfg.Analysis.HistorySize > 0 {
		errs = append(errs, fmt.Errorf("analysis.tonal.min_samples %d exceeds history_size %d", t.MinSamples, cfg.Analysis.HistorySize))
	}

	// Aura
	if !(cfg.Aura.Width > 0) || !(cfg.Aura.Height > 0) {
		errs = append(errs, fmt.Errorf("aura viewport %gx%g must be positive", cfg.Aura.Width, cfg.Aura.Height))
	}
	if !(cfg.Aura.FrameRate > 0) {
		errs = append(errs, fmt.Errorf("aura.frame_rate %g must be positive", cfg.Aura.FrameRate))
	}

	// Feed
	if cfg.Feed.URL != "" {
		u, err := url.Parse(cfg.Feed.URL)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("feed.url: %w", err))
		case u.Scheme != "ws" && u.Scheme != "wss":
			errs = append(errs, fmt.Errorf("feed.url scheme %q is invalid; valid values: ws, wss", u.Scheme))
		}
	}

	// Metrics
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr is required when metrics are enabled"))
	}

	// Log
	if cfg.Log.Level != "" && !contains(validLevels, strings.ToLower(cfg.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: %s", cfg.Log.Level, strings.Join(validLevels, ", ")))
	}
	if cfg.Log.Format != "" && cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: console, json", cfg.Log.Format))
	}

	return errors.Join(errs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
