package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFromReader_OverridesDefaults(t *testing.T) {
	doc := `
audio:
  source: tone
  tone:
    frequency: 220
analysis:
  activity_window: 3s
  tonal:
    excited_cv: 30
aura:
  width: 640
  height: 480
  seed: 7
feed:
  url: ws://localhost:8000/ws/sentiment
log:
  level: debug
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Audio.Source != SourceTone || cfg.Audio.Tone.Frequency != 220 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	// untouched siblings keep their defaults
	if cfg.Audio.Tone.SampleRate != 16000 || cfg.Audio.Framing.FrameSize != 2048 {
		t.Errorf("defaults lost: tone sr %d, frame %d", cfg.Audio.Tone.SampleRate, cfg.Audio.Framing.FrameSize)
	}
	if cfg.Analysis.ActivityWindow != 3*time.Second {
		t.Errorf("activity_window = %v", cfg.Analysis.ActivityWindow)
	}
	if cfg.Analysis.Tonal.ExcitedCV != 30 || cfg.Analysis.Tonal.MonotoneCV != 5 {
		t.Errorf("tonal = %+v", cfg.Analysis.Tonal)
	}
	if cfg.Aura.Width != 640 || cfg.Aura.FrameRate != 60 || cfg.Aura.Seed != 7 {
		t.Errorf("aura = %+v", cfg.Aura)
	}
	if cfg.Feed.URL == "" || cfg.Log.Level != "debug" {
		t.Errorf("feed/log = %+v %+v", cfg.Feed, cfg.Log)
	}
}

func TestLoadFromReader_Empty(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Audio.Source != SourceDevice {
		t.Errorf("source = %q, want device", cfg.Audio.Source)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("aura:\n  colour: red\n"))
	if err == nil {
		t.Fatal("unknown field accepted")
	}
}

func TestValidate_JoinsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audio.Source = "radio"
	cfg.Audio.Framing.FrameSize = 101
	cfg.Aura.FrameRate = 0
	cfg.Feed.URL = "http://example.com"
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{
		"audio.source",
		"audio.framing.frame_size",
		"aura.frame_rate",
		"feed.url scheme",
		"log.level",
		"log.format",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestValidate_Cases(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"file without path", func(c *Config) { c.Audio.Source = SourceFile }, "audio.file"},
		{"hop larger than frame", func(c *Config) { c.Audio.Framing.HopSize = 4096 }, "hop_size"},
		{"decibel range", func(c *Config) { c.Audio.Framing.MaxDB = -120 }, "max_decibels"},
		{"pitch range", func(c *Config) { c.Analysis.Pitch.MaxFreq = 40 }, "analysis.pitch range"},
		{"zcr range", func(c *Config) { c.Analysis.MinZCR = 0.5 }, "min_zcr"},
		{"viewport", func(c *Config) { c.Aura.Height = -1 }, "aura viewport"},
		{"metrics addr", func(c *Config) { c.Metrics.Enabled, c.Metrics.Addr = true, "" }, "metrics.addr"},
		{"decoder", func(c *Config) { c.Audio.Decoder.FFmpegPath = "" }, "audio.decoder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aura.yaml")
	if err := os.WriteFile(path, []byte("metrics:\n  enabled: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != ":9464" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
