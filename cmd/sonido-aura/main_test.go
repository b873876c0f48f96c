package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-aura/sentiment"
)

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		in      string
		want    sentiment.Signal
		wantErr bool
	}{
		{in: "positive", want: sentiment.Signal{Type: sentiment.Positive, Intensity: 0.7}},
		{in: "neutral", want: sentiment.Signal{Type: sentiment.Neutral, Intensity: 0.5}},
		{in: "Negative:0.25", want: sentiment.Signal{Type: sentiment.Negative, Intensity: 0.25}},
		{in: "joyful", wantErr: true},
		{in: "positive:lots", wantErr: true},
		{in: "positive:1.5", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseSentiment(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSentiment(%q) succeeded", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSentiment(%q): %v", tt.in, err)
			continue
		}
		if got.Type != tt.want.Type || got.Intensity != tt.want.Intensity {
			t.Errorf("parseSentiment(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestAuraCommand_WritesFrames(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "aura.yaml")
	doc := "aura:\n  width: 64\n  height: 48\n  frame_rate: 500\n  seed: 3\nlog:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "frames.jsonl")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"aura", "--config", cfgPath, "-n", "3", "-s", "negative:0.9", "-o", outPath})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("aura command: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("wrote %d frames, want 3", len(lines))
	}
	if !strings.Contains(lines[2], `"seq":3`) || !strings.Contains(lines[2], `"sentiment":"negative"`) {
		t.Errorf("last frame header wrong: %.120s", lines[2])
	}
}

func TestRootCommand_RejectsBadConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"aura", "--log-format", "xml", "-n", "1", "-o", filepath.Join(t.TempDir(), "x")})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("invalid log format accepted")
	}
}
