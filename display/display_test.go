package display

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-aura/aura"
	"github.com/RyanBlaney/sonido-aura/prosody"
	"github.com/RyanBlaney/sonido-aura/sentiment"
)

func TestBar(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "░░░░░░░░░░"},
		{0.5, "█████░░░░░"},
		{1, "██████████"},
		{2, "██████████"},
		{-1, "░░░░░░░░░░"},
	}
	for _, tt := range tests {
		if got := Bar(tt.v, 10); got != tt.want {
			t.Errorf("Bar(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
	if Bar(0.5, 0) != "" {
		t.Error("zero width bar not empty")
	}
}

func TestFormat(t *testing.T) {
	s := prosody.State{
		Pitch:        150.04,
		Note:         "D3",
		Confidence:   0.9,
		Volume:       0.3,
		VoiceEnergy:  0.5,
		SpeakingRate: 98.4,
	}
	got := Format(s)
	for _, want := range []string{"150.0 Hz", "D3", "conf 0.90", "vol ███░░░░░░░ 0.30", "energy █████░░░░░ 0.50", "rate  98%"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format = %q, missing %q", got, want)
		}
	}

	if got := Format(prosody.State{Note: "--"}); !strings.Contains(got, "--- Hz") {
		t.Errorf("silent Format = %q", got)
	}
}

func TestMeter_Observe(t *testing.T) {
	var buf bytes.Buffer
	m := NewMeter(&buf, WithoutColor(), WithEvery(2))

	for i := int64(1); i <= 4; i++ {
		m.Observe(prosody.State{Frame: i, VoiceActive: i == 4, TonalQuality: prosody.Excited, Note: "--"})
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("printed %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "silent") || !strings.Contains(lines[1], "speaking") {
		t.Errorf("voice column wrong:\n%s", buf.String())
	}
	if !strings.Contains(lines[1], "excited") {
		t.Errorf("tonal quality missing: %q", lines[1])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("colors emitted despite WithoutColor")
	}
}

func TestTints(t *testing.T) {
	tests := []struct {
		name string
		tint func(float64) Tint
		v    float64
		want Tint
	}{
		{"pitch low", PitchTint, 84.9, TintBlue},
		{"pitch 85", PitchTint, 85, TintGreen},
		{"pitch 164", PitchTint, 164.9, TintGreen},
		{"pitch 165", PitchTint, 165, TintAmber},
		{"pitch 254", PitchTint, 254.9, TintAmber},
		{"pitch 255", PitchTint, 255, TintRed},
		{"confidence 0", ConfidenceTint, 0, TintRed},
		{"confidence 0.3", ConfidenceTint, 0.3, TintAmber},
		{"confidence 0.6", ConfidenceTint, 0.6, TintGreen},
		{"confidence 0.8", ConfidenceTint, 0.8, TintBlue},
		{"level 0.29", LevelTint, 0.29, TintBlue},
		{"level 0.3", LevelTint, 0.3, TintGreen},
		{"level 0.6", LevelTint, 0.6, TintAmber},
		{"level 0.8", LevelTint, 0.8, TintRed},
		{"level 1", LevelTint, 1, TintRed},
	}
	for _, tt := range tests {
		if got := tt.tint(tt.v); got != tt.want {
			t.Errorf("%s: tint(%v) = %d, want %d", tt.name, tt.v, got, tt.want)
		}
	}
}

func TestMeter_ColorsMetrics(t *testing.T) {
	var buf bytes.Buffer
	m := NewMeter(&buf)
	for _, c := range m.colors() {
		c.EnableColor()
	}

	m.Observe(prosody.State{
		Pitch:        80,
		Note:         "E2",
		Confidence:   0.2,
		Volume:       0.5,
		VoiceEnergy:  0.7,
		SpeakingRate: 90,
		TonalQuality: prosody.Neutral,
	})

	got := buf.String()
	for _, want := range []string{
		"\x1b[34m  80.0 Hz\x1b[0m",
		"conf \x1b[31m0.20\x1b[0m",
		"\x1b[32m0.50\x1b[0m",
		"\x1b[33m0.70\x1b[0m",
		"rate \x1b[31m 90%\x1b[0m",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

type closeRecorder struct {
	bytes.Buffer
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestJSONLines_FramesAndStates(t *testing.T) {
	out := &closeRecorder{}
	j := NewJSONLines(out)

	frame := aura.Frame{Seq: 1, Width: 10, Height: 10, Sentiment: sentiment.Neutral, Commands: []aura.Command{{Kind: aura.KindClear}}}
	if err := j.Draw(frame); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	j.Observe(prosody.State{Frame: 3, TonalQuality: prosody.Subdued})

	if j.Lines() != 2 {
		t.Errorf("Lines = %d", j.Lines())
	}
	if out.Len() != 0 {
		t.Error("output written before flush")
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := j.Close(); err != nil || out.closed != 1 {
		t.Errorf("second Close: err %v, closed %d", err, out.closed)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	var gotFrame aura.Frame
	if err := json.Unmarshal([]byte(lines[0]), &gotFrame); err != nil {
		t.Fatalf("frame line: %v", err)
	}
	if gotFrame.Seq != 1 || len(gotFrame.Commands) != 1 || gotFrame.Commands[0].Kind != aura.KindClear {
		t.Errorf("frame = %+v", gotFrame)
	}
	if !strings.Contains(lines[1], `"tonal_quality":"subdued"`) {
		t.Errorf("state line = %s", lines[1])
	}

	if err := j.Draw(frame); err == nil {
		t.Error("Draw after Close succeeded")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestJSONLines_NopClose(t *testing.T) {
	out := &closeRecorder{}
	j := NewJSONLines(out).NopClose()
	j.Observe(prosody.State{Frame: 1})
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	if out.closed != 0 {
		t.Error("NopClose writer was closed")
	}
	if out.Len() == 0 {
		t.Error("Close did not flush")
	}
}

func TestJSONLines_FlushError(t *testing.T) {
	j := NewJSONLines(failingWriter{})
	j.Observe(prosody.State{Frame: 1})
	if err := j.Flush(); err == nil {
		t.Error("Flush to failing writer succeeded")
	}
}
