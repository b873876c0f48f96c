package prosody

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-aura/capture"
)

// voiceSource is a 150 Hz tone over a faint noise floor at 16 kHz. A bare
// sine has all its energy in the low band and reads as monotone; the noise
// gives it a room-tone spectrum.
func voiceSource(t *testing.T, duration time.Duration) *capture.ToneSource {
	t.Helper()
	src, err := capture.NewToneSource(capture.ToneConfig{
		SampleRate: 16000,
		Frequency:  150,
		Amplitude:  0.5,
		Noise:      0.08,
		Seed:       1,
		Duration:   duration,
	}, capture.DefaultFramerConfig())
	if err != nil {
		t.Fatalf("NewToneSource: %v", err)
	}
	return src
}

func silentFrame(offset time.Duration) capture.AudioFrame {
	return capture.AudioFrame{
		Samples:    make([]float64, 2048),
		Magnitudes: make([]float64, 1024),
		SampleRate: 16000,
		Offset:     offset,
	}
}

func TestAnalyzer_SustainedVoice(t *testing.T) {
	src := voiceSource(t, 0)
	a := NewAnalyzer(DefaultAnalyzerConfig())

	var state State
	for i := range 200 {
		frame, err := src.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		state = a.Process(frame)
		if !state.VoiceActive {
			t.Fatalf("frame %d: voice inactive", i+1)
		}
	}

	if math.Abs(state.Pitch-150) > 3 {
		t.Errorf("pitch = %v, want 150±3", state.Pitch)
	}
	if state.Confidence <= 0.5 {
		t.Errorf("confidence = %v", state.Confidence)
	}
	if state.Volume < 0.9 {
		t.Errorf("volume = %v, want near 1", state.Volume)
	}
	if state.VoiceEnergy < 0.3 || state.VoiceEnergy > 0.8 {
		t.Errorf("voice energy = %v, want ~0.5", state.VoiceEnergy)
	}
	if state.SpeakingRate < 90 {
		t.Errorf("speaking rate = %v, want near 100", state.SpeakingRate)
	}
	if state.TonalQuality != Neutral {
		t.Errorf("tonal quality = %v, want neutral", state.TonalQuality)
	}
	if state.Note != "D3" {
		t.Errorf("note = %q, want D3", state.Note)
	}
	if state.Frame != 200 {
		t.Errorf("frame = %d, want 200", state.Frame)
	}

	// pitch and volume are sampled every third tick
	if got := len(a.PitchHistory()); got < 60 || got > 66 {
		t.Errorf("pitch history len = %d, want about 66", got)
	}
	if got := len(a.VolumeHistory()); got != 66 {
		t.Errorf("volume history len = %d, want 66", got)
	}
}

func TestAnalyzer_SilenceClearsPitch(t *testing.T) {
	src := voiceSource(t, 0)
	a := NewAnalyzer(DefaultAnalyzerConfig())

	var last capture.AudioFrame
	for range 40 {
		frame, err := src.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		a.Process(frame)
		last = frame
	}

	var state State
	for i := 1; i <= 30; i++ {
		state = a.Process(silentFrame(last.Offset + time.Duration(i)*128*time.Millisecond))
		if state.VoiceActive {
			t.Fatalf("silent frame %d reported voice", i)
		}
	}
	if state.Pitch == 0 {
		t.Fatal("pitch cleared after only 30 silent frames")
	}

	state = a.Process(silentFrame(last.Offset + 31*128*time.Millisecond))
	if state.Pitch != 0 || state.Confidence != 0 {
		t.Errorf("after 31 silent frames pitch=%v confidence=%v, want 0", state.Pitch, state.Confidence)
	}
	if state.Note != "--" {
		t.Errorf("note = %q, want --", state.Note)
	}
}

func TestAnalyzer_Reset(t *testing.T) {
	src := voiceSource(t, 0)
	a := NewAnalyzer(DefaultAnalyzerConfig())
	for range 30 {
		frame, err := src.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		a.Process(frame)
	}

	a.Reset()
	if len(a.PitchHistory()) != 0 || len(a.VolumeHistory()) != 0 {
		t.Error("history survived Reset")
	}
	if s := a.State(); s.Frame != 0 || s.Pitch != 0 || s.Volume != 0 {
		t.Errorf("state after Reset = %+v", s)
	}
}

func TestAnalyzer_EmptyMagnitudes(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{})
	state := a.Process(capture.AudioFrame{Samples: make([]float64, 256), SampleRate: 8000})
	if state.VoiceEnergy != 0 || state.VoiceActive {
		t.Errorf("state = %+v", state)
	}
}
