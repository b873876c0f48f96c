package temporal

import (
	"math"
	"testing"
)

func sine(freq, amplitude float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestVolume(t *testing.T) {
	if got := Volume(nil); got != 0 {
		t.Errorf("Volume(nil) = %v", got)
	}
	if got := Volume(make([]float64, 512)); got != 0 {
		t.Errorf("Volume(zeros) = %v", got)
	}

	square := make([]float64, 512)
	for i := range square {
		square[i] = 1
		if i%2 == 1 {
			square[i] = -1
		}
	}
	if got := Volume(square); got != 1 {
		t.Errorf("Volume(full scale) = %v, want 1", got)
	}

	// rms 0.01/sqrt2, peak 0.01
	quiet := sine(200, 0.01, 16000, 1600)
	raw := (0.7*0.01/math.Sqrt2 + 0.3*0.01) * 3
	want := math.Pow(raw, 0.7)
	if got := Volume(quiet); math.Abs(got-want) > 1e-3 {
		t.Errorf("Volume(quiet) = %v, want %v", got, want)
	}
}

func TestVolume_Monotonic(t *testing.T) {
	prev := -1.0
	for _, amp := range []float64{0.001, 0.01, 0.05, 0.1, 0.2} {
		v := Volume(sine(220, amp, 16000, 1600))
		if v < 0 || v > 1 {
			t.Fatalf("amplitude %v: volume %v outside [0,1]", amp, v)
		}
		if v <= prev {
			t.Errorf("amplitude %v: volume %v not above %v", amp, v, prev)
		}
		prev = v
	}
}

func TestVoiceActivityDetector(t *testing.T) {
	vad := NewVoiceActivityDetector()

	dc := make([]float64, 1024)
	for i := range dc {
		dc[i] = 0.9
	}

	alternating := make([]float64, 1024)
	for i := range alternating {
		alternating[i] = 0.5
		if i%2 == 1 {
			alternating[i] = -0.5
		}
	}

	tests := []struct {
		name   string
		frame  []float64
		volume float64
		want   bool
	}{
		{"150 Hz at 16 kHz", sine(150, 0.5, 16000, 2048), 0.5, true},
		{"quiet voice", sine(150, 0.5, 16000, 2048), 0.02, false},
		{"dc", dc, 1, false},
		{"broadband", alternating, 1, false},
		// zcr ~0.0068 at 44.1 kHz
		{"150 Hz at 44.1 kHz", sine(150, 0.5, 44100, 2048), 0.5, false},
	}
	for _, tt := range tests {
		if got := vad.IsActive(tt.frame, tt.volume); got != tt.want {
			t.Errorf("%s: IsActive = %v, want %v", tt.name, got, tt.want)
		}
	}
}
