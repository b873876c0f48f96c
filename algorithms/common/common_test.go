package common

import (
	"math"
	"testing"
)

func TestRing_EvictsOldest(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	got := r.Values()
	want := []int{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if latest, _ := r.Latest(); latest != 5 {
		t.Errorf("Latest = %d, want 5", latest)
	}
}

func TestRing_Last(t *testing.T) {
	r := NewRing[float64](100)
	for i := range 40 {
		r.Push(float64(i))
	}

	last := r.Last(30)
	if len(last) != 30 {
		t.Fatalf("len = %d, want 30", len(last))
	}
	if last[0] != 10 || last[29] != 39 {
		t.Errorf("Last(30) spans %v..%v, want 10..39", last[0], last[29])
	}
	if got := r.Last(500); len(got) != 40 {
		t.Errorf("Last(500) len = %d, want 40", len(got))
	}
}

func TestRing_Clear(t *testing.T) {
	r := NewRing[int](2)
	r.Push(1)
	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len after Clear = %d", r.Len())
	}
	if _, ok := r.Latest(); ok {
		t.Error("Latest reported a value after Clear")
	}
}

func TestSlidingWindow_FramesWithoutOverlap(t *testing.T) {
	sw := NewSlidingWindow(4, 4)
	frames := sw.AddSamples([]float64{1, 2, 3, 4, 5, 6})
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if sw.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", sw.Pending())
	}
	frames = sw.AddSamples([]float64{7, 8})
	if len(frames) != 1 || frames[0][0] != 5 || frames[0][3] != 8 {
		t.Errorf("second frame = %v", frames)
	}
}

func TestSlidingWindow_Overlap(t *testing.T) {
	sw := NewSlidingWindow(4, 2)
	frames := sw.AddSamples([]float64{1, 2, 3, 4, 5, 6})
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[1][0] != 3 || frames[1][3] != 6 {
		t.Errorf("overlapping frame = %v, want [3 4 5 6]", frames[1])
	}
}

func TestStatistics(t *testing.T) {
	data := []float64{100, 300, 100, 300}
	if got := Mean(data); got != 200 {
		t.Errorf("Mean = %v", got)
	}
	if got := PopulationStdDev(data); math.Abs(got-100) > 1e-9 {
		t.Errorf("PopulationStdDev = %v, want 100", got)
	}
	if got := CoefficientOfVariation(data); math.Abs(got-50) > 1e-9 {
		t.Errorf("CoefficientOfVariation = %v, want 50", got)
	}
}

func TestStatistics_DegenerateInputs(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v", got)
	}
	if got := CoefficientOfVariation([]float64{0, 0, 0}); got != 0 {
		t.Errorf("CV of zeros = %v, want 0", got)
	}
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v", got)
	}
	if got := Peak([]float64{0.2, -0.9, 0.5}); got != 0.9 {
		t.Errorf("Peak = %v, want 0.9", got)
	}
}

func TestClampAndWrap(t *testing.T) {
	if Clamp(math.NaN(), 0, 1) != 0 {
		t.Error("Clamp(NaN) should map to lower bound")
	}
	if Clamp(2, 0, 1) != 1 {
		t.Error("Clamp above range")
	}

	tests := []struct{ v, size, want float64 }{
		{-1, 10, 9},
		{10, 10, 0},
		{25, 10, 5},
		{3.5, 10, 3.5},
	}
	for _, tt := range tests {
		if got := Wrap(tt.v, tt.size); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Wrap(%v, %v) = %v, want %v", tt.v, tt.size, got, tt.want)
		}
	}
	if got := Wrap(-1e-18, 10); got < 0 || got >= 10 {
		t.Errorf("Wrap(-tiny) = %v escaped [0,10)", got)
	}
}

func TestExpSmoother(t *testing.T) {
	s := NewExpSmoother(0.2)
	if got := s.Update(1); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("first update = %v, want 0.2", got)
	}
	if got := s.Update(1); math.Abs(got-0.36) > 1e-12 {
		t.Errorf("second update = %v, want 0.36", got)
	}

	seeded := NewSeededExpSmoother(PitchSmoothing)
	if got := seeded.Update(150); got != 150 {
		t.Errorf("seeded first update = %v, want 150", got)
	}
	if got := seeded.Update(160); math.Abs(got-153) > 1e-9 {
		t.Errorf("seeded second update = %v, want 153", got)
	}
	seeded.Reset()
	if got := seeded.Update(90); got != 90 {
		t.Errorf("after Reset = %v, want reseed to 90", got)
	}
}
