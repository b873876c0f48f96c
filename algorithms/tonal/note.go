package tonal

import (
	"fmt"
	"math"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// C0 in twelve-tone equal temperament with A4 = 440 Hz
var c0 = 440 * math.Pow(2, -4.75)

// NoteName returns the nearest note in scientific pitch notation, e.g. "A4".
// Frequencies that round outside C0..C9 return "--".
func NoteName(freq float64) string {
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return "--"
	}
	n := int(math.Round(12 * math.Log2(freq/c0)))
	if n < 0 || n > 12*9 {
		return "--"
	}
	return fmt.Sprintf("%s%d", noteNames[n%12], n/12)
}
