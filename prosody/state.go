package prosody

// State is the displayed voice metrics after one analysis tick
type State struct {
	Pitch        float64      `json:"pitch"`         // smoothed Hz, 0 when no voice
	Confidence   float64      `json:"confidence"`    // of the last accepted estimate
	Volume       float64      `json:"volume"`        // smoothed, 0-1
	SpeakingRate float64      `json:"speaking_rate"` // percent of the last 5 s spent speaking
	VoiceEnergy  float64      `json:"voice_energy"`  // smoothed weighted band energy, 0-1
	TonalQuality TonalQuality `json:"tonal_quality"`
	VoiceActive  bool         `json:"voice_active"`
	Note         string       `json:"note"`  // nearest note of Pitch, "--" when none
	Frame        int64        `json:"frame"` // analysis tick, starting at 1
}

// Sink receives the state after every analysis tick
type Sink interface {
	Observe(State)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(State)

// Observe calls f
func (f SinkFunc) Observe(s State) {
	f(s)
}
