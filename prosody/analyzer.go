package prosody

import (
	"time"

	"github.com/RyanBlaney/sonido-aura/algorithms/common"
	"github.com/RyanBlaney/sonido-aura/algorithms/spectral"
	"github.com/RyanBlaney/sonido-aura/algorithms/temporal"
	"github.com/RyanBlaney/sonido-aura/algorithms/tonal"
	"github.com/RyanBlaney/sonido-aura/capture"
)

// AnalyzerConfig holds the analysis parameters. Zero values fall back to
// DefaultAnalyzerConfig.
type AnalyzerConfig struct {
	Pitch tonal.PitchDetectionParams `json:"pitch" yaml:"pitch"`
	Tonal TonalThresholds            `json:"tonal" yaml:"tonal"`
	Bands []spectral.Band            `json:"bands" yaml:"bands"`

	MinZCR          float64 `json:"min_zcr" yaml:"min_zcr"`
	MaxZCR          float64 `json:"max_zcr" yaml:"max_zcr"`
	EnergyThreshold float64 `json:"energy_threshold" yaml:"energy_threshold"`

	HistorySize    int           `json:"history_size" yaml:"history_size"`
	SilenceFrames  int           `json:"silence_frames" yaml:"silence_frames"` // pitch clears after more than this many
	ActivityWindow time.Duration `json:"activity_window" yaml:"activity_window"`

	HistoryEvery    int `json:"history_every" yaml:"history_every"`       // ticks between history samples
	RateEvery       int `json:"rate_every" yaml:"rate_every"`             // ticks between speaking-rate updates
	ClassifyEvery   int `json:"classify_every" yaml:"classify_every"`     // ticks between tonal reclassification
	ClassifyMinimum int `json:"classify_minimum" yaml:"classify_minimum"` // pitch history needed, exclusive
}

// DefaultAnalyzerConfig returns the stock analysis parameters
func DefaultAnalyzerConfig() AnalyzerConfig {
	vad := temporal.NewVoiceActivityDetector()
	return AnalyzerConfig{
		Pitch:           tonal.DefaultPitchDetectionParams(),
		Tonal:           DefaultTonalThresholds(),
		Bands:           spectral.DefaultVoiceBands(),
		MinZCR:          vad.MinZCR,
		MaxZCR:          vad.MaxZCR,
		EnergyThreshold: vad.EnergyThreshold,
		HistorySize:     100,
		SilenceFrames:   30,
		ActivityWindow:  DefaultActivityWindow,
		HistoryEvery:    3,
		RateEvery:       5,
		ClassifyEvery:   10,
		ClassifyMinimum: 20,
	}
}

func (c AnalyzerConfig) withDefaults() AnalyzerConfig {
	d := DefaultAnalyzerConfig()
	if c.Tonal.Window <= 0 {
		c.Tonal = d.Tonal
	}
	if len(c.Bands) == 0 {
		c.Bands = d.Bands
	}
	if c.MaxZCR <= 0 {
		c.MinZCR, c.MaxZCR = d.MinZCR, d.MaxZCR
	}
	if c.EnergyThreshold <= 0 {
		c.EnergyThreshold = d.EnergyThreshold
	}
	if c.HistorySize <= 0 {
		c.HistorySize = d.HistorySize
	}
	if c.SilenceFrames <= 0 {
		c.SilenceFrames = d.SilenceFrames
	}
	if c.ActivityWindow <= 0 {
		c.ActivityWindow = d.ActivityWindow
	}
	if c.HistoryEvery <= 0 {
		c.HistoryEvery = d.HistoryEvery
	}
	if c.RateEvery <= 0 {
		c.RateEvery = d.RateEvery
	}
	if c.ClassifyEvery <= 0 {
		c.ClassifyEvery = d.ClassifyEvery
	}
	if c.ClassifyMinimum <= 0 {
		c.ClassifyMinimum = d.ClassifyMinimum
	}
	return c
}

// Analyzer turns frames into State. It owns all history and is not safe for
// concurrent use.
type Analyzer struct {
	cfg        AnalyzerConfig
	detector   *tonal.PitchDetector
	vad        *temporal.VoiceActivityDetector
	classifier *Classifier

	// band bin ranges depend on the stream, built on first use
	bands      *spectral.BandEnergy
	bandsKey   [2]int
	activity   *ActivityWindow
	pitchHist  *common.Ring[float64]
	volumeHist *common.Ring[float64]

	pitch  *common.ExpSmoother
	volume *common.ExpSmoother
	energy *common.ExpSmoother
	rate   *common.ExpSmoother

	tick         int64
	silentFrames int
	state        State
	// last smoothed pitch, kept through silence for classification
	lastPitch float64

	lastAccepted bool
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	cfg = cfg.withDefaults()

	vad := temporal.NewVoiceActivityDetector()
	vad.MinZCR = cfg.MinZCR
	vad.MaxZCR = cfg.MaxZCR
	vad.EnergyThreshold = cfg.EnergyThreshold

	a := &Analyzer{
		cfg:        cfg,
		detector:   tonal.NewPitchDetector(cfg.Pitch),
		vad:        vad,
		classifier: NewClassifier(cfg.Tonal),
		activity:   NewActivityWindow(cfg.ActivityWindow),
		pitchHist:  common.NewRing[float64](cfg.HistorySize),
		volumeHist: common.NewRing[float64](cfg.HistorySize),
		pitch:      common.NewSeededExpSmoother(common.PitchSmoothing),
		volume:     common.NewExpSmoother(common.VolumeSmoothing),
		energy:     common.NewExpSmoother(common.EnergySmoothing),
		rate:       common.NewExpSmoother(common.RateSmoothing),
	}
	a.state.Note = tonal.NoteName(0)
	return a
}

// Process runs one analysis tick
func (a *Analyzer) Process(frame capture.AudioFrame) State {
	a.tick++
	a.lastAccepted = false
	samples := frame.Samples

	volume := a.volume.Update(temporal.Volume(samples))
	if a.every(a.cfg.HistoryEvery) {
		a.volumeHist.Push(volume)
	}

	active := a.vad.IsActive(samples, volume)
	if active {
		a.silentFrames = 0
		est := a.detector.Detect(samples, frame.SampleRate)
		if a.detector.Accept(est) {
			a.lastAccepted = true
			a.state.Pitch = a.pitch.Update(est.Frequency)
			a.lastPitch = a.state.Pitch
			a.state.Confidence = est.Confidence
			if a.every(a.cfg.HistoryEvery) {
				a.pitchHist.Push(a.state.Pitch)
			}
		}
	} else {
		a.silentFrames++
		if a.silentFrames > a.cfg.SilenceFrames {
			a.state.Pitch = 0
			a.state.Confidence = 0
			a.pitch.Reset()
		}
	}

	energy := a.energy.Update(a.bandEnergy(frame).Combined)

	if a.every(a.cfg.RateEvery) {
		a.state.SpeakingRate = a.rate.Update(a.activity.Add(frame.Offset, active))
	}

	if a.every(a.cfg.ClassifyEvery) && a.pitchHist.Len() > a.cfg.ClassifyMinimum {
		a.state.TonalQuality = a.classifier.Classify(
			a.lastPitch, volume, energy,
			a.pitchHist.Values(), a.volumeHist.Values(),
		)
	}

	a.state.Volume = volume
	a.state.VoiceEnergy = energy
	a.state.VoiceActive = active
	a.state.Note = tonal.NoteName(a.state.Pitch)
	a.state.Frame = a.tick
	return a.state
}

// State returns the state after the last tick
func (a *Analyzer) State() State {
	return a.state
}

// PitchAccepted reports whether the last tick produced an accepted pitch
func (a *Analyzer) PitchAccepted() bool {
	return a.lastAccepted
}

// PitchHistory returns the pitch history, oldest first
func (a *Analyzer) PitchHistory() []float64 {
	return a.pitchHist.Values()
}

// VolumeHistory returns the volume history, oldest first
func (a *Analyzer) VolumeHistory() []float64 {
	return a.volumeHist.Values()
}

// Reset clears all history and smoothing
func (a *Analyzer) Reset() {
	a.pitchHist.Clear()
	a.volumeHist.Clear()
	a.activity.Reset()
	a.pitch.Reset()
	a.volume.Reset()
	a.energy.Reset()
	a.rate.Reset()
	a.tick = 0
	a.silentFrames = 0
	a.lastAccepted = false
	a.lastPitch = 0
	a.state = State{Note: tonal.NoteName(0)}
}

func (a *Analyzer) every(n int) bool {
	return a.tick%int64(n) == 0
}

func (a *Analyzer) bandEnergy(frame capture.AudioFrame) spectral.BandLevels {
	bins := len(frame.Magnitudes)
	if bins == 0 || frame.SampleRate <= 0 {
		return spectral.BandLevels{}
	}
	key := [2]int{frame.SampleRate, bins}
	if a.bands == nil || a.bandsKey != key {
		a.bands = spectral.NewBandEnergy(frame.SampleRate, bins*2, a.cfg.Bands)
		a.bandsKey = key
	}
	return a.bands.Compute(frame.Magnitudes)
}
