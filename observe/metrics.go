// Package observe provides the OpenTelemetry metrics recorded by the analysis
// and display loops.
//
// Metrics are recorded through the OpenTelemetry Metrics API. [InitProvider]
// installs a Prometheus exporter bridge so they can be scraped from /metrics.
// Tests should use [NewMetrics] with their own [metric.MeterProvider].
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all sonido-aura metrics
const meterName = "github.com/RyanBlaney/sonido-aura"

// Metrics holds the metric instruments. A nil *Metrics is valid and records
// nothing, so components can take one optionally.
type Metrics struct {
	// FramesAnalysed counts analysis ticks. Attribute: voice=active|silent
	FramesAnalysed metric.Int64Counter

	// PitchAccepted counts ticks whose pitch estimate passed the voice-range gate
	PitchAccepted metric.Int64Counter

	// AnalysisDuration is the time spent in one analysis tick
	AnalysisDuration metric.Float64Histogram

	// FramesRendered counts display ticks. Attribute: sentiment=<type>
	FramesRendered metric.Int64Counter

	// RenderDuration is the time spent stepping and rendering one display tick
	RenderDuration metric.Float64Histogram

	// SentimentUpdates counts signals stored from the feed. Attribute: sentiment=<type>
	SentimentUpdates metric.Int64Counter

	// ActiveSessions tracks running loops. Attribute: loop=analyzer|display
	ActiveSessions metric.Int64UpDownCounter
}

// tickBuckets are histogram boundaries in seconds for per-frame work. A
// display tick at 60 Hz has about 16ms to spare.
var tickBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.025, 0.05,
}

// NewMetrics creates all instruments on mp
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.FramesAnalysed, err = m.Int64Counter("sonido.analysis.frames",
		metric.WithDescription("Analysis ticks by voice activity."),
	); err != nil {
		return nil, err
	}
	if met.PitchAccepted, err = m.Int64Counter("sonido.analysis.pitch_accepted",
		metric.WithDescription("Analysis ticks with an accepted pitch estimate."),
	); err != nil {
		return nil, err
	}
	if met.AnalysisDuration, err = m.Float64Histogram("sonido.analysis.duration",
		metric.WithDescription("Time spent analysing one frame."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(tickBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FramesRendered, err = m.Int64Counter("sonido.aura.frames",
		metric.WithDescription("Display ticks by sentiment type."),
	); err != nil {
		return nil, err
	}
	if met.RenderDuration, err = m.Float64Histogram("sonido.aura.duration",
		metric.WithDescription("Time spent stepping and rendering one display tick."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(tickBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SentimentUpdates, err = m.Int64Counter("sonido.sentiment.updates",
		metric.WithDescription("Sentiment signals received from the feed."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("sonido.active_sessions",
		metric.WithDescription("Running analyzer and display loops."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level instance built on the global
// provider. Call it after InitProvider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordAnalysis records one analysis tick
func (m *Metrics) RecordAnalysis(ctx context.Context, active, pitchAccepted bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	voice := "silent"
	if active {
		voice = "active"
	}
	m.FramesAnalysed.Add(ctx, 1, metric.WithAttributes(attribute.String("voice", voice)))
	if pitchAccepted {
		m.PitchAccepted.Add(ctx, 1)
	}
	m.AnalysisDuration.Record(ctx, elapsed.Seconds())
}

// RecordRender records one display tick
func (m *Metrics) RecordRender(ctx context.Context, sentiment string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FramesRendered.Add(ctx, 1, metric.WithAttributes(attribute.String("sentiment", sentiment)))
	m.RenderDuration.Record(ctx, elapsed.Seconds())
}

// RecordSentiment records a signal arriving from the feed
func (m *Metrics) RecordSentiment(ctx context.Context, sentiment string) {
	if m == nil {
		return
	}
	m.SentimentUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("sentiment", sentiment)))
}

// SessionStarted marks a loop as running and returns the matching stop call
func (m *Metrics) SessionStarted(ctx context.Context, loop string) func() {
	if m == nil {
		return func() {}
	}
	attrs := metric.WithAttributes(attribute.String("loop", loop))
	m.ActiveSessions.Add(ctx, 1, attrs)
	var once sync.Once
	return func() {
		once.Do(func() { m.ActiveSessions.Add(context.Background(), -1, attrs) })
	}
}
