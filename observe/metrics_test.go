package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns Metrics backed by a ManualReader
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumByAttr returns the counter value of the data point carrying key=value,
// or the total when key is empty.
func sumByAttr(t *testing.T, rm metricdata.ResourceMetrics, name, key, value string) int64 {
	t.Helper()
	met := findMetric(rm, name)
	if met == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not an int64 sum", name)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if key == "" {
			total += dp.Value
			continue
		}
		for _, kv := range dp.Attributes.ToSlice() {
			if string(kv.Key) == key && kv.Value.AsString() == value {
				total += dp.Value
			}
		}
	}
	return total
}

func TestRecordAnalysis(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAnalysis(ctx, true, true, 2*time.Millisecond)
	m.RecordAnalysis(ctx, true, false, time.Millisecond)
	m.RecordAnalysis(ctx, false, false, time.Millisecond)

	rm := collect(t, reader)
	if got := sumByAttr(t, rm, "sonido.analysis.frames", "voice", "active"); got != 2 {
		t.Errorf("active frames = %d, want 2", got)
	}
	if got := sumByAttr(t, rm, "sonido.analysis.frames", "voice", "silent"); got != 1 {
		t.Errorf("silent frames = %d, want 1", got)
	}
	if got := sumByAttr(t, rm, "sonido.analysis.pitch_accepted", "", ""); got != 1 {
		t.Errorf("pitch accepted = %d, want 1", got)
	}

	met := findMetric(rm, "sonido.analysis.duration")
	if met == nil {
		t.Fatal("duration histogram not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) == 0 {
		t.Fatal("duration is not a populated histogram")
	}
	if got := hist.DataPoints[0].Count; got != 3 {
		t.Errorf("histogram count = %d, want 3", got)
	}
}

func TestRecordRenderAndSentiment(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRender(ctx, "positive", time.Millisecond)
	m.RecordRender(ctx, "positive", time.Millisecond)
	m.RecordSentiment(ctx, "negative")

	rm := collect(t, reader)
	if got := sumByAttr(t, rm, "sonido.aura.frames", "sentiment", "positive"); got != 2 {
		t.Errorf("rendered frames = %d, want 2", got)
	}
	if got := sumByAttr(t, rm, "sonido.sentiment.updates", "sentiment", "negative"); got != 1 {
		t.Errorf("sentiment updates = %d, want 1", got)
	}
}

func TestSessionStarted_StopsOnce(t *testing.T) {
	m, reader := newTestMetrics(t)

	stop := m.SessionStarted(context.Background(), "display")
	if got := sumByAttr(t, collect(t, reader), "sonido.active_sessions", "loop", "display"); got != 1 {
		t.Fatalf("active sessions = %d, want 1", got)
	}
	stop()
	stop()
	if got := sumByAttr(t, collect(t, reader), "sonido.active_sessions", "loop", "display"); got != 0 {
		t.Errorf("active sessions after stop = %d, want 0", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordAnalysis(ctx, true, true, time.Millisecond)
	m.RecordRender(ctx, "neutral", time.Millisecond)
	m.RecordSentiment(ctx, "neutral")
	m.SessionStarted(ctx, "analyzer")()
}
