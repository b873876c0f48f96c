package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RyanBlaney/sonido-aura/capture"
	"github.com/RyanBlaney/sonido-aura/config"
	"github.com/RyanBlaney/sonido-aura/display"
	"github.com/RyanBlaney/sonido-aura/logging"
	"github.com/RyanBlaney/sonido-aura/observe"
	"github.com/RyanBlaney/sonido-aura/sentiment"
	"github.com/RyanBlaney/sonido-aura/transcode"
)

// openSource builds the configured audio source. realtime paces file and
// tone sources to the wall clock; the device is live already.
func openSource(cfg config.AudioConfig, realtime bool) (capture.Source, error) {
	var (
		src capture.Source
		err error
	)
	switch cfg.Source {
	case config.SourceFile:
		src, err = capture.OpenFile(cfg.File, cfg.Framing, transcode.NewDecoder(&cfg.Decoder))
	case config.SourceTone:
		src, err = capture.NewToneSource(cfg.Tone, cfg.Framing)
	default:
		return capture.OpenDevice(cfg.Device, cfg.Framing)
	}
	if err != nil {
		return nil, err
	}
	if realtime {
		src = capture.NewPaced(src)
	}
	return src, nil
}

// setupMetrics installs the Prometheus-backed provider when enabled. The
// returned metrics are nil when disabled; every recorder accepts nil.
func setupMetrics(ctx context.Context, cfg config.MetricsConfig) (*observe.Metrics, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return nil, noop, nil
	}
	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("init metrics provider: %w", err)
	}
	return observe.DefaultMetrics(), shutdown, nil
}

// serveMetrics exposes /metrics until ctx ends
func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logging.Info("Metrics endpoint listening", logging.Fields{"addr": addr})

	select {
	case err := <-errc:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// parseSentiment reads "type" or "type:intensity"
func parseSentiment(s string) (sentiment.Signal, error) {
	typ, rest, hasIntensity := strings.Cut(strings.TrimSpace(s), ":")
	t := sentiment.Type(strings.ToLower(typ))
	if !t.Valid() {
		return sentiment.Signal{}, fmt.Errorf("unknown sentiment %q; valid values: positive, negative, neutral", typ)
	}
	if !hasIntensity {
		// same defaults as a bare string from the backend
		return sentiment.Parse([]byte(strconv.Quote(string(t))))
	}
	v, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return sentiment.Signal{}, fmt.Errorf("sentiment intensity %q: %w", rest, err)
	}
	if v < 0 || v > 1 {
		return sentiment.Signal{}, fmt.Errorf("sentiment intensity %g is out of range [0, 1]", v)
	}
	return sentiment.Signal{Type: t, Intensity: v}, nil
}

// openOutput returns stdout for "-" or "", else creates path
func openOutput(path string) (*display.JSONLines, error) {
	if path == "" || path == "-" {
		return display.NewJSONLines(os.Stdout).NopClose(), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return display.NewJSONLines(f), nil
}

// ignoreCanceled maps a clean shutdown to nil
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
