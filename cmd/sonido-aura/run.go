package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-aura/aura"
	"github.com/RyanBlaney/sonido-aura/display"
	"github.com/RyanBlaney/sonido-aura/logging"
	"github.com/RyanBlaney/sonido-aura/prosody"
	"github.com/RyanBlaney/sonido-aura/sentiment"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		out     string
		feedURL string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run analysis, the aura and the sentiment feed together",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if feedURL != "" {
				cfg.Feed.URL = feedURL
			}
			cfg.Aura.MaxFrames = 0

			ctx := cmd.Context()
			metrics, shutdown, err := setupMetrics(ctx, cfg.Metrics)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			src, err := openSource(cfg.Audio, true)
			if err != nil {
				return err
			}
			analyzer, err := prosody.NewSession(src, cfg.Analysis, prosody.WithMetrics(metrics))
			if err != nil {
				src.Close()
				return err
			}
			defer analyzer.Stop()

			var frameSink aura.FrameSink = aura.FrameSinkFunc(func(aura.Frame) error { return nil })
			if out != "" {
				jsonl, err := openOutput(out)
				if err != nil {
					return err
				}
				frameSink = jsonl
			}

			var cell sentiment.Cell
			visual, err := aura.NewSession(&cell, frameSink, cfg.Aura, aura.WithMetrics(metrics))
			if err != nil {
				if c, ok := frameSink.(io.Closer); ok {
					c.Close()
				}
				return err
			}
			defer visual.Stop()

			meter := display.NewMeter(os.Stdout, display.WithInline())

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return ignoreCanceled(analyzer.Run(gctx, meter))
			})
			g.Go(func() error {
				return ignoreCanceled(visual.Run(gctx))
			})
			if cfg.Feed.URL != "" {
				feed := sentiment.NewFeed(cfg.Feed.URL, &cell, sentiment.WithFeedMetrics(metrics))
				g.Go(func() error {
					// a lost feed leaves the aura on its last sentiment
					if err := ignoreCanceled(feed.Run(gctx)); err != nil {
						logging.Warn("Sentiment feed ended", logging.Fields{"error": err.Error()})
					}
					return nil
				})
			}
			if cfg.Metrics.Enabled {
				g.Go(func() error {
					return serveMetrics(gctx, cfg.Metrics.Addr)
				})
			}

			logging.Info("Running", logging.Fields{
				"source":  cfg.Audio.Source,
				"feed":    cfg.Feed.URL,
				"metrics": cfg.Metrics.Enabled,
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write aura frames as JSON lines to this file, - for stdout")
	cmd.Flags().StringVar(&feedURL, "feed", "", "sentiment WebSocket URL, overrides feed.url")
	return cmd
}
