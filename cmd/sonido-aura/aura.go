package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-aura/aura"
	"github.com/RyanBlaney/sonido-aura/config"
	"github.com/RyanBlaney/sonido-aura/logging"
	"github.com/RyanBlaney/sonido-aura/sentiment"
)

func newAuraCmd(root *rootOptions) *cobra.Command {
	var (
		frames uint64
		mood   string
		out    string
	)

	cmd := &cobra.Command{
		Use:     "aura",
		Short:   "Render the particle aura headless as JSON-lines draw commands",
		Example: `  sonido-aura aura --frames 120 --sentiment positive:0.8 > frames.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if cmd.Flags().Changed("frames") || cfg.Aura.MaxFrames == 0 {
				cfg.Aura.MaxFrames = frames
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			var cell sentiment.Cell
			if mood != "" {
				sig, err := parseSentiment(mood)
				if err != nil {
					return err
				}
				cell.Store(sig)
			}

			ctx := cmd.Context()
			metrics, shutdown, err := setupMetrics(ctx, cfg.Metrics)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			sink, err := openOutput(out)
			if err != nil {
				return err
			}
			session, err := aura.NewSession(&cell, sink, cfg.Aura, aura.WithMetrics(metrics))
			if err != nil {
				sink.Close()
				return err
			}
			defer session.Stop()

			logging.Info("Rendering aura", logging.Fields{
				"frames":    cfg.Aura.MaxFrames,
				"sentiment": cell.Load().Type,
				"session":   session.ID(),
			})
			return ignoreCanceled(session.Run(ctx))
		},
	}

	cmd.Flags().Uint64VarP(&frames, "frames", "n", 300, "frames to render, 0 renders until interrupted")
	cmd.Flags().StringVarP(&mood, "sentiment", "s", "", `fixed sentiment as "type" or "type:intensity"`)
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}
