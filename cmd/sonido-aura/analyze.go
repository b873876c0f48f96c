package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-aura/config"
	"github.com/RyanBlaney/sonido-aura/display"
	"github.com/RyanBlaney/sonido-aura/logging"
	"github.com/RyanBlaney/sonido-aura/prosody"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		file     string
		device   bool
		tone     bool
		asJSON   bool
		every    int
		realtime bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse voice prosody and print a live meter",
		Example: `  sonido-aura analyze --device
  sonido-aura analyze --file speech.wav --json > states.jsonl
  ffmpeg -i talk.mp4 -f wav - | sonido-aura analyze --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			switch {
			case file != "":
				cfg.Audio.Source, cfg.Audio.File = config.SourceFile, file
			case tone:
				cfg.Audio.Source = config.SourceTone
			case device:
				cfg.Audio.Source = config.SourceDevice
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			if cfg.Audio.Source == config.SourceTone && cfg.Audio.Tone.Duration == 0 {
				// an endless tone is only useful live
				realtime = true
			}

			ctx := cmd.Context()
			metrics, shutdown, err := setupMetrics(ctx, cfg.Metrics)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			src, err := openSource(cfg.Audio, realtime)
			if err != nil {
				return err
			}
			session, err := prosody.NewSession(src, cfg.Analysis, prosody.WithMetrics(metrics))
			if err != nil {
				src.Close()
				return err
			}
			defer session.Stop()

			var sink prosody.Sink
			if asJSON {
				out := display.NewJSONLines(os.Stdout).NopClose()
				defer out.Close()
				sink = out
			} else {
				opts := []display.MeterOption{display.WithEvery(every)}
				if cfg.Log.NoColor {
					opts = append(opts, display.WithoutColor())
				}
				sink = display.NewMeter(os.Stdout, opts...)
			}

			logging.Info("Analyzing", logging.Fields{
				"source":  cfg.Audio.Source,
				"session": session.ID(),
			})
			return ignoreCanceled(session.Run(ctx, sink))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "analyse an audio file (WAV natively, other formats via ffmpeg, - for stdin)")
	cmd.Flags().BoolVarP(&device, "device", "d", false, "analyse the default capture device")
	cmd.Flags().BoolVar(&tone, "tone", false, "analyse the synthetic test tone from audio.tone")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON state per line instead of the meter")
	cmd.Flags().IntVar(&every, "every", 1, "print every nth state")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "pace file and tone sources to the wall clock")
	cmd.MarkFlagsMutuallyExclusive("file", "device", "tone")
	return cmd
}
