// Command sonido-aura analyses voice prosody from a microphone or file and
// renders a sentiment-driven particle aura as draw commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-aura/config"
	"github.com/RyanBlaney/sonido-aura/logging"
)

var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sonido-aura: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "sonido-aura",
		Short:         "Voice prosody analysis and sentiment aura rendering",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "override log.format (console, json)")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newAuraCmd(opts),
		newRunCmd(opts),
	)
	return root
}

// load reads the configuration and installs the global logger
func (o *rootOptions) load() error {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("config file %q not found", o.configPath)
			}
			return err
		}
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	o.cfg = cfg
	logging.SetGlobalLogger(newLogger(cfg.Log))
	return nil
}

// newLogger writes every level to stderr so stdout stays free for meters
// and JSON lines.
func newLogger(cfg config.LogConfig) logging.Logger {
	var logger *logging.DefaultLogger
	if cfg.Format == "json" {
		logger = logging.NewJSONLogger(os.Stderr)
	} else {
		w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05", NoColor: cfg.NoColor}
		logger = logging.NewLogger(w, w)
	}
	logger.SetLevel(logging.ParseLevel(cfg.Level))
	return logger
}
