package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tessro/segue/internal/config"
	segueerrors "github.com/tessro/segue/internal/errors"
	"github.com/tessro/segue/internal/logging"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg       *config.Config
	log       *logrus.Logger
	logCloser io.Closer
)

// Commands that own the terminal set up logging themselves. Commands that
// inspect a possibly broken config file load it themselves.
const (
	annotationLogging = "logging"
	loggingDeferred   = "deferred"

	annotationConfig = "config"
	configUnchecked  = "unchecked"
)

var rootCmd = &cobra.Command{
	Use:   "segue",
	Short: "Play a track and let recommendations carry on",
	Long: `Segue plays a track through mpv, then keeps going with the most similar
tracks from the recommendation service, tuned by genre, decade and audio
feature weights.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[annotationConfig] == configUnchecked {
			return initLogging(logging.Setup)
		}
		if err := initConfig(); err != nil {
			return err
		}
		if cmd.Annotations[annotationLogging] == loggingDeferred {
			return nil
		}
		return initLogging(logging.Setup)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.seguerc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return segueerrors.WithSuggestion(
			fmt.Errorf("%w: %w", segueerrors.ErrInvalidConfig, err),
			"Run 'segue config validate' to see every problem",
		)
	}

	return nil
}

func initLogging(setup func(config.LogConfig) (*logrus.Logger, io.Closer, error)) error {
	var logCfg config.LogConfig
	if cfg != nil {
		logCfg = cfg.Log
	}
	if verbose {
		logCfg.Level = "debug"
	}

	var err error
	log, logCloser, err = setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, segueerrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
