// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/tessro/segue/internal/config"
)

// Setup builds a logger from cfg. If cfg.File is set, output goes there and
// the returned closer must be closed on exit.
func Setup(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	return setup(cfg, os.Stderr)
}

// SetupForTUI is like Setup but never writes to the terminal. Without a
// configured file, logs go to segue.log in the user cache directory.
func SetupForTUI(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	if cfg.File == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.File = filepath.Join(dir, "segue", "segue.log")
	}
	return setup(cfg, io.Discard)
}

func setup(cfg config.LogConfig, fallback io.Writer) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level := logrus.InfoLevel
	if cfg.Level != "" {
		l, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if cfg.File == "" {
		logger.SetOutput(fallback)
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
