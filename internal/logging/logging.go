// Package logging builds the process-wide logrus logger from configuration.
package logging

import (
	"io"
	"os"

	"ecommerce-platform/internal/config"

	"github.com/sirupsen/logrus"
)

// New creates a logger writing to stdout. Production uses JSON output; development
// uses the text formatter unless LOG_FORMAT overrides it.
func New(cfg *config.Config) *logrus.Logger {
	return NewWithOutput(cfg, os.Stdout)
}

// NewWithOutput is New with an explicit writer.
func NewWithOutput(cfg *config.Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.Log.Level, level.String())
	}
	logger.SetLevel(level)

	format := cfg.Log.Format
	if format == "" {
		format = "json"
		if cfg.IsDevelopment() {
			format = "text"
		}
	}
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
