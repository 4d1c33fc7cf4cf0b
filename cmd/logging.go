package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/beetle/internal/config"
	"github.com/jfmyers9/beetle/internal/history"
	"github.com/jfmyers9/beetle/pkg/beets"
)

// setupLogger creates a zerolog logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}

// debugLogger adapts zerolog to the beets client's Logger interface.
type debugLogger struct {
	logger zerolog.Logger
}

func (l debugLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// loadConfig loads configuration and applies global flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Server.URL = server
	}
	return cfg, nil
}

// newClient creates a beets client from configuration.
func newClient(cfg *config.Config, logger zerolog.Logger) (*beets.Client, error) {
	client, err := beets.NewClient(beets.Config{
		BaseURL:    cfg.Server.URL,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second},
		MaxRetries: cfg.Server.MaxRetries,
		Logger:     debugLogger{logger.With().Str("component", "beets").Logger()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create beets client: %w", err)
	}
	return client, nil
}

// openTracker opens the play history when it is enabled. The returned
// close function is always safe to call.
func openTracker(cfg *config.Config, logger zerolog.Logger) (*history.Tracker, func()) {
	if !cfg.History.Enabled {
		return nil, func() {}
	}
	store, err := history.Open(cfg.History.DB)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.History.DB).Msg("Play history disabled")
		return nil, func() {}
	}
	tracker := history.NewTracker(store, logger)
	return tracker, func() {
		tracker.Close()
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close history database")
		}
	}
}
