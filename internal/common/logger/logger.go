// internal/common/logger/logger.go
// Global zerolog setup with optional rotating log files

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level         string // debug, info, warn, error
	Format        string // json, pretty
	FileEnabled   bool
	FilePath      string // logs directory
	RotationSize  int    // MB
	RetentionDays int
	ServiceName   string
}

// Init replaces the global zerolog logger
func Init(cfg Config) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var writers []io.Writer
	if cfg.Format == "pretty" {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	} else {
		writers = append(writers, os.Stderr)
	}

	if cfg.FileEnabled {
		if err := os.MkdirAll(cfg.FilePath, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, rotatingFile(cfg, "app.log"))
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Logger()

	log.Info().
		Str("level", level.String()).
		Str("format", cfg.Format).
		Bool("file_enabled", cfg.FileEnabled).
		Msg("Logger initialized")

	return nil
}

// NewAuditLogger returns a logger that writes moderation actions to their
// own file, falling back to the global logger when file logging is off.
func NewAuditLogger(cfg Config) zerolog.Logger {
	if !cfg.FileEnabled {
		return log.Logger.With().Str("type", "audit").Logger()
	}

	if err := os.MkdirAll(cfg.FilePath, 0755); err != nil {
		log.Warn().Err(err).Msg("Failed to create audit log directory, using default logger")
		return log.Logger.With().Str("type", "audit").Logger()
	}

	return zerolog.New(rotatingFile(cfg, "audit.log")).With().
		Timestamp().
		Str("type", "audit").
		Logger()
}

func rotatingFile(cfg Config, name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.FilePath, name),
		MaxSize:    cfg.RotationSize,
		MaxAge:     cfg.RetentionDays,
		MaxBackups: 10,
		Compress:   true,
	}
}
