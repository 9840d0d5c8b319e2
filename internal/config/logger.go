package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process logger. LOG_FORMAT=console switches to a
// human-readable writer; LOG_FILE additionally writes rotated JSON to disk.
func NewLogger(cfg Config) (zerolog.Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.LogFormat, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return zerolog.Nop(), err
		}
		maxSize := cfg.LogMaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		rotate := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxSize,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
			LocalTime:  true,
		}
		out = zerolog.MultiLevelWriter(out, rotate)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "ticketgate").Logger(), nil
}
