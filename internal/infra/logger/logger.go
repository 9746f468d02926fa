// Package logger configures the global zerolog logger for the melodia binaries.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Config represents logger configuration.
type Config struct {
	Level   string // "debug", "info", "warn", "error"
	File    string // JSON log file; empty logs to the console
	Stderr  bool   // Console output goes to stderr instead of stdout
	NoColor bool   // Disable console colors
}

// FromFlags builds the configuration shared by the command line tools.
// CLIs that print results on stdout pass stderr=true to keep logs apart.
func FromFlags(verbose bool, logFile string, stderr bool) Config {
	cfg := Config{Level: "info", File: logFile, Stderr: stderr}
	if verbose {
		cfg.Level = "debug"
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.NoColor = true
	}
	return cfg
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init initializes the global logger. The returned closer releases the log
// file, if any.
func Init(cfg Config) (io.Closer, error) {
	level := parseLevel(cfg.Level)

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.CallerMarshalFunc = shortCaller

	var (
		logger zerolog.Logger
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create log directory")
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open log file")
		}
		logger = zerolog.New(f).With().Timestamp().Logger()
		closer = f
	} else {
		var out io.Writer = os.Stdout
		if cfg.Stderr {
			out = os.Stderr
		}
		console := zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    cfg.NoColor,
			TimeFormat: time.TimeOnly,
		}
		if level == zerolog.DebugLevel {
			console.PartsOrder = []string{"time", "level", "message", "caller"}
			console.FormatCaller = func(i any) string {
				s, _ := i.(string)
				return "(" + s + ")"
			}
		}
		logger = zerolog.New(console).With().Timestamp().Logger()
	}

	// Caller only at debug level
	if level == zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	zerolog.DefaultContextLogger = &logger
	zlog.Logger = logger
	return closer, nil
}

// shortCaller keeps the last directory and the file name.
func shortCaller(_ uintptr, file string, line int) string {
	parts := strings.Split(file, string(filepath.Separator))
	if len(parts) > 1 {
		return filepath.Join(parts[len(parts)-2:]...) + ":" + strconv.Itoa(line)
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// parseLevel parses the log level string.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
