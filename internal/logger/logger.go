// Package logger builds the structured loggers used across tama.
//
// Every component accepts a *log.Logger through an option and falls back to
// Discard() so that library use stays silent unless a caller opts in.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Level names accepted by Parse and the --log-level flag.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Config controls logger construction.
type Config struct {
	Level      string
	Output     io.Writer
	JSON       bool
	TimeFormat string
}

// DefaultConfig returns an info-level text logger writing to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Output:     os.Stderr,
		TimeFormat: "15:04:05",
	}
}

// Parse converts a level name into a log level.
func Parse(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LevelDebug:
		return log.DebugLevel, nil
	case LevelInfo, "":
		return log.InfoLevel, nil
	case LevelWarn, "warning":
		return log.WarnLevel, nil
	case LevelError:
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// New creates a logger from cfg. An unknown level falls back to info.
func New(cfg Config) *log.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	level, _ := Parse(cfg.Level)

	l := log.NewWithOptions(cfg.Output, log.Options{
		ReportTimestamp: cfg.TimeFormat != "",
		TimeFormat:      cfg.TimeFormat,
		Level:           level,
		Prefix:          "tama",
	})
	if cfg.JSON {
		l.SetFormatter(log.JSONFormatter)
	} else {
		l.SetFormatter(log.TextFormatter)
		l.SetStyles(defaultStyles())
	}
	return l
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Component returns a child logger tagged with the component name.
func Component(l *log.Logger, name string) *log.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With("component", name)
}

func defaultStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("204"))
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(lipgloss.Color("192"))
	styles.Keys["task"] = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	styles.Keys["plugin"] = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	return styles
}
