// Package logging builds the process zerolog logger.
// The terminal owns stdout, so output goes to a size-rotated file and optionally Graylog.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// MaxFileSize is the size above which an existing log file is rotated on Setup
const MaxFileSize = 10 * 1024 * 1024

type Options struct {
	Enabled bool
	Level   string
	Dir     string
	File    string

	// GraylogAddress enables GELF output when non-empty
	GraylogAddress string
}

// ParseLevel maps a config level name to zerolog, defaulting to info
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "DISABLED", "OFF":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup returns the logger and a closer for its file
// Disabled logging returns zerolog.Nop
func Setup(o Options) (zerolog.Logger, io.Closer, error) {
	if !o.Enabled {
		return zerolog.Nop(), nopCloser{}, nil
	}

	if o.File == "" {
		o.File = "vi-drive.log"
	}
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("creating log dir: %w", err)
	}
	path := filepath.Join(o.Dir, o.File)

	if err := rotate(path, time.Now()); err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("opening log file: %w", err)
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}}
	if o.GraylogAddress != "" {
		gw, err := gelf.NewWriter(o.GraylogAddress)
		if err != nil {
			// File logging still works
			fmt.Fprintf(f, "graylog writer %s: %v\n", o.GraylogAddress, err)
		} else {
			writers = append(writers, gw)
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(o.Level)).
		With().Timestamp().Logger()
	return logger, f, nil
}

// rotate renames path to a timestamped sibling when it exceeds MaxFileSize
func rotate(path string, now time.Time) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() <= MaxFileSize {
		return nil
	}
	ext := filepath.Ext(path)
	rotated := fmt.Sprintf("%s.%s%s", strings.TrimSuffix(path, ext), now.Format("20060102-150405"), ext)
	if err := os.Rename(path, rotated); err != nil {
		return fmt.Errorf("rotating log file: %w", err)
	}
	return nil
}
