// Package logging builds the process-wide zerolog logger: pretty console
// output plus a size-rotated file sink.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing to stderr and, when path is non-empty,
// to a rotated log file.
func New(path string, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}

	var w io.Writer = console
	if path != "" {
		file := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    20, // MB
			MaxBackups: 3,
			MaxAge:     30, // days
			Compress:   true,
		}
		w = zerolog.MultiLevelWriter(console, file)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
