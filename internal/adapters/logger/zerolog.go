package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ZeroLogger implements the ports.Logger interface on top of rs/zerolog.
type ZeroLogger struct {
	log zerolog.Logger
}

// New creates a zerolog-backed logger writing JSON lines to stderr.
// Unknown level strings fall back to info.
func New(level string) *ZeroLogger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter creates a logger writing to the supplied writer.
func NewWithWriter(level string, w io.Writer) *ZeroLogger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return &ZeroLogger{
		log: zerolog.New(w).With().Timestamp().Logger().Level(lvl),
	}
}

func (l *ZeroLogger) emit(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	if len(fields) > 0 && fields[0] != nil {
		event = event.Fields(fields[0])
	}
	event.Msg(msg)
}

// Debug logs a message at Debug level.
func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.log.Debug(), msg, fields)
}

// Info logs a message at Info level.
func (l *ZeroLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.log.Info(), msg, fields)
}

// Warn logs a message at Warning level.
func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.log.Warn(), msg, fields)
}

// Error logs an error message at Error level.
func (l *ZeroLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.emit(l.log.Error().Err(err), msg, fields)
}
