package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger implements Logger on top of zerolog.
type ZeroLogger struct {
	zlog *zerolog.Logger
}

var _ Logger = (*ZeroLogger)(nil)

// New creates a ZeroLogger writing JSON to stdout at the given level.
// If pretty is true, output is formatted for human readability. Unknown
// levels fall back to info.
func New(level string, pretty bool) *ZeroLogger {
	var l zerolog.Logger
	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l}
}

// FromZerolog wraps an existing zerolog.Logger.
func FromZerolog(l zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{zlog: &l}
}

// Debug creates a debug-level log event.
func (l *ZeroLogger) Debug() LogEvent { return &eventAdapter{event: l.zlog.Debug()} }

// Info creates an info-level log event.
func (l *ZeroLogger) Info() LogEvent { return &eventAdapter{event: l.zlog.Info()} }

// Warn creates a warning-level log event.
func (l *ZeroLogger) Warn() LogEvent { return &eventAdapter{event: l.zlog.Warn()} }

// Error creates an error-level log event.
func (l *ZeroLogger) Error() LogEvent { return &eventAdapter{event: l.zlog.Error()} }

// WithFields returns a logger with the fields attached to every event.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	child := ctx.Logger()
	return &ZeroLogger{zlog: &child}
}

// eventAdapter adapts zerolog events to the LogEvent interface.
type eventAdapter struct {
	event *zerolog.Event
}

func (e *eventAdapter) Msg(msg string) { e.event.Msg(msg) }

func (e *eventAdapter) Msgf(format string, args ...any) { e.event.Msgf(format, args...) }

func (e *eventAdapter) Err(err error) LogEvent {
	return &eventAdapter{event: e.event.Err(err)}
}

func (e *eventAdapter) Str(key, value string) LogEvent {
	return &eventAdapter{event: e.event.Str(key, value)}
}

func (e *eventAdapter) Int(key string, value int) LogEvent {
	return &eventAdapter{event: e.event.Int(key, value)}
}

func (e *eventAdapter) Dur(key string, d time.Duration) LogEvent {
	return &eventAdapter{event: e.event.Dur(key, d)}
}

func (e *eventAdapter) Interface(key string, i any) LogEvent {
	return &eventAdapter{event: e.event.Interface(key, i)}
}

// Nop returns a logger that discards everything. Useful as a default.
func Nop() Logger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l}
}
