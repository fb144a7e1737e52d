// Package mlog defines the common logging interface used across every
// component of the sync core.
package mlog

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Logger is the common interface every logging backend in this repo
// implements.
type Logger interface {
	Info(args ...any)
	Infof(format string, args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)

	Debug(args ...any)
	Debugf(format string, args ...any)

	Fatal(args ...any)
	Fatalf(format string, args ...any)

	// WithFields returns a new Logger carrying the given key/value pairs
	// on every subsequent entry. The receiver is left unchanged.
	WithFields(fields ...any) Logger

	Sync() error
}

// Level is the severity of a log entry.
type Level int8

const (
	FatalLevel Level = iota
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

// ParseLevel parses a level name, defaulting to an error on unknown input.
func ParseLevel(lvl string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "fatal":
		return FatalLevel, nil
	case "error":
		return ErrorLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	}

	return 0, fmt.Errorf("not a valid log level: %q", lvl)
}

// ctxKey is the context key used to thread a Logger through a request.
type ctxKey struct{}

// NewContext returns a context carrying the given logger.
func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext extracts the logger stored in ctx, falling back to a bare
// stdlib logger when none was set — the server should never crash because
// a background goroutine forgot to thread a logger through.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
		return l
	}

	return &goLogger{Level: InfoLevel}
}

// goLogger is the stdlib-backed fallback implementation, used only when no
// structured logger has been wired — tests and the context fallback above.
type goLogger struct {
	fields []any
	Level  Level
}

func (l *goLogger) enabled(lvl Level) bool { return l.Level >= lvl }

func (l *goLogger) Info(args ...any)  { l.print(InfoLevel, fmt.Sprint(args...)) }
func (l *goLogger) Error(args ...any) { l.print(ErrorLevel, fmt.Sprint(args...)) }
func (l *goLogger) Warn(args ...any)  { l.print(WarnLevel, fmt.Sprint(args...)) }
func (l *goLogger) Debug(args ...any) { l.print(DebugLevel, fmt.Sprint(args...)) }
func (l *goLogger) Fatal(args ...any) { l.print(FatalLevel, fmt.Sprint(args...)) }

func (l *goLogger) Infof(format string, args ...any)  { l.print(InfoLevel, fmt.Sprintf(format, args...)) }
func (l *goLogger) Errorf(format string, args ...any) { l.print(ErrorLevel, fmt.Sprintf(format, args...)) }
func (l *goLogger) Warnf(format string, args ...any)  { l.print(WarnLevel, fmt.Sprintf(format, args...)) }
func (l *goLogger) Debugf(format string, args ...any) { l.print(DebugLevel, fmt.Sprintf(format, args...)) }
func (l *goLogger) Fatalf(format string, args ...any) { l.print(FatalLevel, fmt.Sprintf(format, args...)) }

func (l *goLogger) print(lvl Level, msg string) {
	if !l.enabled(lvl) {
		return
	}

	if len(l.fields) > 0 {
		log.Print(msg, " ", fmt.Sprint(l.fields...))
		return
	}

	log.Print(msg)
}

func (l *goLogger) WithFields(fields ...any) Logger {
	return &goLogger{Level: l.Level, fields: append(append([]any{}, l.fields...), fields...)}
}

func (l *goLogger) Sync() error { return nil }
