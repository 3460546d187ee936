// Package log wraps log/slog with a component-scoped logger shared by the
// HTTP layer and the workers.
package log

import (
	"log/slog"
	"os"
)

// Logger stamps every record with the component that emitted it. The
// component attribute is attached once at construction, so the promoted
// slog methods (Info, WarnContext, ...) carry it without further work.
type Logger struct {
	*slog.Logger
	component string
}

// New returns a component logger writing text records to stdout at Info
// level.
func New(component string) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return NewWithHandler(handler, component)
}

// NewWithHandler returns a component logger over the given handler.
func NewWithHandler(handler slog.Handler, component string) *Logger {
	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, component),
		component: component,
	}
}

// With returns a logger carrying additional attributes on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// Component reports which component this logger is scoped to.
func (l *Logger) Component() string {
	return l.component
}
