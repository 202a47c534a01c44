// Package slog adapts the standard library's log/slog package to
// driven.Logger, the way the teacher's command wires slog.Default() as its
// own logging sink.
package slog

import (
	"log/slog"
)

// Logger wraps a *slog.Logger as driven.Logger.
type Logger struct {
	l *slog.Logger
}

// New wraps l, or slog.Default() when l is nil.
func New(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{l: l}
}

func (g *Logger) Debug(msg string, args ...any) { g.l.Debug(msg, args...) }
func (g *Logger) Info(msg string, args ...any)  { g.l.Info(msg, args...) }
func (g *Logger) Warn(msg string, args ...any)  { g.l.Warn(msg, args...) }
func (g *Logger) Error(msg string, args ...any) { g.l.Error(msg, args...) }
