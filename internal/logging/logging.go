// Package logging builds the tint console logger shared by every binary.
package logging

import (
	"context"
	"io"
	log "log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

var levels = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// ParseLevel maps a --log value onto a level. Unknown names give info and false.
func ParseLevel(name string) (log.Level, bool) {
	lvl, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return log.LevelInfo, false
	}
	return lvl, true
}

// New returns a tint logger writing to w at the named level.
func New(level string, w io.Writer) *log.Logger {
	lvl, ok := ParseLevel(level)
	l := log.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.TimeOnly,
	}))
	if !ok {
		l.Warn("Unknown log level, using info", "level", level)
	}
	return l
}

// Setup builds the logger and installs it as the slog default.
func Setup(level string, w io.Writer) *log.Logger {
	l := New(level, w)
	log.SetDefault(l)
	return l
}

type ctxKey struct{}

func With(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From returns the logger carried by ctx, or the default one.
func From(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok && l != nil {
		return l
	}
	return log.Default()
}
