// Package logging provides the shared slog sink. muxit's stdout belongs to
// the fuzzy matcher pipeline, so all diagnostics go to a rotating log file.
package logging

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.RWMutex
	current slog.Handler = slog.NewTextHandler(io.Discard, nil)
)

// Setup directs all component loggers at the given log file. Component
// loggers obtained before Setup pick up the new sink as well. Until Setup is
// called, log output is discarded.
func Setup(path string, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 2,
	}

	mu.Lock()
	defer mu.Unlock()
	current = slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
}

// ForComponent returns a logger tagged with the component name.
func ForComponent(name string) *slog.Logger {
	return slog.New(&handler{}).With("component", name)
}

// handler delegates to the current sink so Setup takes effect for loggers
// created at package init time.
type handler struct {
	attrs  []slog.Attr
	groups []string
}

func (h *handler) target() slog.Handler {
	mu.RLock()
	defer mu.RUnlock()

	t := current
	for _, g := range h.groups {
		t = t.WithGroup(g)
	}
	if len(h.attrs) > 0 {
		t = t.WithAttrs(h.attrs)
	}
	return t
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.target().Enabled(ctx, level)
}

func (h *handler) Handle(ctx context.Context, rec slog.Record) error {
	return h.target().Handle(ctx, rec)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{attrs: append(append([]slog.Attr{}, h.attrs...), attrs...), groups: h.groups}
}

func (h *handler) WithGroup(name string) slog.Handler {
	return &handler{attrs: h.attrs, groups: append(append([]string{}, h.groups...), name)}
}
