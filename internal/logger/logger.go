package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON logger on stdout; debug level in dev.
func New(dev bool) *slog.Logger {
	return NewWithWriter(os.Stdout, dev)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, dev bool) *slog.Logger {
	level := slog.LevelInfo
	if dev {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
