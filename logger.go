package nib

import (
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	SetLogger(nil)
}

// SetLogger installs the logger used by the canvas and the brush library.
// Nib is silent until SetLogger is called with a non-nil logger; passing nil
// restores the silent default. It may be called while other goroutines log.
//
// Levels:
//   - [slog.LevelDebug]: committed strokes with their stamp count
//   - [slog.LevelInfo]: a brush library finished loading
//   - [slog.LevelWarn]: brush files or tips that could not be read
//
// For example:
//
//	nib.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
}

// Logger returns the installed logger. It never returns nil.
func Logger() *slog.Logger {
	return logger.Load()
}
