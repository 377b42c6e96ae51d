// Package logger holds the process-wide structured logger. Progress and
// subprocess output are written here (stderr); command results go to the
// command's stdout.
package logger

import (
	"bytes"
	"io"
	"os"
	"sync"
	"sync/atomic"

	charm "github.com/charmbracelet/log"
)

var defaultLogger atomic.Pointer[charm.Logger]

func init() {
	defaultLogger.Store(New(os.Stderr, charm.InfoLevel))
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level charm.Level) *charm.Logger {
	return charm.NewWithOptions(w, charm.Options{
		Level:           level,
		ReportTimestamp: false,
	})
}

// Default returns the global logger.
func Default() *charm.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the global logger. Nil is ignored.
func SetDefault(l *charm.Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// SetLevel parses level ("debug", "info", "warn", "error") and applies it
// to the global logger.
func SetLevel(level string) error {
	lvl, err := charm.ParseLevel(level)
	if err != nil {
		return err
	}
	Default().SetLevel(lvl)
	return nil
}

// Scoped returns a child of the global logger with the given prefix,
// e.g. "com" or "com->@qg-com/button".
func Scoped(scope string) *charm.Logger {
	return Default().WithPrefix(scope)
}

// Writer returns an io.Writer that logs each complete line written to it
// at info level on l. Used to stream npm and git output.
func Writer(l *charm.Logger) io.Writer {
	return &lineWriter{log: l}
}

type lineWriter struct {
	mu  sync.Mutex
	log *charm.Logger
	buf bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Partial line: keep it for the next write.
			w.buf.Reset()
			w.buf.Write(line)
			break
		}
		if text := bytes.TrimRight(line, "\r\n"); len(text) > 0 {
			w.log.Info(string(text))
		}
	}
	return len(p), nil
}
