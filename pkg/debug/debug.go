// Package debug provides conditional debug logging for mm.
//
// Debug logging is enabled by setting the MM_DEBUG environment variable:
//
//	MM_DEBUG=1 mm --db conversations.db
//
// When enabled, messages go to stderr (or the writer passed to SetOutput) with
// timestamps. When disabled, every function is a no-op.
//
// The TUI owns the terminal, so when running it point the log somewhere else:
//
//	MM_DEBUG=1 MM_DEBUG_FILE=/tmp/mm.log mm
package debug

import (
	"io"
	"log"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("MM_DEBUG") == "" {
		return
	}
	var out io.Writer = os.Stderr
	if path := os.Getenv("MM_DEBUG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			out = f
		}
	}
	enabled = true
	logger = newLogger(out)
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[MM_DEBUG] ", log.Ltime|log.Lmicroseconds)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled turns logging on or off, creating a stderr logger on first use.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects debug output. Passing nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	logger = newLogger(w)
}

func active() (*log.Logger, bool) {
	mu.Lock()
	defer mu.Unlock()
	return logger, enabled && logger != nil
}

// Log writes a printf-style debug message.
func Log(format string, args ...any) {
	if l, ok := active(); ok {
		l.Printf(format, args...)
	}
}

// LogTiming writes how long an operation took.
func LogTiming(name string, d time.Duration) {
	if l, ok := active(); ok {
		l.Printf("%s took %v", name, d)
	}
}

// LogIf writes a debug message only if cond is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs entry and returns a func logging exit with timing:
//
//	defer debug.LogEnterExit("layout.Run")()
func LogEnterExit(name string) func() {
	l, ok := active()
	if !ok {
		return func() {}
	}
	l.Printf("-> %s", name)
	start := time.Now()
	return func() {
		l.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type.
func Dump(name string, v any) {
	if l, ok := active(); ok {
		l.Printf("%s: %T = %+v", name, v, v)
	}
}
