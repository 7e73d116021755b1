// Package monitoring holds the process-wide diagnostic logger hook.
package monitoring

import (
	"log"
	"sync/atomic"
)

type logFunc func(format string, v ...interface{})

var logf atomic.Pointer[logFunc]

var debug atomic.Bool

func init() {
	SetLogger(log.Printf)
}

// Logf writes a diagnostic line through the configured logger. It defaults to
// log.Printf and may be replaced by SetLogger from any goroutine.
func Logf(format string, v ...interface{}) {
	(*logf.Load())(format, v...)
}

// Debugf logs only when debug output is enabled.
func Debugf(format string, v ...interface{}) {
	if debug.Load() {
		Logf(format, v...)
	}
}

// SetLogger replaces the package logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	fn := logFunc(f)
	logf.Store(&fn)
}

// SetDebug toggles Debugf output.
func SetDebug(on bool) {
	debug.Store(on)
}
