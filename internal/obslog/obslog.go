// Package obslog provides the structured tracing used across gnsscore.
//
// It replaces the teacher codebase's hand-rolled Trace()/Tracet() file
// tracer with a logrus logger, keeping the same verbosity-by-level idea
// (0=off, higher=more detail) but expressed through a real logging library.
package obslog

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu  sync.RWMutex
	log = newDefault()
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// SetLevel maps the teacher's 0-5 trace level onto logrus levels.
// 0 disables tracing entirely; 1-2 map to warn/info; 3+ map to debug/trace.
func SetLevel(level int) {
	mu.Lock()
	defer mu.Unlock()
	switch {
	case level <= 0:
		log.SetLevel(logrus.ErrorLevel)
	case level == 1:
		log.SetLevel(logrus.WarnLevel)
	case level == 2:
		log.SetLevel(logrus.InfoLevel)
	case level == 3:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.TraceLevel)
	}
}

// SetOutput redirects the logger, mainly for tests.
func SetOutput(w interface{ Write([]byte) (int, error) }) {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(w)
}

func entry() *logrus.Entry {
	mu.RLock()
	defer mu.RUnlock()
	return logrus.NewEntry(log)
}

// Debugf logs at debug level, mirroring Trace(4|5, ...) call sites in the
// teacher (Kepler iteration detail, per-satellite state dumps).
func Debugf(format string, args ...interface{}) {
	entry().Debugf(format, args...)
}

// Infof logs at info level, mirroring Trace(3, ...) call sites.
func Infof(format string, args ...interface{}) {
	entry().Infof(format, args...)
}

// Warnf logs at warn level, mirroring Trace(2, ...) call sites (recoverable
// anomalies; its one caller is gtime's leap-table extrapolation warning).
func Warnf(format string, args ...interface{}) {
	entry().Warnf(format, args...)
}
