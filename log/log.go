// Package log provides a logrus-backed Logger for the header-parsing
// engine, with a WithHeader helper for tagging log lines with the name and
// position of the header being processed when a task degrades or recovers.
package log

import (
	"io/ioutil"
	"os"
	"sync"

	logrus "github.com/sirupsen/logrus"
)

// Logger is satisfied by HookedLogger. Callers that only need to log (not
// reopen or change level) can depend on logrus.FieldLogger directly.
type Logger interface {
	logrus.FieldLogger
	WithHeader(name string, offset int) *logrus.Entry
	Reopen() error
	GetLogDest() string
	SetLevel(level string)
	GetLevel() string
	IsDebug() bool
	AddHook(h logrus.Hook)
}

// HookedLogger implements Logger. It wraps a *logrus.Logger whose output is
// routed entirely through a LogrusHook, so Out itself is discarded; when the
// hook cannot be created, Out is os.Stderr and no hook is attached.
type HookedLogger struct {
	*logrus.Logger

	h LoggerHook
}

type loggerCache map[string]Logger

var loggers struct {
	cache loggerCache
	sync.Mutex
}

// GetLogger returns a Logger writing to dest, creating and caching one if
// needed. dest may be "off", "stdout", "stderr", or a file path.
func GetLogger(dest string) (Logger, error) {
	loggers.Lock()
	defer loggers.Unlock()
	if loggers.cache == nil {
		loggers.cache = make(loggerCache, 1)
	} else if l, ok := loggers.cache[dest]; ok {
		return l, nil
	}

	lr := logrus.New()
	lr.Out = ioutil.Discard

	l := &HookedLogger{Logger: lr}
	loggers.cache[dest] = l

	h, err := NewLogrusHook(dest)
	if err != nil {
		lr.Out = os.Stderr
		return l, err
	}
	lr.Hooks.Add(h)
	l.h = h

	return l, nil
}

func (l *HookedLogger) AddHook(h logrus.Hook) {
	l.Logger.AddHook(h)
}

func (l *HookedLogger) IsDebug() bool {
	return l.GetLevel() == logrus.DebugLevel.String()
}

// SetLevel sets the log level by name, ignoring unrecognized values.
func (l *HookedLogger) SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	l.Level = lvl
}

func (l *HookedLogger) GetLevel() string {
	return l.Level.String()
}

// Reopen closes and re-opens the underlying log file, for logrotate(8)-style use.
func (l *HookedLogger) Reopen() error {
	return l.h.Reopen()
}

func (l *HookedLogger) GetLogDest() string {
	return l.h.GetLogDest()
}

// WithHeader tags a log entry with the header currently being processed.
// offset is recorded as given; the engine passes the header's arrival
// order (Header.Order), not a byte offset.
func (l *HookedLogger) WithHeader(name string, offset int) *logrus.Entry {
	return l.WithField("header", name).WithField("offset", offset)
}
