// Package logging provides the leveled logger handed to every component.
package logging

import (
	"fmt"
	"io"

	"github.com/juju/loggo"
)

// Root is the name of the parent logger of every component logger.
const Root = "atlas"

// Logger is the logging capability components receive at construction.
// loggo.Logger satisfies it.
type Logger interface {
	Debugf(msg string, args ...any)
	Infof(msg string, args ...any)
	Warningf(msg string, args ...any)
	Errorf(msg string, args ...any)
}

// New returns the named child logger of Root.
func New(module string) loggo.Logger {
	return loggo.GetLogger(Root + "." + module)
}

// Configure replaces the default loggo writer with one that writes
// timestamped lines to w and sets the initial level.
func Configure(w io.Writer, debug bool) error {
	if _, err := loggo.ReplaceDefaultWriter(loggo.NewSimpleWriter(w, format)); err != nil {
		return fmt.Errorf("replacing log writer: %w", err)
	}
	SetDebug(debug)
	return nil
}

// SetDebug switches every component logger between DEBUG and INFO.
func SetDebug(debug bool) {
	level := loggo.INFO
	if debug {
		level = loggo.DEBUG
	}
	loggo.GetLogger(Root).SetLogLevel(level)
}

func format(entry loggo.Entry) string {
	ts := entry.Timestamp.Local().Format("2006-01-02 15:04:05")
	return fmt.Sprintf("[%s] %-7s %s: %s", ts, entry.Level, entry.Module, entry.Message)
}
