package logging

import (
	"testing"
	"time"

	"github.com/juju/loggo"
	"github.com/stretchr/testify/assert"
)

func TestSetDebug(t *testing.T) {
	root := loggo.GetLogger(Root)
	prev := root.LogLevel()
	t.Cleanup(func() { root.SetLogLevel(prev) })

	SetDebug(true)
	assert.True(t, New("worker").IsDebugEnabled())

	SetDebug(false)
	assert.False(t, New("worker").IsDebugEnabled())
	assert.True(t, New("worker").IsInfoEnabled())
}

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 5, 1, 13, 4, 5, 0, time.Local)
	line := format(loggo.Entry{
		Level:     loggo.WARNING,
		Module:    "atlas.retention",
		Timestamp: ts,
		Message:   "could not delete x",
	})
	assert.Equal(t, "[2024-05-01 13:04:05] WARNING atlas.retention: could not delete x", line)
}

var _ Logger = loggo.Logger{}
