package main

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	log := newLogger(int(logrus.InfoLevel), &buf)

	log.Debug("hidden")
	log.WithField("chip", "rx8900").Warn("bus error")
	c.Assert(buf.String(), qt.Matches, `time="\d{4}-\d\d-\d\d \d\d:\d\d:\d\d" level=warning msg="bus error" chip=rx8900\n`)
}
