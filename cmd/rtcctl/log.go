package main

import (
	"io"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
)

func newLogger(level int, w io.Writer) *logrus.Entry {
	logrus.ErrorKey = "$error"
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.Level(level))
	customFormatter := new(prefixed.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	customFormatter.SpacePadding = 50
	logger.SetFormatter(customFormatter)
	return logrus.NewEntry(logger)
}
