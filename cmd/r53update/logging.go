package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const progName = "r53update"

// newLogger builds the run's logger. Records go to stderr and, with syslog
// enabled, to the local syslog daemon as well.
func newLogger(stderr io.Writer, debug, syslog bool) (*logrus.Entry, error) {
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 PM 03:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	if syslog {
		hook, err := newSyslogHook(progName)
		if err != nil {
			return nil, err
		}
		logger.AddHook(hook)
	}
	return logger.WithFields(logrus.Fields{
		"prog": progName,
		"pid":  os.Getpid(),
	}), nil
}
