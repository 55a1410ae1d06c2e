//go:build windows || plan9

package main

import (
	"errors"

	"github.com/sirupsen/logrus"
)

func newSyslogHook(string) (logrus.Hook, error) {
	return nil, errors.New("syslog is not supported on this platform")
}
