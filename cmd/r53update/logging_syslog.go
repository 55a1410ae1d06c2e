//go:build !windows && !plan9

package main

import (
	"fmt"
	"log/syslog"

	"github.com/sirupsen/logrus"
	lSyslog "github.com/sirupsen/logrus/hooks/syslog"
)

func newSyslogHook(tag string) (logrus.Hook, error) {
	hook, err := lSyslog.NewSyslogHook("", "", syslog.LOG_INFO|syslog.LOG_USER, tag)
	if err != nil {
		return nil, fmt.Errorf("error connecting to syslog: %w", err)
	}
	return hook, nil
}
