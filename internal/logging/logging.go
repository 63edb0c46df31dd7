// Package logging sets up the structured logger shared by the server and the CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger. An empty level means debug in development and info
// elsewhere; an unknown level falls back to info with a warning. Development gets
// human-readable text unless format is "json"; every other environment logs JSON.
func New(level, format string, development bool) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, format, development)
}

// NewWithOutput is New writing to w.
func NewWithOutput(w io.Writer, level, format string, development bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	if level == "" {
		level = "info"
		if development {
			level = "debug"
		}
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", level).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if !development || strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return log
}
