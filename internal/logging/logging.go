// Package logging builds the application logger.
//
// Engine packages never import logrus directly; they accept the small Logger
// interface below, which *logrus.Logger and *logrus.Entry both satisfy.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface the engine packages depend on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// New returns a logger writing to out.
//
// PARAMETERS:
//   - level: "debug", "info", "warn" or "error". Empty means "info".
//   - format: "text" or "json". Empty means "text".
//   - out: The destination, normally os.Stderr.
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q (want \"text\" or \"json\")", format)
	}

	return logger, nil
}

// Discard returns a logger that drops everything. Used by tests and by
// callers that pass no logger.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// LogError records an error with the component and operation it came from.
func LogError(logger *logrus.Logger, component, operation string, fields logrus.Fields, err error) {
	entry := logger.WithFields(logrus.Fields{
		"component": component,
		"operation": operation,
	})
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(err.Error())
}
