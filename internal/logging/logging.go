// Package logging configures the process logger and the request-scoped
// logging middleware.
//
// Packages that log through the standard library (database, tasks,
// entrypoint) end up in the same logrus sink once NewLogger has redirected
// the std logger.
package logging

import (
	"log"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Akshat120/Book-Review-API/internal/config"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger builds a logrus logger from config. Unknown levels fall back to
// info, unknown formats to text.
func NewLogger(cfg config.Logging) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, FormatJSON) {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// RedirectStdLog routes the standard library logger into logger at info level.
func RedirectStdLog(logger *logrus.Logger) {
	log.SetFlags(0)
	log.SetOutput(logger.WriterLevel(logrus.InfoLevel))
}

// TaskLogger adapts a logrus logger to the task queue's logger interface.
type TaskLogger struct {
	entry *logrus.Entry
}

func NewTaskLogger(logger *logrus.Logger) *TaskLogger {
	return &TaskLogger{entry: logger.WithField("component", "tasks")}
}

func (l *TaskLogger) Info(message string, params ...any) {
	l.entry.WithFields(pairs(params)).Info(message)
}

func (l *TaskLogger) Error(message string, params ...any) {
	l.entry.WithFields(pairs(params)).Error(message)
}

// pairs turns backlite's alternating key/value params into logrus fields.
func pairs(params []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(params); i += 2 {
		key, ok := params[i].(string)
		if !ok {
			continue
		}
		fields[key] = params[i+1]
	}
	if len(params)%2 == 1 {
		fields["extra"] = params[len(params)-1]
	}
	return fields
}
