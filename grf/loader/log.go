package loader

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LogLevel maps the module debug level of the settings to a log level.
func LogLevel(debug int) logrus.Level {
	switch {
	case debug <= 1:
		return logrus.WarnLevel
	case debug <= 5:
		return logrus.InfoLevel
	case debug <= 7:
		return logrus.DebugLevel
	}
	return logrus.TraceLevel
}

// NewLogger returns a logger for module diagnostics at a debug level.
func NewLogger(out io.Writer, debug int) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(LogLevel(debug))
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		SortingFunc:      sortFields,
	})
	return l
}

var fieldOrder = map[string]int{
	logrus.FieldKeyLevel: 0,
	"grf":                1,
	"stage":              2,
	"line":               3,
	logrus.FieldKeyMsg:   4,
}

// sortFields puts the module location first so that lines of one module
// read as a listing.
func sortFields(keys []string) {
	rank := func(k string) int {
		if r, ok := fieldOrder[k]; ok {
			return r
		}
		return len(fieldOrder)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && rank(keys[j]) < rank(keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}
