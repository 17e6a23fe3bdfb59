package log

import (
	"io"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger is the global logging instance
// nolint:gochecknoglobals
var logger *logrus.Logger

// nolint:gochecknoinits
func init() {
	logger = logrus.New()

	ConfigureLogger("info", FormatText, true)
}

// Log returns the global logger
func Log() *logrus.Logger {
	return logger
}

// PrefixedLog return the global logger with prefix
func PrefixedLog(prefix string) *logrus.Entry {
	return logger.WithField("prefix", prefix)
}

// ConfigureLogger applies configuration to the global logger
func ConfigureLogger(logLevel, logFormat string, logTimestamp bool) {
	if level, err := logrus.ParseLevel(logLevel); err != nil {
		logger.Fatalf("invalid log level %s %v", logLevel, err)
	} else {
		logger.SetLevel(level)
	}

	switch logFormat {
	case FormatText:
		logFormatter := &prefixed.TextFormatter{
			TimestampFormat:  "2006-01-02 15:04:05",
			FullTimestamp:    true,
			ForceFormatting:  true,
			ForceColors:      false,
			QuoteEmptyFields: true,
			DisableTimestamp: !logTimestamp,
		}

		logFormatter.SetColorScheme(&prefixed.ColorScheme{
			PrefixStyle:    "blue+b",
			TimestampStyle: "white+h",
		})

		logger.SetFormatter(logFormatter)

	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})

	default:
		logger.Fatalf("invalid log format %s", logFormat)
	}
}

// Silence disables the logger output
func Silence() {
	logger.Out = io.Discard
}
