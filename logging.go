package zrtos

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// SetLogLevel sets the level of the standard logrus logger.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("zrtos: log level %q (valid: %v): %w", level, logrus.AllLevels, err)
	}
	logrus.SetLevel(lvl)
	return nil
}

// SetLogFormat selects the formatter of the standard logrus logger.
func SetLogFormat(format string) error {
	switch format {
	case "", LogFormatText:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case LogFormatJSON:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("zrtos: unknown log format %q", format)
	}
	return nil
}

// SetLogOutput redirects the standard logrus logger.
func SetLogOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// ApplyLogging applies the logging fields of c to the standard logrus logger.
func ApplyLogging(c Config) error {
	if c.LogLevel != "" {
		if err := SetLogLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return SetLogFormat(c.LogFormat)
}
