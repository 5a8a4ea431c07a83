package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the application logger. Release mode logs JSON; anything else
// logs human-readable text.
func New(level, ginMode string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if ginMode == "release" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		log.WithField("level", level).Warn("unknown log level, falling back to info")
	}
	log.SetLevel(lvl)

	return log
}
