package app

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SetupLogging applies the log level and format settings to the global logrus logger.
func SetupLogging(level, format string) {
	log.SetOutput(os.Stderr)
	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
