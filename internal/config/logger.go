package config

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// InitLogger configures the global logrus logger.
func InitLogger(cfg LogConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}

	var formatter log.Formatter = &log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
	if strings.EqualFold(cfg.Format, "json") {
		formatter = &log.JSONFormatter{
			FieldMap: log.FieldMap{
				log.FieldKeyTime: "@timestamp",
				log.FieldKeyMsg:  "message",
			},
		}
	}

	log.SetOutput(os.Stdout)
	log.SetFormatter(formatter)
	log.SetLevel(level)
}
