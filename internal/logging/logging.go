// Package logging configures the process-wide structured logger. The monitor
// owns the terminal, so log output goes to a file by default.
package logging

import (
	"os"

	"github.com/phuslu/log"
)

// Setup installs the default logger. An empty file path logs to stderr.
func Setup(level, file string) {
	logger := log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "2006-01-02 15:04:05",
	}

	if file != "" {
		logger.Writer = &log.FileWriter{
			Filename:   file,
			MaxSize:    10 << 20,
			MaxBackups: 2,
			LocalTime:  true,
		}
	} else {
		logger.Writer = &log.IOWriter{Writer: os.Stderr}
	}

	log.DefaultLogger = logger
}
