package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log  *logrus.Logger
	once sync.Once
)

// L returns the process logger, initializing it on first use. The level
// comes from MATCHCORE_LOG_LEVEL (default info).
func L() *logrus.Logger {
	once.Do(func() {
		log = logrus.New()
		log.SetOutput(os.Stderr)
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})

		level := logrus.InfoLevel
		if raw := os.Getenv("MATCHCORE_LOG_LEVEL"); raw != "" {
			if parsed, err := logrus.ParseLevel(raw); err == nil {
				level = parsed
			}
		}
		log.SetLevel(level)
	})
	return log
}

// WithComponent tags entries with the subsystem that produced them.
func WithComponent(name string) *logrus.Entry {
	return L().WithField("component", name)
}
