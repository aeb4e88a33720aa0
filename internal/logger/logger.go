// Package logger holds the process-wide zerolog logger.
package logger

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	log  zerolog.Logger
)

// Get returns the shared logger. The first call decides the level:
// debug when enableDebug is true, info otherwise.
func Get(enableDebug ...bool) *zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		level := zerolog.InfoLevel
		if len(enableDebug) > 0 && enableDebug[0] {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(os.Stdout).
			Level(level).
			With().
			Timestamp().
			Logger()
	})
	return &log
}
