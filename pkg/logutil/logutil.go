package logutil

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
)

// Config describes how the process-global logger emits logs.
type Config struct {
	Level  string
	File   string
	Format string
}

// InitLogger replaces the global logger according to cfg. It must run
// before any component logs, typically first thing in main.
func InitLogger(cfg *Config) error {
	logger, props, err := log.InitLogger(&log.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		File:   log.FileLogConfig{Filename: cfg.File},
	})
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(logger, props)
	return nil
}
