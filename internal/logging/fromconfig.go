package logging

import (
	"log/slog"

	"rigprep/internal/config"
)

// logFileName is the persistent log file kept under the configured log
// directory.
const logFileName = "rigprep.log"

// NewFromConfig builds the CLI logger from configuration: console (or JSON)
// output on stderr teed into the persistent log file. The returned closer
// releases the log file.
func NewFromConfig(cfg *config.Config) (*slog.Logger, func() error, error) {
	opts := Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	return NewTee(opts, cfg.Paths.LogDir, logFileName)
}
