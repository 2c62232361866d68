package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"rigprep/internal/batch"
	"rigprep/internal/config"
	"rigprep/internal/gltfio"
	"rigprep/internal/history"
	"rigprep/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the configured logger. The returned closer releases the
// log file and must be called before exit.
func (c *commandContext) newLogger() (*slog.Logger, func() error, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	return logging.NewFromConfig(cfg)
}

// newDriver wires the batch driver with the GLB codec and, when enabled, the
// history store. The returned cleanup closes the store.
func (c *commandContext) newDriver(logger *slog.Logger) (*batch.Driver, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	loader := gltfio.NewLoader(logger)
	exporter := gltfio.NewExporter(cfg.Export.Generator, logger)

	var store *history.Store
	cleanup := func() {}
	if cfg.History.Enabled {
		store, err = history.Open(cfg.HistoryPath())
		if err != nil {
			logger.Warn("history disabled", logging.Error(err))
			store = nil
		} else {
			cleanup = func() { _ = store.Close() }
		}
	}

	return batch.NewDriver(cfg, loader, exporter, store, logger), cleanup, nil
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.HistoryPath())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
