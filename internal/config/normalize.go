package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRig()
	c.normalizeExport()
	c.normalizeLogging()
	return c.normalizeHistory()
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRig() {
	c.Rig.RootName = strings.TrimSpace(c.Rig.RootName)
	if c.Rig.RootName == "" {
		c.Rig.RootName = defaultRootName
	}
	c.Rig.WrapperJoint = strings.TrimSpace(c.Rig.WrapperJoint)
	if c.Rig.WrapperJoint == "" {
		c.Rig.WrapperJoint = defaultWrapperJoint
	}
}

func (c *Config) normalizeExport() {
	c.Export.Generator = strings.TrimSpace(c.Export.Generator)
	if c.Export.Generator == "" {
		c.Export.Generator = defaultGenerator
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		return nil
	}
	expanded, err := expandPath(c.History.Path)
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = expanded
	return nil
}
