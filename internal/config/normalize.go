package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMerge()
	c.normalizeStrip()
	c.normalizeDialect()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMerge() {
	if len(c.Merge.KeyColumns) == 0 {
		c.Merge.KeyColumns = defaultKeyColumns()
		return
	}
	columns := make([]string, 0, len(c.Merge.KeyColumns))
	for _, column := range c.Merge.KeyColumns {
		columns = append(columns, strings.TrimSpace(column))
	}
	c.Merge.KeyColumns = columns
}

func (c *Config) normalizeStrip() {
	c.Strip.PlaceholderPrefix = strings.TrimSpace(c.Strip.PlaceholderPrefix)
	if c.Strip.PlaceholderPrefix == "" {
		c.Strip.PlaceholderPrefix = defaultPlaceholderPrefix
	}
}

func (c *Config) normalizeDialect() {
	if c.Dialect.SampleBytes == 0 {
		c.Dialect.SampleBytes = defaultSampleBytes
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
