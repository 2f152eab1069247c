package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateStrip(); err != nil {
		return err
	}
	if err := c.validateDialect(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMerge() error {
	if len(c.Merge.KeyColumns) == 0 {
		return errors.New("merge.key_columns must not be empty")
	}
	for _, column := range c.Merge.KeyColumns {
		if column == "" {
			return errors.New("merge.key_columns entries must not be blank")
		}
	}
	return nil
}

func (c *Config) validateStrip() error {
	// An empty prefix would match, and therefore remove, every column.
	if c.Strip.PlaceholderPrefix == "" {
		return errors.New("strip.placeholder_prefix must not be empty")
	}
	return nil
}

func (c *Config) validateDialect() error {
	if c.Dialect.SampleBytes < 0 {
		return fmt.Errorf("dialect.sample_bytes must be positive, got %d", c.Dialect.SampleBytes)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
