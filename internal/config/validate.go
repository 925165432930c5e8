package config

import (
	"errors"
	"fmt"
	"net/url"

	"tilestats/internal/series"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateParse(); err != nil {
		return err
	}
	if err := c.validateS3(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateParse() error {
	if _, err := series.ParsePolicy(c.Parse.Policy); err != nil {
		return fmt.Errorf("parse.policy: %w", err)
	}
	if c.Parse.DefaultInput == "" {
		return errors.New("parse.default_input must be set")
	}
	if c.Parse.DefaultOutput == "" {
		return errors.New("parse.default_output must be set")
	}
	return nil
}

func (c *Config) validateS3() error {
	if c.S3.Endpoint == "" {
		return nil
	}
	parsed, err := url.Parse(c.S3.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("s3.endpoint: %q is not an absolute URL", c.S3.Endpoint)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
