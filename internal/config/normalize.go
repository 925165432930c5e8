package config

import (
	"fmt"
	"os"
	"strings"

	"tilestats/internal/series"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeParse()
	c.normalizeS3()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

// Input and output locations stay relative: they may be "-" or s3:// URIs and
// are resolved against the working directory at run time.
func (c *Config) normalizeParse() {
	if value, ok := os.LookupEnv("TILESTATS_POLICY"); ok && strings.TrimSpace(value) != "" {
		c.Parse.Policy = value
	}
	c.Parse.Policy = strings.ToLower(strings.TrimSpace(c.Parse.Policy))
	if c.Parse.Policy == "" {
		c.Parse.Policy = defaultPolicy
	}
	// Aliases are stored under their canonical name; unknown values are left
	// for Validate to report.
	if policy, err := series.ParsePolicy(c.Parse.Policy); err == nil {
		c.Parse.Policy = policy.String()
	}
	c.Parse.DefaultInput = strings.TrimSpace(c.Parse.DefaultInput)
	c.Parse.DefaultOutput = strings.TrimSpace(c.Parse.DefaultOutput)
}

func (c *Config) normalizeS3() {
	c.S3.Region = strings.TrimSpace(c.S3.Region)
	if c.S3.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok {
			c.S3.Region = strings.TrimSpace(value)
		}
	}
	c.S3.Endpoint = strings.TrimSpace(c.S3.Endpoint)
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = ""
		return nil
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeMetrics() error {
	if strings.TrimSpace(c.Metrics.Textfile) == "" {
		c.Metrics.Textfile = ""
		return nil
	}
	var err error
	if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) == "" {
		c.Logging.File = ""
		return nil
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
