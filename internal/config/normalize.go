package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIngest() {
	c.Ingest.Command = strings.TrimSpace(c.Ingest.Command)
	c.Ingest.UnitGlob = strings.TrimSpace(c.Ingest.UnitGlob)
	if c.Ingest.UnitGlob == "" {
		c.Ingest.UnitGlob = defaultUnitGlob
	}
	if c.Ingest.Workers == 0 {
		c.Ingest.Workers = defaultIngestWorkers
	}
	c.Reprocess.NightsFile = strings.TrimSpace(c.Reprocess.NightsFile)
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
