package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeLogging()
	c.normalizeCSV()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("DFHASH_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func (c *Config) normalizeCSV() {
	switch strings.ToLower(c.CSV.Delimiter) {
	case "":
		c.CSV.Delimiter = defaultDelimiter
	case `\t`, "tab":
		c.CSV.Delimiter = "\t"
	}
	c.CSV.Encoding = strings.ToLower(strings.TrimSpace(c.CSV.Encoding))
	if c.CSV.Encoding == "" {
		c.CSV.Encoding = defaultEncoding
	}
	if c.CSV.NullValues == nil {
		c.CSV.NullValues = []string{""}
	}
}

func (c *Config) normalizeCache() error {
	if value, ok := os.LookupEnv("DFHASH_CACHE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Cache.Path = filepath.Join(strings.TrimSpace(value), cacheFileName)
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath()
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}
