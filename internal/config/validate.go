package config

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"

	"dfhash/internal/failure"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return failure.Wrap(failure.ErrConfiguration, "", "", err)
	}
	if err := c.validateHashing(); err != nil {
		return failure.Wrap(failure.ErrConfiguration, "", "", err)
	}
	if err := c.validateCSV(); err != nil {
		return failure.Wrap(failure.ErrConfiguration, "", "", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateHashing() error {
	if c.Hashing.Workers < 0 {
		return fmt.Errorf("hashing.workers must be zero or positive (got %d)", c.Hashing.Workers)
	}
	return nil
}

func (c *Config) validateCSV() error {
	if utf8.RuneCountInString(c.CSV.Delimiter) != 1 {
		return fmt.Errorf("csv.delimiter must be a single character (got %q)", c.CSV.Delimiter)
	}
	switch r := c.Delimiter(); r {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("csv.delimiter %q is not allowed", r)
	}
	if c.CSV.Encoding != defaultEncoding {
		if _, err := htmlindex.Get(c.CSV.Encoding); err != nil {
			return fmt.Errorf("csv.encoding %q is not a known character encoding", c.CSV.Encoding)
		}
	}
	return nil
}
