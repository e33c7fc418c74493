package config

const (
	defaultConfigPath = "~/.config/dfhash/config.toml"
	projectConfigName = "dfhash.toml"
	cacheFileName     = "hashes.db"
	defaultCacheFile  = "~/.cache/dfhash/" + cacheFileName
	defaultLogFormat  = "console"
	defaultLogLevel   = "warn"
	defaultDelimiter  = ","
	defaultEncoding   = "auto"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		CSV: CSV{
			Delimiter:  defaultDelimiter,
			Encoding:   defaultEncoding,
			NullValues: []string{""},
			HasHeader:  true,
		},
		Cache: Cache{
			Path: defaultCachePath(),
		},
	}
}
