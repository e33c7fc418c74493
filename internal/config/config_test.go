package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"dfhash/internal/config"
	"dfhash/internal/failure"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("DFHASH_LOG_LEVEL", "")
	t.Setenv("DFHASH_CACHE_DIR", "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(home, ".config", "dfhash", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if want := filepath.Join(home, ".cache", "dfhash", "hashes.db"); cfg.Cache.Path != want {
		t.Fatalf("unexpected cache path: got %q want %q", cfg.Cache.Path, want)
	}
	if cfg.Cache.Enabled {
		t.Fatal("expected cache disabled by default")
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Delimiter() != ',' {
		t.Fatalf("unexpected delimiter %q", cfg.Delimiter())
	}
	if !cfg.CSV.HasHeader {
		t.Fatal("expected header row by default")
	}
	if len(cfg.CSV.NullValues) != 1 || cfg.CSV.NullValues[0] != "" {
		t.Fatalf("unexpected null values %q", cfg.CSV.NullValues)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "dfhash.toml")

	type payload struct {
		Logging struct {
			Level  string `toml:"level"`
			Format string `toml:"format"`
		} `toml:"logging"`
		Hashing struct {
			Workers int `toml:"workers"`
		} `toml:"hashing"`
		CSV struct {
			Delimiter string `toml:"delimiter"`
			Encoding  string `toml:"encoding"`
		} `toml:"csv"`
		Cache struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"cache"`
	}
	custom := payload{}
	custom.Logging.Level = "DEBUG"
	custom.Logging.Format = "json"
	custom.Hashing.Workers = 3
	custom.CSV.Delimiter = "tab"
	custom.CSV.Encoding = "Latin1"
	custom.Cache.Enabled = true
	custom.Cache.Path = "~/hashes/cache.db"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.Hashing.Workers != 3 {
		t.Fatalf("expected 3 workers, got %d", cfg.Hashing.Workers)
	}
	if cfg.Delimiter() != '\t' {
		t.Fatalf("expected tab delimiter, got %q", cfg.Delimiter())
	}
	if cfg.CSV.Encoding != "latin1" {
		t.Fatalf("expected normalized encoding, got %q", cfg.CSV.Encoding)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "hashes", "cache.db"); cfg.Cache.Path != want {
		t.Fatalf("expected expanded cache path %q, got %q", want, cfg.Cache.Path)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(cfg.Cache.Path)); err != nil || !info.IsDir() {
		t.Fatalf("expected cache directory to exist: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolateEnv(t)
	cacheDir := t.TempDir()
	t.Setenv("DFHASH_LOG_LEVEL", "error")
	t.Setenv("DFHASH_CACHE_DIR", cacheDir)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Fatalf("expected env log level, got %q", cfg.Logging.Level)
	}
	if want := filepath.Join(cacheDir, "hashes.db"); cfg.Cache.Path != want {
		t.Fatalf("expected env cache path %q, got %q", want, cfg.Cache.Path)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolateEnv(t)
	cases := map[string]string{
		"level":     "[logging]\nlevel = \"loud\"\n",
		"format":    "[logging]\nformat = \"xml\"\n",
		"workers":   "[hashing]\nworkers = -1\n",
		"delimiter": "[csv]\ndelimiter = \";;\"\n",
		"quote":     "[csv]\ndelimiter = '\"'\n",
		"encoding":  "[csv]\nencoding = \"klingon\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dfhash.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if !errors.Is(err, failure.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "dfhash.toml")
	if err := os.WriteFile(path, []byte("[csv]\nseparator = \";\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error for unknown key, got %v", err)
	}
}

func TestSampleConfigLoads(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "[csv]") {
		t.Fatalf("expected encoded config to contain csv table:\n%s", buf.String())
	}
}
