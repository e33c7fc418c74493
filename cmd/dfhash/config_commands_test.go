package main

import (
	"os"
	"path/filepath"
	"testing"

	"dfhash/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "dfhash config OK")
	requireContains(t, out, "Source: "+env.configPath+"\n")
	requireContains(t, out, `CSV: delimiter ',', encoding auto, header yes`)
	requireContains(t, out, "Cache: no ("+env.cachePath+")")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--output", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Starter config written to "+target)
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, []string{"config", "init", "-o", target}, "")
	if err == nil {
		t.Fatal("expected init to refuse replacing without --force")
	}
	requireContains(t, err.Error(), "pass --force")
	if _, _, err := runCLI(t, []string{"config", "init", "-o", target, "--force"}, ""); err != nil {
		t.Fatalf("config init --force: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "dfhash config OK")
}

func TestConfigValidateReportsMissingFile(t *testing.T) {
	setupCLITestEnv(t)
	missing := filepath.Join(t.TempDir(), "absent.toml")

	out, _, err := runCLI(t, []string{"config", "validate"}, missing)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Source: "+missing+" (not found, built-in defaults)")
	requireContains(t, out, "Workers: all CPUs")
}

func TestConfigShowAppliesFlagOverrides(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCache())

	out, _, err := runCLI(t, []string{"config", "show", "--log-level", "DEBUG", "--log-format", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[logging]")
	requireContains(t, out, "level = 'debug'")
	requireContains(t, out, "format = 'json'")
	requireContains(t, out, env.cachePath)
}
