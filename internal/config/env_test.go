package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := EnvSettingsFile + "=/etc/pricecompare/settings.yaml\n" +
		EnvLogLevel + "=debug\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvSettingsFile, "")
	os.Unsetenv(EnvSettingsFile)
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "")

	env := LoadEnv(path)

	if env.SettingsFile != "/etc/pricecompare/settings.yaml" {
		t.Errorf("SettingsFile = %q, want value from .env", env.SettingsFile)
	}
	if env.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want process value to win", env.LogLevel)
	}
	if env.LogFormat != "" {
		t.Errorf("LogFormat = %q, want empty", env.LogFormat)
	}
}

func TestLoadEnv_MissingFile(t *testing.T) {
	t.Setenv(EnvArchive, "runs.db")

	env := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	if env.Archive != "runs.db" {
		t.Errorf("Archive = %q", env.Archive)
	}
}
