package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadEnv.
const (
	EnvSettingsFile = "PRICECOMPARE_SETTINGS"
	EnvLogLevel     = "PRICECOMPARE_LOG_LEVEL"
	EnvLogFormat    = "PRICECOMPARE_LOG_FORMAT"
	EnvArchive      = "PRICECOMPARE_ARCHIVE"
)

// Env holds defaults taken from the environment. Command-line flags that are
// set explicitly take precedence over these.
type Env struct {
	SettingsFile string
	LogLevel     string
	LogFormat    string
	Archive      string
}

// LoadEnv reads a .env file from the working directory, if there is one, and
// returns the PRICECOMPARE_* variables. Variables already set in the process
// environment win over the file.
func LoadEnv(files ...string) Env {
	_ = godotenv.Load(files...)

	return Env{
		SettingsFile: os.Getenv(EnvSettingsFile),
		LogLevel:     os.Getenv(EnvLogLevel),
		LogFormat:    os.Getenv(EnvLogFormat),
		Archive:      os.Getenv(EnvArchive),
	}
}
