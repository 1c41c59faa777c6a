package config

import (
	"os"
	"path/filepath"
)

const (
	appNameVar = "AUTHDOC_APP_NAME"
	envVar     = "ENV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "AuthDoc")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

// DefaultDataFolder resolves the per-user folder that holds persisted
// credentials, the native analog of browser-origin local storage.
func DefaultDataFolder() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "authdoc")
	}
	return "./.authdoc"
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
