package config

import (
	"os"
	"path/filepath"
)

const (
	baseURLVar  = "PORTAL_API_BASE_URL"
	appNameVar  = "APP_NAME"
	stateDirVar = "PORTAL_STATE_DIR"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetAPIBaseURL returns the portal API endpoint. Falls back to the
// local development server when unset.
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:5000")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Portal Client")
}

// GetStateDir returns the directory holding durable client state
// (the stored token). Defaults to ~/.config/portal.
func (EnvVars) GetStateDir() string {
	if dir := os.Getenv(stateDirVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portal"
	}
	return filepath.Join(home, ".config", "portal")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
