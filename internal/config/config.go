package config

import "time"

type Config interface {
	EnvConfig
	TimeoutConfig
}

type EnvConfig interface {
	GetAPIBaseURL() string
	GetAppName() string
	GetStateDir() string
	GetEnv() string
}

type TimeoutConfig interface {
	GetRequestTimeout() time.Duration
	GetUploadTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Timeouts
}

func New() Config {
	return mainConfig{}
}
