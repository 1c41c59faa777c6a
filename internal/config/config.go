package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetLoginPath() string
}

type StorageConfig interface {
	GetDataFolder() string
	GetTokenPassphrase() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
}

func New() Config {
	return mainConfig{}
}
