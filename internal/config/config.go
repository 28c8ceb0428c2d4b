package config

import "time"

type Config interface {
	EnvConfig
	BrokerConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type BrokerConfig interface {
	GetTrustedDomainsPath() string
	GetReadinessTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
