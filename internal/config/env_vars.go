package config

import (
	"fmt"
	"os"
	"time"
)

const (
	portEnvVar           = "PORT"
	appNameVar           = "APP_NAME"
	trustedDomainsVar    = "TRUSTED_DOMAINS_FILE"
	readinessTimeoutVar  = "TOKEN_READINESS_TIMEOUT"
	defaultTrustedDomain = "./trusted-domains.yaml"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ BrokerConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go OIDC Broker")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetTrustedDomainsPath returns the path of the trusted-domain table loaded
// once at startup.
func (EnvVars) GetTrustedDomainsPath() string {
	return GetEnv(trustedDomainsVar, defaultTrustedDomain)
}

// GetReadinessTimeout bounds how long an intercepted request waits for a
// token set to become valid before failing.
func (EnvVars) GetReadinessTimeout() time.Duration {
	raw := GetEnv(readinessTimeoutVar, "2m")
	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 2 * time.Minute
	}
	return timeout
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
