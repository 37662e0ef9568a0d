package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvSecret          = "JWT_SECRET"
	EnvRainbetAPIKey   = "RAINBET_API_KEY"
	EnvDatabaseDSN     = "DATABASE_DSN"
	EnvRedisURL        = "REDIS_URL"
	EnvPort            = "PORT"
	EnvTokenValidity   = "TOKEN_VALIDITY"
	EnvHasher          = "PASSWORD_HASHER"
	EnvAllowedOrigins  = "ALLOWED_ORIGINS"
	EnvLogLevel        = "LOG_LEVEL"
	EnvUpstreamTimeout = "UPSTREAM_TIMEOUT"
)

// loadDotEnv copies variables from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str(EnvSecret, &config.SecretKey)
	str(EnvRainbetAPIKey, &config.RainbetAPIKey)
	str(EnvDatabaseDSN, &config.DatabaseDSN)
	str(EnvRedisURL, &config.RedisURL)
	str(EnvHasher, &config.Hasher)
	str(EnvLogLevel, &config.LogLevel)

	if v, ok := lookup(EnvPort); ok && v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("%s: %q is not a port number", EnvPort, v)
		}
		config.EndpointAddrHTTP = ":" + v
	}

	if v, ok := lookup(EnvAllowedOrigins); ok && v != "" {
		config.AllowedOrigins = splitList(v)
	}

	if err := dur(EnvTokenValidity, &config.TokenValidityDuration); err != nil {
		return err
	}
	return dur(EnvUpstreamTimeout, &config.UpstreamTimeout)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
