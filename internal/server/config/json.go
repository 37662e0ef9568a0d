package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Skandeerkefi/luckywData/internal/flagx"
	"github.com/Skandeerkefi/luckywData/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations use timex.Duration,
// which accepts both "10s" style strings and integer nanoseconds. Only
// fields present in the file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	Hasher                *string         `json:"hasher"`
	BcryptCost            *int            `json:"bcrypt_cost"`
	RainbetAPIKey         *string         `json:"rainbet_api_key"`
	AffiliatesURL         *string         `json:"affiliates_url"`
	UpstreamTimeout       *timex.Duration `json:"upstream_timeout"`
	RedisURL              *string         `json:"redis_url"`
	AffiliatesCacheTTL    *timex.Duration `json:"affiliates_cache_ttl"`
	AllowedOrigins        []string        `json:"allowed_origins"`
	LogLevel              *string         `json:"log_level"`
	LogFormat             *string         `json:"log_format"`
}

// parseJson overlays the JSON file named by -c or -config onto config.
// Without either flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Hasher, c.Hasher)
	setString(&config.RainbetAPIKey, c.RainbetAPIKey)
	setString(&config.AffiliatesURL, c.AffiliatesURL)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setDuration(&config.TokenValidityDuration, c.TokenValidityDuration)
	setDuration(&config.UpstreamTimeout, c.UpstreamTimeout)
	setDuration(&config.AffiliatesCacheTTL, c.AffiliatesCacheTTL)
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	return nil
}

func setString(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}
