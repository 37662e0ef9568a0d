// Package config handles configuration for the server component:
// defaults, .env file and environment, JSON overlay and command-line flags,
// applied in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Skandeerkefi/luckywData/internal/server/auth"
)

// Config holds runtime settings for the API server.
//
// Fields:
//   - EndpointAddrHTTP: bind address of the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps users in memory.
//   - SecretKey: HMAC secret for signing session tokens (HS256). No default.
//   - TokenValidityDuration: lifetime of issued session tokens.
//   - Hasher / BcryptCost: password hashing scheme.
//   - RainbetAPIKey / AffiliatesURL / UpstreamTimeout: affiliates upstream.
//   - RedisURL / AffiliatesCacheTTL: optional affiliates response cache.
type Config struct {
	EndpointAddrHTTP      string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	Hasher                string
	BcryptCost            int
	RainbetAPIKey         string
	AffiliatesURL         string
	UpstreamTimeout       time.Duration
	RedisURL              string
	AffiliatesCacheTTL    time.Duration
	AllowedOrigins        []string
	LogLevel              string
	LogFormat             string
}

// DefaultAllowedOrigins are the browser origins allowed by CORS.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"https://king-eta-cyan.vercel.app",
	"https://kingrewardsroobet.vercel.app",
	"https://mister-tee.vercel.app",
	"https://louiskhz.vercel.app",
	"https://tacopoju-dun.vercel.app",
	"https://luckyw.vercel.app",
	"https://www.luckywrewards.com",
}

// LoadDefaults populates Config with development defaults. SecretKey is
// deliberately left empty so that a missing secret fails Validate.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.TokenValidityDuration = auth.DefaultTokenValidity
	c.Hasher = auth.HasherBcrypt
	c.BcryptCost = auth.DefaultBcryptCost
	c.AffiliatesURL = "https://services.rainbet.com/v1/external/affiliates"
	c.UpstreamTimeout = 10 * time.Second
	c.AffiliatesCacheTTL = time.Minute
	c.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is not set (JWT_SECRET or -s)"))
	}
	if c.TokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("token validity must be positive, got %s", c.TokenValidityDuration))
	}
	if c.Hasher != auth.HasherBcrypt && c.Hasher != auth.HasherArgon2id {
		errs = append(errs, fmt.Errorf("unknown hasher %q", c.Hasher))
	}
	if c.Hasher == auth.HasherBcrypt && !auth.ValidBcryptCost(c.BcryptCost) {
		errs = append(errs, fmt.Errorf("bcrypt cost out of range, got %d", c.BcryptCost))
	}
	if c.EndpointAddrHTTP == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout))
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (and an optional .env file), an optional JSON file
// and finally command-line flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
