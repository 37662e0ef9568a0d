package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the CLI.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with defaults matching a locally running server.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:3000"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then the JSON file, then flags from
// os.Args. It also returns the positional arguments (the command).
func LoadConfig() (*Config, []string, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, nil, err
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
