package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Skandeerkefi/luckywData/internal/flagx"
	"github.com/Skandeerkefi/luckywData/internal/timex"
)

// JsonConfig is the on-disk form of Config.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the JSON file named by -c or -config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
