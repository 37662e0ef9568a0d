// Package config loads runtime configuration for the luckyw CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the API (e.g. http://127.0.0.1:3000)
//	-t duration   per-request timeout
//
// # JSON schema
//
// The JSON loader uses timex.Duration, so the timeout can be a string like
// "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:3000",
//	  "request_timeout": "10s"
//	}
package config
