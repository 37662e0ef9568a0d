package config

import (
	"flag"
	"io"

	"github.com/Skandeerkefi/luckywData/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g. ":3000")
//	-d string     PostgreSQL DSN
//	-s string     token signing secret
//	-t duration   session token validity (e.g. "168h")
//	-r string     Redis URL for the affiliates cache
//	-k string     Rainbet API key
//	-l string     log level
//
// Arguments are first narrowed to these flags with flagx.FilterArgs so that
// -c/-config and unrelated flags pass through untouched.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-r", "-k", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "session token validity")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.StringVar(&config.RainbetAPIKey, "k", config.RainbetAPIKey, "rainbet API key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
