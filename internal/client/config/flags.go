package config

import (
	"flag"
	"io"
)

// parseFlags applies -a and -t to cfg and returns the positional arguments.
// -c/-config are accepted here too so that they do not end up positional.
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("luckyw-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the API")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")

	var configFile string
	fs.StringVar(&configFile, "c", "", "path to JSON config file (short)")
	fs.StringVar(&configFile, "config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}
