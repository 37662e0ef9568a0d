package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Skandeerkefi/luckywData/internal/client/cli"
	"github.com/Skandeerkefi/luckywData/internal/client/config"
)

func main() {
	cfg, args, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := cli.NewApp(cfg).Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
