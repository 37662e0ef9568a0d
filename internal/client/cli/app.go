package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Skandeerkefi/luckywData/internal/client/client"
	"github.com/Skandeerkefi/luckywData/internal/client/config"
)

var ErrUsage = errors.New("usage: luckyw-cli [-a url] [-t timeout] [-c config.json] register|login|health")

type App struct {
	client client.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	return newApp(client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout), os.Stdin, os.Stdout)
}

func newApp(cl client.Client, in io.Reader, out io.Writer) *App {
	return &App{client: cl, reader: bufio.NewReader(in), out: out}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}

	switch args[0] {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "health":
		return a.Health(ctx)
	case "help":
		fmt.Fprintln(a.out, "Available commands: register, login, health")
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], ErrUsage)
	}
}
