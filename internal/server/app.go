// Package server wires configuration, storage and services together and
// runs the HTTP API until it receives a termination signal.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Skandeerkefi/luckywData/internal/logging"
	"github.com/Skandeerkefi/luckywData/internal/server/affiliates"
	"github.com/Skandeerkefi/luckywData/internal/server/auth"
	"github.com/Skandeerkefi/luckywData/internal/server/config"
	"github.com/Skandeerkefi/luckywData/internal/server/repositories/repomanager"
	"github.com/Skandeerkefi/luckywData/internal/server/rest"
	"github.com/Skandeerkefi/luckywData/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.RepositoryManager
	cache       *affiliates.RedisCache
	userService *services.UserService
	affiliates  *affiliates.Client
	httpServer  *rest.HTTPServer
}

// NewApp validates c and builds every component. Logs go to stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(logOut, c.LogLevel, c.LogFormat)

	hasher, err := auth.NewPasswordHasher(c.Hasher, c.BcryptCost)
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewTokenIssuer([]byte(c.SecretKey), c.TokenValidityDuration)
	if err != nil {
		return nil, err
	}

	repos, err := repomanager.New(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "No database configured, users are kept in memory and lost on restart")
	}

	app := &App{config: c, logger: logger, repos: repos}

	var opts []affiliates.Option
	if c.RedisURL != "" {
		cache, err := affiliates.OpenRedisCache(ctx, c.RedisURL)
		if err != nil {
			logger.Warn(ctx, "Affiliates cache disabled", "error", err)
		} else {
			app.cache = cache
			opts = append(opts, affiliates.WithCache(cache, c.AffiliatesCacheTTL))
		}
	}

	app.userService = services.NewUserService(repos.Users(), hasher, issuer, logger)
	app.affiliates = affiliates.NewClient(c.AffiliatesURL, c.RainbetAPIKey, c.UpstreamTimeout, logger, opts...)
	app.httpServer = rest.NewHTTPServer(c.EndpointAddrHTTP, logger, app.userService, app.affiliates,
		rest.WithAllowedOrigins(c.AllowedOrigins),
	)

	return app, nil
}

// HTTPServer exposes the server so that downstream routers can be mounted
// before Run.
func (app *App) HTTPServer() *rest.HTTPServer {
	return app.httpServer
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases storage and cache connections.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.httpServer.Run(ctx)
	if err != nil {
		logging.LogError(ctx, app.logger, "HTTP server failed", err)
	}

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
	return err
}

func (app *App) close(ctx context.Context) {
	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "Closing storage failed", "error", err)
	}
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error(ctx, "Closing cache failed", "error", err)
		}
	}
}
