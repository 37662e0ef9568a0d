// Package rest exposes the account and affiliates API over HTTP/JSON.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Skandeerkefi/luckywData/internal/logging"
	"github.com/Skandeerkefi/luckywData/internal/server/auth"
	"github.com/Skandeerkefi/luckywData/internal/server/models"
	"github.com/Skandeerkefi/luckywData/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// UserService is the part of services.UserService the HTTP layer needs.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, kickUsername, password string) (*services.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AffiliatesFetcher returns upstream affiliate data for a time range.
type AffiliatesFetcher interface {
	Fetch(ctx context.Context, startAt, endAt string) (json.RawMessage, error)
}

type HTTPServer struct {
	address        string
	users          UserService
	affiliates     AffiliatesFetcher
	logger         logging.Logger
	metrics        *Metrics
	allowedOrigins map[string]struct{}
	mux            *http.ServeMux
}

type Option func(*HTTPServer)

// WithAllowedOrigins sets the CORS allow-list. Trailing slashes are ignored.
func WithAllowedOrigins(origins []string) Option {
	return func(s *HTTPServer) {
		s.allowedOrigins = make(map[string]struct{}, len(origins))
		for _, o := range origins {
			s.allowedOrigins[strings.TrimRight(o, "/")] = struct{}{}
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *HTTPServer) { s.metrics = m }
}

func NewHTTPServer(address string, l logging.Logger, us UserService, af AffiliatesFetcher, opts ...Option) *HTTPServer {
	s := &HTTPServer{
		address:    address,
		logger:     l.With("module", "http_server"),
		users:      us,
		affiliates: af,
		mux:        http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	s.routes()
	return s
}

func (s *HTTPServer) routes() {
	s.mux.HandleFunc("POST /api/auth/register", s.register)
	s.mux.HandleFunc("POST /api/auth/login", s.login)
	s.mux.Handle("GET /api/auth/me", s.RequireAuth(http.HandlerFunc(s.me)))
	s.mux.HandleFunc("GET /api/affiliates", s.getAffiliates)
	s.mux.HandleFunc("GET /health", s.health)
	s.mux.Handle("GET /metrics", s.metrics.Handler())
	s.mux.HandleFunc("/", s.notFound)
}

// Mount attaches a downstream router under prefix. Every request to it must
// carry a valid bearer token; the claims are available to h through
// ClaimsFromContext.
func (s *HTTPServer) Mount(prefix string, h http.Handler) {
	prefix = strings.TrimRight(prefix, "/")
	protected := s.RequireAuth(h)
	s.mux.Handle(prefix, protected)
	s.mux.Handle(prefix+"/", protected)
}

// Handler returns the full middleware chain around the router.
func (s *HTTPServer) Handler() http.Handler {
	return s.withRequestLog(s.withCORS(s.metrics.Middleware(s.mux)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "Shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
