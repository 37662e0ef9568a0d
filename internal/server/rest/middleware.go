package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Skandeerkefi/luckywData/internal/common"
	"github.com/Skandeerkefi/luckywData/internal/server/auth"
	"github.com/google/uuid"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// ClaimsFromContext returns the token claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get(common.AuthorizationHeaderName), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth rejects requests without a valid "Authorization: Bearer"
// token with 401 and passes the claims on through the request context.
func (s *HTTPServer) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, msgUnauthorized, codeUnauthorized)
			return
		}

		claims, err := s.users.Authenticate(r.Context(), token)
		if err != nil {
			s.logger.Debug(r.Context(), "Token rejected", "error", err)
			s.writeServiceError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withCORS applies the origin allow-list. Requests without an Origin header
// (curl, server-to-server) pass through untouched.
func (s *HTTPServer) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if _, ok := s.allowedOrigins[origin]; !ok {
			writeError(w, http.StatusForbidden, "CORS policy: This origin is not allowed", codeForbidden)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// withRequestLog tags each request with an id (taken from X-Request-ID when
// the caller sends one) and logs method, path, status and duration.
func (s *HTTPServer) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "Request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
