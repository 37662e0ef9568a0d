package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Skandeerkefi/luckywData/internal/common"
	"github.com/Skandeerkefi/luckywData/internal/logging"
	"github.com/Skandeerkefi/luckywData/internal/server/services"
	"github.com/samber/oops"
)

const maxBodyBytes = 1 << 20

const (
	codeBadRequest   = "BAD_REQUEST"
	codeUnauthorized = "UNAUTHORIZED"
	codeNotFound     = "NOT_FOUND"
	codeForbidden    = "FORBIDDEN"

	msgBadRequest   = "Invalid request body."
	msgUnauthorized = "Missing or invalid token."
	msgInternal     = "Internal server error."
)

// errorResponse is the body of every non-2xx response from the auth API.
type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// upstreamErrorResponse keeps the {error} shape existing affiliates
// clients read, plus message for consistency with the rest of the API.
type upstreamErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Message: message, Code: code})
}

func writeUpstreamError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, upstreamErrorResponse{Error: message, Message: message})
}

// decodeJSON reads a single JSON object into dst. Unknown fields, trailing
// data and bodies over maxBodyBytes are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("decode body: trailing data")
	}
	return nil
}

// errorCode returns the oops code attached to err, or fallback.
func errorCode(err error, fallback string) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok && code != "" {
			return code
		}
	}
	return fallback
}

// writeServiceError maps UserService errors to status codes and client
// messages. Anything unrecognized is a 500 with a generic body.
func (s *HTTPServer) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		code := errorCode(err, services.CodeInvalidInput)
		msg := "kickUsername, rainbetUsername and password are required."
		if code == services.CodePasswordMismatch {
			msg = "Passwords do not match."
		}
		writeError(w, http.StatusBadRequest, msg, code)

	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusBadRequest, "Username already exists.", errorCode(err, services.CodeConflict))

	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "User not found.", errorCode(err, services.CodeUserNotFound))

	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid credentials.", errorCode(err, services.CodeInvalidCredentials))

	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, msgUnauthorized, errorCode(err, services.CodeInvalidToken))

	default:
		if !errors.Is(err, common.ErrorInternal) {
			logging.LogError(ctx, s.logger, "unhandled service error", err)
		}
		writeError(w, http.StatusInternalServerError, msgInternal, services.CodeInternal)
	}
}
