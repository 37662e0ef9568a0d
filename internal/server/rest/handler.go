package rest

import (
	"net/http"
	"time"

	"github.com/Skandeerkefi/luckywData/internal/server/models"
	"github.com/Skandeerkefi/luckywData/internal/server/services"
)

type registerRequest struct {
	KickUsername    string `json:"kickUsername"`
	RainbetUsername string `json:"rainbetUsername"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type registerResponse struct {
	Message string               `json:"message"`
	User    models.PublicProfile `json:"user"`
}

type loginRequest struct {
	KickUsername string `json:"kickUsername"`
	Password     string `json:"password"`
}

type loginResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	User      models.PublicProfile `json:"user"`
}

type meResponse struct {
	ID           string      `json:"id"`
	KickUsername string      `json:"kickUsername"`
	Role         models.Role `json:"role"`
	ExpiresAt    time.Time   `json:"expiresAt"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest, codeBadRequest)
		return
	}

	s.logger.Info(ctx, "Registration request", "kick_username", req.KickUsername)

	user, err := s.users.Register(ctx, services.RegisterInput{
		KickUsername:    req.KickUsername,
		RainbetUsername: req.RainbetUsername,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		s.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{Message: "User registered.", User: user.Public()})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest, codeBadRequest)
		return
	}

	res, err := s.users.Login(ctx, req.KickUsername, req.Password)
	if err != nil {
		s.writeServiceError(ctx, w, err)
		return
	}

	s.logger.Info(ctx, "Logged in", "user_id", res.User.ID)
	writeJSON(w, http.StatusOK, loginResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User})
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized, codeUnauthorized)
		return
	}

	resp := meResponse{ID: claims.UserID(), KickUsername: claims.KickUsername, Role: claims.Role}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", Message: "Roobet Leaderboard API is running"})
}

func (s *HTTPServer) getAffiliates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	startAt := r.URL.Query().Get("start_at")
	endAt := r.URL.Query().Get("end_at")
	if startAt == "" || endAt == "" {
		writeUpstreamError(w, http.StatusBadRequest, "Missing start_at or end_at parameter")
		return
	}

	body, err := s.affiliates.Fetch(ctx, startAt, endAt)
	if err != nil {
		s.logger.Error(ctx, "Affiliates fetch failed", "error", err)
		writeUpstreamError(w, http.StatusInternalServerError, "Failed to fetch affiliates data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *HTTPServer) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found.", codeNotFound)
}
