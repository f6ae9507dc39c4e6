package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Undertone0809/ecjtu/internal/service"
	"github.com/Undertone0809/ecjtu/pkg/slogx"
)

// LoginHandler serves POST /v1/login: portal credentials in, token pair out.
type LoginHandler struct {
	TokenService *service.TokenService
}

type loginRequest struct {
	StudentID string `json:"stud_id"`
	Password  string `json:"password"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	req.StudentID = strings.TrimSpace(req.StudentID)
	if req.StudentID == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "stud_id and password are required")
		return
	}

	pair, err := h.TokenService.CreateTokens(ctx, req.StudentID, req.Password)
	if err != nil {
		respondServiceError(w, log, err)
		return
	}

	log.Info("student logged in", "student_id", req.StudentID)
	respondData(w, pair)
}

// RefreshHandler serves POST /v1/refresh: rotates a token pair off a still
// valid refresh token.
type RefreshHandler struct {
	TokenService *service.TokenService
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		respondServiceError(w, log, err)
		return
	}
	respondData(w, pair)
}
