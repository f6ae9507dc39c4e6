package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Undertone0809/ecjtu/internal/portal"
	"github.com/Undertone0809/ecjtu/internal/service"
	"github.com/Undertone0809/ecjtu/pkg/httpx"
)

// envelope is the uniform response body. Code mirrors the HTTP status so
// clients that only read bodies still see the outcome.
type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

func respondData(w http.ResponseWriter, data any) {
	httpx.WriteJSON(w, http.StatusOK, envelope{Code: http.StatusOK, Msg: "success", Data: data})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	httpx.WriteJSON(w, status, envelope{Code: status, Msg: msg})
}

// respondServiceError maps a failure from the token service or the portal to
// a status: authentication problems are the caller's (401), upstream and
// parse failures are the portal's (502), everything else is ours (500).
func respondServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		encErr    *portal.EncryptError
		svcErr    *portal.ServiceLoginError
		statusErr *portal.StatusError
		parseErr  *portal.ParseError
	)
	switch {
	case errors.Is(err, portal.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid student id or password")
	case errors.Is(err, portal.ErrSessionExpired), errors.Is(err, portal.ErrNoCredentials):
		respondError(w, http.StatusUnauthorized, "session expired, login again")
	case errors.Is(err, service.ErrTokenExpired):
		respondError(w, http.StatusUnauthorized, "access token expired, refresh required")
	case errors.Is(err, service.ErrTokenInvalid):
		respondError(w, http.StatusUnauthorized, "invalid access token")
	case errors.As(err, &encErr), errors.As(err, &svcErr),
		errors.As(err, &statusErr), errors.Is(err, portal.ErrLoginTicket):
		log.Warn("upstream portal failure", "err", err)
		respondError(w, http.StatusBadGateway, "upstream portal error")
	case errors.As(err, &parseErr):
		log.Warn("upstream response not understood", "err", err)
		respondError(w, http.StatusBadGateway, "upstream response not understood")
	default:
		log.Error("request failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
