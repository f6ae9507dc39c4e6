package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Undertone0809/ecjtu/internal/service"
	"github.com/Undertone0809/ecjtu/internal/store"
	"github.com/Undertone0809/ecjtu/pkg/httpx"
	"github.com/Undertone0809/ecjtu/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	TokenService *service.TokenService
	OpenPortal   PortalOpener
	Cache        *ResponseCache
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerResources()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP (upstream credential attempts)
	loginHandler := &LoginHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - strict rate limit by IP (also hits the upstream)
	refreshHandler := &RefreshHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerResources() {
	h := &ResourceHandler{
		OpenPortal: r.OpenPortal,
		Cache:      r.Cache,
	}

	// All resource routes share the same protection: token resolution then
	// a lenient per-student rate limit.
	secured := func(hf http.HandlerFunc) http.Handler {
		return httpx.Chain(hf,
			r.authn,
			httpx.RateLimitByStudent(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /v1/gpa", secured(h.HandleGPA))
	r.Mux.Handle("GET /v1/schedule", secured(h.HandleScheduleToday))
	r.Mux.Handle("GET /v1/schedule/week", secured(h.HandleScheduleWeek))
	r.Mux.Handle("GET /v1/schedule/{date}", secured(h.HandleScheduleDate))
	r.Mux.Handle("GET /v1/scores", secured(h.HandleScores))
	r.Mux.Handle("GET /v1/scores/{semester}", secured(h.HandleScoresSemester))
	r.Mux.Handle("GET /v1/electives", secured(h.HandleElectives))
	r.Mux.Handle("GET /v1/electives/{semester}", secured(h.HandleElectivesSemester))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
