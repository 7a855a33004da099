package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AchilleasB/coiipa/training-service/internal/adapters/middleware"
)

const requestTimeout = 30 * time.Second

type RouterConfig struct {
	Logger         *zap.Logger
	Auth           *middleware.AuthMiddleware
	AllowedOrigins []string
	Members        *MemberHandler
	Courses        *CourseHandler
	Health         *HealthHandler
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	// Health endpoints (OpenShift compatible)
	r.Get("/health", cfg.Health.Health)
	r.Get("/health/ready", cfg.Health.Ready)
	r.Get("/health/live", cfg.Health.Live)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))
		cfg.Members.Routes(r, cfg.Auth)
		cfg.Courses.Routes(r, cfg.Auth)
	})
	return r
}
