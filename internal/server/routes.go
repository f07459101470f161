package server

import (
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shotlens/shotlens/internal/config"
	"github.com/shotlens/shotlens/internal/observability"
	"github.com/shotlens/shotlens/internal/server/handlers"
)

// AdminTokenEnv enables POST /admin/signal when set.
const AdminTokenEnv = config.EnvPrefix + "_ADMIN_TOKEN"

func (s *Server) registerRoutes() {
	s.router.Get("/health", s.health.HealthHandler)
	s.router.Get("/health/live", s.health.LivenessHandler)
	s.router.Get("/health/ready", s.health.ReadinessHandler)
	s.router.Get("/health/startup", s.health.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", MetricsHandler)

	if s.opts.API != nil {
		h := handlers.NewDribbbleHandler(s.opts.API, s.opts.Quota)
		s.router.Route("/v1", func(r chi.Router) {
			r.Get("/quota", h.Quota)
			r.Get("/lists/{list}", h.ShotList)

			r.Route("/shots/{id}", func(r chi.Router) {
				r.Get("/", h.Shot)
				r.Get("/rebounds", h.ShotRebounds)
				r.Get("/comments", h.ShotComments)
			})

			r.Route("/players/{player}", func(r chi.Router) {
				r.Get("/", h.Player)
				r.Get("/shots", h.PlayerShots)
				r.Get("/shots/following", h.PlayerFollowingShots)
				r.Get("/shots/likes", h.PlayerLikes)
				r.Get("/followers", h.PlayerFollowers)
				r.Get("/following", h.PlayerFollowing)
				r.Get("/draftees", h.PlayerDraftees)
			})
		})
	}

	s.registerAdminEndpoint()
}

// registerAdminEndpoint exposes gofulmen signal handling (reload, shutdown)
// behind a bearer token.
func (s *Server) registerAdminEndpoint() {
	adminToken := os.Getenv(AdminTokenEnv)
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no " + AdminTokenEnv + " set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
	}
}
