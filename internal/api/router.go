package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/bktutor/session-portal/internal/auth"
	"github.com/bktutor/session-portal/internal/scheduling"
)

type RouterConfig struct {
	Service      *scheduling.Service
	Tokens       *auth.TokenManager
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Env          string
	Version      string
	RateLimitRPS float64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(AuthMiddleware(cfg.Tokens))
	r.Use(RateLimitMiddleware(cfg.RateLimitRPS))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Appointment endpoints
	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", listAppointmentsHandler(cfg.Service))

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(string(scheduling.RoleTutor)))
			r.Post("/", createAppointmentHandler(cfg.Service))
			r.Put("/{id}", rescheduleAppointmentHandler(cfg.Service))
			r.Delete("/{id}", cancelAppointmentHandler(cfg.Service))
			r.Post("/{id}/minutes", saveMinutesHandler(cfg.Service))
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(string(scheduling.RoleStudent)))
			r.Post("/{id}/book", bookAppointmentHandler(cfg.Service))
			r.Delete("/{id}/book", cancelBookingHandler(cfg.Service))
		})
	})

	// Notification and profile endpoints
	r.Route("/info", func(r chi.Router) {
		r.Use(RequireRole(""))
		r.Get("/notifications/my", myNotificationsHandler(cfg.Service))
		r.Post("/notifications/{id}/read", markNotificationReadHandler(cfg.Service))
		r.Patch("/users/{id}", updateProfileHandler(cfg.Service))
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireRole(""))
		r.Get("/auth/profile", profileHandler(cfg.Service))
		r.Post("/library/upload", uploadResourceHandler(cfg.Service))
	})

	return r
}
