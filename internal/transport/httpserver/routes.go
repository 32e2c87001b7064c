package httpserver

import (
	"net/http"
	"time"

	"equb-app-go/internal/config"
	"equb-app-go/internal/metrics"
	"equb-app-go/internal/transport/httpserver/handler"
	authmw "equb-app-go/internal/transport/httpserver/middleware"
	"equb-app-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the admin API. A nil metrics disables instrumentation
// and the /metrics endpoint.
func NewRouter(cfg config.Config, handlers *handler.Handlers, m *metrics.Metrics, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(authmw.NewCORS(cfg.AllowedOrigins))

	if m != nil && cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		auth := authmw.NewJWTAuth(cfg.Auth, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Common.Me)

			r.Post("/equbs", handlers.Equbs.CreateEqub)
			r.Get("/equbs", handlers.Equbs.ListEqubs)
			r.Get("/equbs/{id}", handlers.Equbs.GetEqub)
			r.Patch("/equbs/{id}", handlers.Equbs.UpdateEqub)
			r.Delete("/equbs/{id}", handlers.Equbs.DeleteEqub)
			r.Post("/equbs/{id}/periods/regenerate", handlers.Equbs.RegeneratePeriods)
			r.Post("/equbs/{id}/reset-payouts", handlers.Members.ResetPayouts)
			r.Get("/equbs/{id}/eligible-winners", handlers.Members.EligibleWinners)

			r.Post("/people", handlers.Members.CreatePerson)
			r.Get("/people", handlers.Members.ListPeople)

			r.Post("/members", handlers.Members.CreateMember)
			r.Get("/members", handlers.Members.ListMembers)
			r.Get("/members/{id}", handlers.Members.GetMember)
			r.Patch("/members/{id}", handlers.Members.UpdateMember)
			r.Delete("/members/{id}", handlers.Members.RemoveMember)

			r.Post("/attendance", handlers.Attendance.RecordAttendance)
			r.Get("/attendance", handlers.Attendance.ListAttendance)
			r.Get("/attendance/{id}", handlers.Attendance.GetAttendance)
			r.Delete("/attendance/{id}", handlers.Attendance.DeleteAttendance)

			r.Post("/payouts/random", handlers.Payouts.SelectRandomWinner)
			r.Post("/payouts/manual", handlers.Payouts.RecordManualWinner)
			r.Get("/payouts", handlers.Payouts.ListPayouts)
			r.Get("/payouts/{id}", handlers.Payouts.GetPayout)

			r.Get("/reporting/dashboard", handlers.Reporting.Dashboard)
			r.Get("/reporting/equbs/{id}", handlers.Reporting.EqubStats)
			r.Get("/reporting/members/{id}", handlers.Reporting.MemberStats)
			r.Get("/reporting/transactions", handlers.Reporting.Transactions)
		})
	})

	return r
}
