package httpapi

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crewdesk-app/crewdesk/internal/common"
	"github.com/crewdesk-app/crewdesk/internal/logging"
	"github.com/crewdesk-app/crewdesk/internal/server/store"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(log logging.Logger, ds store.DataStore, cs ChatStore) *chi.Mux {
	if log == nil {
		log = logging.NopLogger{}
	}

	r := chi.NewRouter()

	// Metrics middleware first to capture all requests.
	r.Use(Metrics)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(log))
	r.Use(chimw.Recoverer)

	// Mobile clients call from app webviews and local dev hosts.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", common.AccessTokenHeaderName},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := NewHandler(ds, cs, log)

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireToken)

		r.Get("/schools", h.ListSchools)
		r.Get("/schools/{id}", h.GetSchool)
		r.Get("/schools/{id}/checklist", h.ListChecklist)
		r.Patch("/checklist/{id}", h.SetChecklistDone)

		r.Get("/shifts", h.ListShifts)
		r.Post("/shifts/{id}/clock-in", h.ClockIn)
		r.Post("/shifts/{id}/clock-out", h.ClockOut)

		r.Get("/timeoff", h.ListTimeOff)
		r.Post("/timeoff", h.CreateTimeOff)
		r.Post("/timeoff/{id}/cancel", h.CancelTimeOff)
		r.Post("/timeoff/{id}/approve", h.ApproveTimeOff)
		r.Post("/timeoff/{id}/deny", h.DenyTimeOff)
		r.Get("/pto/balance", h.PTOBalance)

		r.Route("/conversations/{id}", func(r chi.Router) {
			r.Post("/messages", h.PostMessage)
			r.Get("/messages", h.GetMessages)
			r.Get("/history", h.GetHistory)
			r.Post("/read", h.MarkRead)
		})
	})

	return r
}
