package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// NewRouter mounts the interaction endpoints under /api.
func NewRouter(h *Handler, logger zerolog.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(hlog.NewHandler(logger))
	router.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	router.Use(hlog.MethodHandler("method"))
	router.Use(hlog.URLHandler("url"))
	router.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	router.Use(middleware.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   []string{"*"},
		AllowedHeaders:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		Debug:            false,
	}).Handler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/log-interaction/form", h.LogFromForm)
		r.Post("/log-interaction/chat", h.LogFromChat)
		r.Put("/edit-interaction/{id}", h.EditInteraction)
		r.Get("/interactions", h.ListInteractions)
		r.Get("/interactions/{id}", h.GetInteraction)
		r.Post("/populate-form-from-chat", h.PopulateFormFromChat)
		r.Post("/update-from-chat", h.UpdateFromChat)
		r.Post("/extract-and-populate", h.ExtractAndPopulate)
	})

	return router
}
