package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"prepwise/internal/handlers"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, requireSession func(http.Handler) http.Handler) {
	router.Route("/api/interviews", func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/", interviewHandler.ListHandler)
		r.Get("/{id}", interviewHandler.GetHandler)
	})
}
