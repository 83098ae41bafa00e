package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"prepwise/internal/handlers"
)

func AuthRoutes(router *chi.Mux, authHandler *handlers.AuthHandler, requireSession, limit func(http.Handler) http.Handler) {
	router.Route("/api/auth", func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}
		r.Post("/sign-up", authHandler.SignUpHandler)
		r.Post("/sign-in", authHandler.SignInHandler)
		r.Post("/sign-out", authHandler.SignOutHandler)
		r.Post("/revoke", authHandler.RevokeHandler)
		r.With(requireSession).Get("/me", authHandler.MeHandler)
	})
}
