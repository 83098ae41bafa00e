package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"prepwise/internal/handlers"
	"prepwise/internal/middleware"
	"prepwise/internal/models"
)

// VapiRoutes mounts the call endpoints and the question generation callback.
// callLimit covers the browser-facing call endpoints. generateLimit runs after
// the callback body is validated so it can key on the request's user; pass nil
// for either to disable it.
func VapiRoutes(router *chi.Mux, vapiHandler *handlers.VapiHandler, generateHandler *handlers.GenerateHandler, callLimit, generateLimit func(http.Handler) http.Handler, callbackSecret string) {
	router.Route("/api/vapi", func(r chi.Router) {
		r.Group(func(calls chi.Router) {
			if callLimit != nil {
				calls.Use(callLimit)
			}
			calls.With(middleware.ValidateRequest[*models.CallRequest]()).Post("/create-call", vapiHandler.CreateCallHandler)
			calls.With(middleware.ValidateRequest[*models.CallRequest]()).Post("/start-call", vapiHandler.StartCallHandler)
		})

		callback := []func(http.Handler) http.Handler{
			middleware.VapiSecret(callbackSecret),
			middleware.ValidateRequest[*models.GenerateRequest](),
		}
		if generateLimit != nil {
			callback = append(callback, generateLimit)
		}
		r.With(callback...).Post("/generate", generateHandler.GenerateHandler)
		r.Get("/generate", generateHandler.HealthHandler)
	})
}
