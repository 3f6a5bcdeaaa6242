package wire

import (
	"user-activation/internal/adaptor"
	"user-activation/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler, log *zap.Logger) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/register", userHandler.Register)

		// Basic credentials carry the email and password being activated
		r.With(middleware.BasicCredentials(log)).Post("/activate", userHandler.Activate)
	})
}
