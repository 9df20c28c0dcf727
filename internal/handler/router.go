package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/bankop-client/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware песочницы.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/wallets", h.GetWallets)
		r.Patch("/wallets/convert", h.Convert)
		r.Post("/wallets/transfer", h.Transfer)

		r.Get("/transactions", h.GetTransactions)

		r.Get("/users/profile", h.GetProfile)
		r.Post("/users/profile", h.CreateProfile)
		r.Put("/users/profile", h.UpdateProfile)
		r.Delete("/users/profile", h.DeleteProfile)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.fail(w, r, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.fail(w, r, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
