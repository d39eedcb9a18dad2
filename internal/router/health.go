package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func HealthRoutes() *chi.Mux {
	router := chi.NewRouter()
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK, envelope{"message": "ok"})
	})
	return router
}
