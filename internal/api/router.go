package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stacksmart/deal-stacking-service/internal/api/handlers"
	"github.com/stacksmart/deal-stacking-service/internal/stacking"
)

// NewRouter builds the HTTP router for the deal-stacking service.
func NewRouter(db *sql.DB, engine *stacking.Engine, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	dealHandler := handlers.NewDealHandler(db, engine, log)

	// Public deal endpoints
	r.Route("/deals", func(r chi.Router) {
		r.Post("/optimize", dealHandler.OptimizeDeals)
		r.Post("/validate", dealHandler.ValidateStack)
		r.Get("/offers", dealHandler.ListOffers)
	})

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Post("/offers", dealHandler.CreateOffer)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
