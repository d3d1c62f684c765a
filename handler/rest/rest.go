package rest

import (
	"errors"
	"net/http"

	"bowerbird/core"
	"bowerbird/handler/render"
	"bowerbird/pkg/kv"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	store *kv.Store,
	btoken core.BTokenService,
	collaterals core.CollateralStore,
	events core.EventStore,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/token", tokenHandler(store, btoken))
	router.Get("/token/balances", balancesHandler(store, btoken))
	router.Get("/accounts/{account}", accountHandler(store, btoken, collaterals))
	router.Get("/collaterals/{asset}", collateralHandler(store, collaterals))
	router.Get("/events", eventsHandler(store, events))

	return router
}
