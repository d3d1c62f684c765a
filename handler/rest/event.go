package rest

import (
	"net/http"

	"bowerbird/core"
	"bowerbird/handler/param"
	"bowerbird/handler/render"
	"bowerbird/pkg/kv"
)

func eventsHandler(store *kv.Store, events core.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			From  uint64 `json:"from"`
			Limit int    `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Limit <= 0 || params.Limit > 500 {
			params.Limit = 100
		}

		list, err := events.List(r.Context(), store.View(), params.From, params.Limit)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, list)
	}
}
