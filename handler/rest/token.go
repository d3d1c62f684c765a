package rest

import (
	"net/http"

	"bowerbird/core"
	"bowerbird/handler/param"
	"bowerbird/handler/render"
	"bowerbird/handler/views"
	"bowerbird/pkg/kv"
)

func tokenHandler(store *kv.Store, btoken core.BTokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		h := store.View()

		total, err := btoken.TotalSupply(ctx, h)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		underlying, err := btoken.UnderlyingSupply(ctx, h)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		loaned, err := btoken.LoanedSupply(ctx, h)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		rate, err := btoken.ExchangeRate(ctx, h)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		multiplier, err := btoken.InterestMultiplier(ctx, h)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		lastHeight, err := btoken.LastHeight(ctx, h)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, views.NewToken(
			btoken.Address(),
			btoken.Symbol(),
			btoken.Decimals(),
			total, underlying, loaned, rate, multiplier, lastHeight,
		))
	}
}

func balancesHandler(store *kv.Store, btoken core.BTokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Page int `json:"page"`
			Size int `json:"size"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Page <= 0 {
			params.Page = 1
		}
		if params.Size <= 0 {
			params.Size = 50
		}

		ctx := r.Context()
		balances, err := btoken.Balances(ctx, store.View(), params.Page-1, params.Size)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		balanceViews := make([]*views.Balance, 0, len(balances))
		for _, b := range balances {
			balanceViews = append(balanceViews, &views.Balance{
				Account: b.Account.String(),
				Balance: views.Quantity(b.Balance, btoken.Decimals()),
			})
		}

		render.JSON(w, balanceViews)
	}
}
