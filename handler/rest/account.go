package rest

import (
	"net/http"

	"bowerbird/core"
	"bowerbird/handler/param"
	"bowerbird/handler/render"
	"bowerbird/handler/views"
	"bowerbird/pkg/kv"
)

func accountHandler(store *kv.Store, btoken core.BTokenService, collaterals core.CollateralStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Account string `json:"account"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		account, err := core.AddressFromString(params.Account)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		ctx := r.Context()
		h := store.View()

		balance, err := btoken.BalanceOf(ctx, h, account)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		loaned, err := btoken.LoanedBalanceOf(ctx, h, account)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		positions, err := collaterals.Positions(ctx, h, account)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		collateralViews := make([]*views.Collateral, 0, len(positions))
		for _, p := range positions {
			if p.Quantity.IsZero() {
				continue
			}
			collateralViews = append(collateralViews, &views.Collateral{
				Asset:    p.Asset.String(),
				Quantity: views.Quantity(p.Quantity, btoken.Decimals()),
			})
		}

		render.JSON(w, &views.Account{
			Account:       account.String(),
			Balance:       views.Quantity(balance, btoken.Decimals()),
			LoanedBalance: views.Quantity(loaned, btoken.Decimals()),
			Collaterals:   collateralViews,
		})
	}
}

func collateralHandler(store *kv.Store, collaterals core.CollateralStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Asset string `json:"asset"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		asset, err := core.AddressFromString(params.Asset)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		ctx := r.Context()
		h := store.View()

		supported, err := collaterals.IsSupported(ctx, h, asset)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		ltv, err := collaterals.LoanToValue(ctx, h, asset)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		maxRatio, err := collaterals.MaxLiquidationRatio(ctx, h, asset)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		penalty, err := collaterals.LiquidationPenalty(ctx, h, asset)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		total, err := collaterals.TotalCollateral(ctx, h, asset)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, &views.CollateralAsset{
			Asset:               asset.String(),
			Supported:           supported,
			LoanToValue:         ltv,
			MaxLiquidationRatio: maxRatio,
			LiquidationPenalty:  penalty,
			TotalCollateral:     views.Quantity(total, core.BTokenDecimals),
		})
	}
}
