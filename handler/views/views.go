package views

import (
	"bowerbird/core"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Token pool token view
type Token struct {
	Address            string          `json:"address"`
	Symbol             string          `json:"symbol"`
	Decimals           int             `json:"decimals"`
	TotalSupply        decimal.Decimal `json:"total_supply"`
	UnderlyingSupply   decimal.Decimal `json:"underlying_supply"`
	LoanedSupply       decimal.Decimal `json:"loaned_supply"`
	ExchangeRate       decimal.Decimal `json:"exchange_rate"`
	InterestMultiplier string          `json:"interest_multiplier"`
	LastHeight         uint64          `json:"last_height"`
}

// Balance one holder's share balance
type Balance struct {
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// Account one account's pool and vault standing
type Account struct {
	Account       string          `json:"account"`
	Balance       decimal.Decimal `json:"balance"`
	LoanedBalance decimal.Decimal `json:"loaned_balance"`
	Collaterals   []*Collateral   `json:"collaterals"`
}

// Collateral one deposited position
type Collateral struct {
	Asset    string          `json:"asset"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CollateralAsset one registered collateral with its risk parameters
type CollateralAsset struct {
	Asset               string          `json:"asset"`
	Supported           bool            `json:"supported"`
	LoanToValue         uint64          `json:"loan_to_value"`
	MaxLiquidationRatio uint64          `json:"max_liquidation_ratio"`
	LiquidationPenalty  uint64          `json:"liquidation_penalty"`
	TotalCollateral     decimal.Decimal `json:"total_collateral"`
}

// Quantity renders an integer ledger quantity at the token scale.
func Quantity(v *uint256.Int, decimals int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v.ToBig(), -int32(decimals))
}

// Rate renders an exchange rate at its 1e8 scale.
func Rate(v *uint256.Int) decimal.Decimal {
	return Quantity(v, 8)
}

// NewToken builds the pool token view from raw ledger values.
func NewToken(address core.Address, symbol string, decimals int, total, underlying, loaned, rate, multiplier *uint256.Int, lastHeight uint64) *Token {
	return &Token{
		Address:            address.String(),
		Symbol:             symbol,
		Decimals:           decimals,
		TotalSupply:        Quantity(total, decimals),
		UnderlyingSupply:   Quantity(underlying, decimals),
		LoanedSupply:       Quantity(loaned, decimals),
		ExchangeRate:       Rate(rate),
		InterestMultiplier: multiplier.Dec(),
		LastHeight:         lastHeight,
	}
}
