package core

import (
	"context"
	"time"

	"bowerbird/pkg/kv"
)

// Event names, matching the original contract notifications.
const (
	EventTransfer                  = "Transfer"
	EventCollateralDeposit         = "CollateralDeposit"
	EventCollateralWithdraw        = "CollateralWithdraw"
	EventCollateralWithdrawFailure = "CollateralWithdrawFailure"
	EventLoan                      = "Loan"
	EventLoanFailure               = "LoanFailure"
	EventLiquidate                 = "Liquidate"
	EventLiquidateFailure          = "LiquidateFailure"
	EventDeposit                   = "Deposit"
	EventDepositFailure            = "DepositFailure"
	EventRedeem                    = "Redeem"
	EventRedeemFailure             = "RedeemFailure"
	EventRepayment                 = "Repayment"
	EventRepaymentFailure          = "RepaymentFailure"
)

// Event is one entry of the append-only observable log. Data carries the
// typed payload flattened to a map; Contract is the emitting engine's
// address, since several engines share event names.
type Event struct {
	ID        uint64                 `json:"id"`
	Name      string                 `json:"name"`
	Contract  string                 `json:"contract"`
	CreatedAt time.Time              `json:"created_at"`
	Data      map[string]interface{} `json:"data"`
}

// EventStore appends to and reads the log. Appends participate in the
// operation's transaction: an aborted operation emits nothing.
type EventStore interface {
	Append(ctx context.Context, h kv.Handle, contract Address, name string, payload interface{}) error
	List(ctx context.Context, h kv.Handle, from uint64, limit int) ([]*Event, error)
}

// Event payloads. Quantities are decimal strings so the log marshals
// cleanly; failure payloads carry the human-readable diagnostic.
type (
	TransferEvent struct {
		From   string `structs:"from" json:"from"`
		To     string `structs:"to" json:"to"`
		Amount string `structs:"amount" json:"amount"`
	}

	CollateralDepositEvent struct {
		Account            string `structs:"account" json:"account"`
		CollateralSymbol   string `structs:"collateral_symbol" json:"collateral_symbol"`
		CollateralQuantity string `structs:"collateral_quantity" json:"collateral_quantity"`
	}

	CollateralWithdrawEvent struct {
		Account            string `structs:"account" json:"account"`
		CollateralSymbol   string `structs:"collateral_symbol" json:"collateral_symbol"`
		CollateralQuantity string `structs:"collateral_quantity" json:"collateral_quantity"`
		FailureReason      string `structs:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	}

	VaultLoanEvent struct {
		Account       string `structs:"account" json:"account"`
		LoanSymbol    string `structs:"loan_symbol" json:"loan_symbol"`
		LoanQuantity  string `structs:"loan_quantity" json:"loan_quantity"`
		FailureReason string `structs:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	}

	LiquidateEvent struct {
		Liquidator         string `structs:"liquidator" json:"liquidator"`
		Account            string `structs:"account" json:"account"`
		CollateralSymbol   string `structs:"collateral_symbol" json:"collateral_symbol"`
		USDLQuantity       string `structs:"usdl_quantity" json:"usdl_quantity"`
		CollateralQuantity string `structs:"collateral_quantity,omitempty" json:"collateral_quantity,omitempty"`
		FailureReason      string `structs:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	}

	PoolDepositEvent struct {
		Account            string `structs:"account" json:"account"`
		UnderlyingQuantity string `structs:"underlying_quantity" json:"underlying_quantity"`
		BAssetQuantity     string `structs:"b_asset_quantity" json:"b_asset_quantity"`
		FailureReason      string `structs:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	}

	PoolRedeemEvent struct {
		Account            string `structs:"account" json:"account"`
		UnderlyingQuantity string `structs:"underlying_quantity" json:"underlying_quantity"`
		BAssetQuantity     string `structs:"b_asset_quantity" json:"b_asset_quantity"`
		FailureReason      string `structs:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	}

	PoolLoanEvent struct {
		Account       string `structs:"account" json:"account"`
		LoanQuantity  string `structs:"loan_quantity" json:"loan_quantity"`
		FailureReason string `structs:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	}

	PoolRepaymentEvent struct {
		Account           string `structs:"account" json:"account"`
		RepaymentQuantity string `structs:"repayment_quantity" json:"repayment_quantity"`
		FailureReason     string `structs:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	}
)
