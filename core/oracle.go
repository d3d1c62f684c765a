package core

import (
	"context"
	"encoding/json"
	"time"

	"bowerbird/pkg/kv"

	"github.com/holiman/uint256"
)

// Callback selectors routing an oracle response back to the operation
// that requested it.
const (
	CallbackLoan      = "loanCallback"
	CallbackWithdraw  = "withdrawCollateralCallback"
	CallbackLiquidate = "liquidateCallback"
)

// USDLSymbol is the stablecoin's price key in every oracle response.
const USDLSymbol = "USDL"

// DefaultOracleFee is the initial per-request fee, in the host fee
// asset's smallest unit.
const DefaultOracleFee = 10_000_000

// PriceMap is one oracle snapshot: token symbol to price at the 1e6
// price scale. Every callback decision uses exactly one snapshot.
type PriceMap map[string]*uint256.Int

// Price returns the price for symbol; missing symbols are a decode-level
// failure, handled as an oracle failure by callers.
func (m PriceMap) Price(symbol string) (*uint256.Int, bool) {
	p, ok := m[symbol]
	return p, ok
}

// OracleRequest is a pending two-phase operation. Payload is the opaque
// msgpack closure handed back, unmodified, to the callback.
type OracleRequest struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Callback  string    `json:"callback"`
	Payload   []byte    `json:"payload"`
	Fee       uint64    `json:"fee"`
	CreatedAt time.Time `json:"created_at"`
}

// OracleResponse is the delivered result. Code != 0 means the oracle
// invocation itself failed; Body is the raw JSON price object.
type OracleResponse struct {
	RequestID string `json:"request_id"`
	URL       string `json:"url"`
	Payload   []byte `json:"payload"`
	Code      int    `json:"code"`
	Body      []byte `json:"body"`
}

// OracleRequestStore persists pending requests until their callback
// lands.
type OracleRequestStore interface {
	Create(ctx context.Context, h kv.Handle, req *OracleRequest) error
	List(ctx context.Context, h kv.Handle, limit int) ([]*OracleRequest, error)
	Delete(ctx context.Context, h kv.Handle, id string) error
}

// OracleSigner is one registered oracle reporter key.
type OracleSigner struct {
	ID        string    `json:"id"`
	PublicKey []byte    `json:"public_key"`
	CreatedAt time.Time `json:"created_at"`
}

// OracleSignerStore keeps the BLS keys accepted as the oracle's witness.
type OracleSignerStore interface {
	Save(ctx context.Context, h kv.Handle, id string, publicKey []byte) error
	Delete(ctx context.Context, h kv.Handle, id string) error
	FindAll(ctx context.Context, h kv.Handle) ([]*OracleSigner, error)
}

// OracleService registers price requests for later asynchronous
// settlement.
type OracleService interface {
	Request(ctx context.Context, h kv.Handle, callback string, payload interface{}) (*OracleRequest, error)
}

// Oracle call payloads. Quantities travel as big-endian bytes so the
// closure round-trips exactly.
type (
	LoanCall struct {
		Account      []byte `msgpack:"account"`
		LoanToken    []byte `msgpack:"loan_token"`
		LoanQuantity []byte `msgpack:"loan_quantity"`
	}

	WithdrawCall struct {
		Account          []byte `msgpack:"account"`
		CollateralToken  []byte `msgpack:"collateral_token"`
		WithdrawQuantity []byte `msgpack:"withdraw_quantity"`
	}

	LiquidateCall struct {
		Liquidator      []byte `msgpack:"liquidator"`
		Account         []byte `msgpack:"account"`
		CollateralToken []byte `msgpack:"collateral_token"`
		USDLQuantity    []byte `msgpack:"usdl_quantity"`
	}
)

func (c *LoanCall) AccountAddress() (Address, error) {
	return NewAddress(c.Account)
}

func (c *LoanCall) LoanTokenAddress() (Address, error) {
	return NewAddress(c.LoanToken)
}

func (c *WithdrawCall) AccountAddress() (Address, error) {
	return NewAddress(c.Account)
}

func (c *WithdrawCall) CollateralTokenAddress() (Address, error) {
	return NewAddress(c.CollateralToken)
}

func (c *LiquidateCall) LiquidatorAddress() (Address, error) {
	return NewAddress(c.Liquidator)
}

func (c *LiquidateCall) AccountAddress() (Address, error) {
	return NewAddress(c.Account)
}

func (c *LiquidateCall) CollateralTokenAddress() (Address, error) {
	return NewAddress(c.CollateralToken)
}

// ParsePrices decodes a response body, a JSON object of symbol to integer
// price at the 1e6 scale.
func ParsePrices(body []byte) (PriceMap, error) {
	var raw map[string]json.Number
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrBadOracleResponse
	}

	prices := make(PriceMap, len(raw))
	for symbol, n := range raw {
		p, err := uint256.FromDecimal(n.String())
		if err != nil {
			return nil, ErrBadOracleResponse
		}
		prices[symbol] = p
	}

	return prices, nil
}

// QuantityBytes encodes q for a call payload.
func QuantityBytes(q *uint256.Int) []byte {
	return q.Bytes()
}

// QuantityFromBytes decodes a call payload quantity.
func QuantityFromBytes(b []byte) *uint256.Int {
	return new(uint256.Int).SetBytes(b)
}
