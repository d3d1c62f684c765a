package core

import (
	"context"

	"bowerbird/pkg/kv"

	"github.com/holiman/uint256"
)

// Token is the conforming fungible token surface. Every implementation
// must fire a Transfer event on success (including zero-amount and
// self-transfers) and invoke the receiver's payment hook when the receiver
// is a contract; the hook failing unwinds the transfer with the rest of
// the operation.
type Token interface {
	Address() Address
	Symbol() string
	Decimals() int
	TotalSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error)
	BalanceOf(ctx context.Context, h kv.Handle, account Address) (*uint256.Int, error)
	// Transfer returns false, nil when the sender's balance or witness is
	// missing; a non-nil error is a fatal abort of the whole operation.
	Transfer(ctx context.Context, h kv.Handle, from, to Address, amount *uint256.Int, data *TransferData) (bool, error)
}

// PaymentReceiver is implemented by contracts that accept token payments.
type PaymentReceiver interface {
	OnTokenPayment(ctx context.Context, h kv.Handle, token Token, from Address, amount *uint256.Int, data *TransferData) error
}

// TokenRegistry resolves contract addresses to the ledgers and payment
// receivers hosted by this process.
type TokenRegistry interface {
	Token(addr Address) (Token, bool)
	Receiver(addr Address) (PaymentReceiver, bool)
}

// Registry is a static TokenRegistry.
type Registry struct {
	tokens    map[Address]Token
	receivers map[Address]PaymentReceiver
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tokens:    make(map[Address]Token),
		receivers: make(map[Address]PaymentReceiver),
	}
}

// AddToken registers a ledger under its contract address.
func (r *Registry) AddToken(t Token) {
	r.tokens[t.Address()] = t
}

// AddReceiver registers a payment hook under addr.
func (r *Registry) AddReceiver(addr Address, p PaymentReceiver) {
	r.receivers[addr] = p
}

func (r *Registry) Token(addr Address) (Token, bool) {
	t, ok := r.tokens[addr]
	return t, ok
}

func (r *Registry) Receiver(addr Address) (PaymentReceiver, bool) {
	p, ok := r.receivers[addr]
	return p, ok
}
