package core

import (
	"context"

	"bowerbird/pkg/kv"
)

// Property keys. These mirror the one-byte storage slots the engines use
// for their wiring: which token is which, who owns what.
const (
	PropertyOwner         = "owner"
	PropertyUSDLToken     = "usdl"
	PropertyBUSDLToken    = "busdl"
	PropertyBNEOToken     = "bneo"
	PropertyNestContract  = "nest"
	PropertyOracle        = "oracle"
	PropertyOracleFee     = "of"
	PropertyUnderlying    = "uh"
	PropertyGenesisHeight = "gh"
)

// PropertyStore keeps small contract-level settings.
type PropertyStore interface {
	Get(ctx context.Context, h kv.Handle, key string) ([]byte, error)
	Set(ctx context.Context, h kv.Handle, key string, value []byte) error

	GetAddress(ctx context.Context, h kv.Handle, key string) (Address, error)
	SetAddress(ctx context.Context, h kv.Handle, key string, addr Address) error

	GetUint64(ctx context.Context, h kv.Handle, key string) (uint64, error)
	SetUint64(ctx context.Context, h kv.Handle, key string, v uint64) error
}
