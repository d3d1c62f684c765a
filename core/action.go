package core

import (
	"encoding/base64"

	"github.com/fox-one/msgpack"
)

// Action tags carried in the data attribute of a token transfer. The
// receiving contract dispatches on the tag; an unrecognized tag or a
// mismatched sending token aborts the whole transfer.
const (
	// ActionCollateralize deposits the transferred asset into the vault.
	ActionCollateralize = "ACTION_COLLATERALIZE"
	// ActionLiquidate escrows the transferred stablecoin and opens a
	// liquidation against the target account.
	ActionLiquidate = "ACTION_LIQUIDATE"
	// ActionMint marks a mint delivery; the pool token swallows it.
	ActionMint = "ACTION_MINT"
	// ActionDeposit deposits the underlying asset into the pool token.
	ActionDeposit = "ACTION_DEPOSIT"
	// ActionRedeem burns the transferred pool tokens for underlying.
	ActionRedeem = "ACTION_REDEEM"
	// ActionRepayment repays the target account's loan.
	ActionRepayment = "ACTION_REPAYMENT"
)

// TransferData is the action payload of a token transfer. Target and
// Asset are only meaningful for the tags that use them: liquidation
// carries both, repayment carries Target.
type TransferData struct {
	Action string `msgpack:"a" json:"action"`
	Target []byte `msgpack:"t,omitempty" json:"target,omitempty"`
	Asset  []byte `msgpack:"s,omitempty" json:"asset,omitempty"`
}

// TargetAddress decodes the Target field.
func (d *TransferData) TargetAddress() (Address, error) {
	return NewAddress(d.Target)
}

// AssetAddress decodes the Asset field.
func (d *TransferData) AssetAddress() (Address, error) {
	return NewAddress(d.Asset)
}

// EncodeMemo packs the payload for a transfer memo.
func (d *TransferData) EncodeMemo() (string, error) {
	b, err := msgpack.Marshal(d)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeMemo unpacks a transfer memo into the action payload.
func DecodeMemo(memo string) (*TransferData, error) {
	b, err := base64.StdEncoding.DecodeString(memo)
	if err != nil {
		b = []byte(memo)
	}

	var data TransferData
	if err := msgpack.Unmarshal(b, &data); err != nil {
		return nil, err
	}

	return &data, nil
}
