package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoRoundTrip(t *testing.T) {
	target := Address{0x10}
	asset := Address{0x01}

	data := &TransferData{
		Action: ActionLiquidate,
		Target: target[:],
		Asset:  asset[:],
	}

	memo, err := data.EncodeMemo()
	require.NoError(t, err)

	decoded, err := DecodeMemo(memo)
	require.NoError(t, err)
	assert.Equal(t, ActionLiquidate, decoded.Action)

	gotTarget, err := decoded.TargetAddress()
	require.NoError(t, err)
	assert.Equal(t, target, gotTarget)

	gotAsset, err := decoded.AssetAddress()
	require.NoError(t, err)
	assert.Equal(t, asset, gotAsset)
}

func TestMemoOmitsEmptyFields(t *testing.T) {
	data := &TransferData{Action: ActionDeposit}

	memo, err := data.EncodeMemo()
	require.NoError(t, err)

	decoded, err := DecodeMemo(memo)
	require.NoError(t, err)
	assert.Equal(t, ActionDeposit, decoded.Action)
	assert.Nil(t, decoded.Target)

	_, err = decoded.TargetAddress()
	assert.Equal(t, ErrInvalidAddress, err)
}

func TestDecodeMemoRejectsGarbage(t *testing.T) {
	_, err := DecodeMemo("not a memo !!")
	assert.Error(t, err)
}
