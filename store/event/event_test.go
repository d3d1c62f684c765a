package event

import (
	"context"
	"testing"

	"bowerbird/core"
	"bowerbird/pkg/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(b byte) core.Address {
	var a core.Address
	a[0] = b
	return a
}

func openStore(t *testing.T) (core.EventStore, *kv.Tx) {
	t.Helper()

	db, err := kv.OpenMem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tx, err := db.Begin()
	require.NoError(t, err)
	t.Cleanup(tx.Discard)

	return New(), tx
}

func TestAppendAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	s, tx := openStore(t)

	contract := addr(0x01)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, tx, contract, core.EventTransfer, &core.TransferEvent{
			From:   addr(0x10).String(),
			To:     addr(0x11).String(),
			Amount: "100",
		}))
	}

	events, err := s.List(ctx, tx, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 5)

	for idx, event := range events {
		assert.Equal(t, uint64(idx+1), event.ID)
		assert.Equal(t, core.EventTransfer, event.Name)
		assert.Equal(t, contract.String(), event.Contract)
		assert.Equal(t, "100", event.Data["amount"])
	}
}

func TestListFromAndLimit(t *testing.T) {
	ctx := context.Background()
	s, tx := openStore(t)

	contract := addr(0x01)
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Append(ctx, tx, contract, core.EventDeposit, nil))
	}

	events, err := s.List(ctx, tx, 7, 100)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, uint64(7), events[0].ID)

	events, err = s.List(ctx, tx, 0, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestOmitEmptyFailureReason(t *testing.T) {
	ctx := context.Background()
	s, tx := openStore(t)

	require.NoError(t, s.Append(ctx, tx, addr(0x01), core.EventLoan, &core.VaultLoanEvent{
		Account:      addr(0x10).String(),
		LoanSymbol:   "USDL",
		LoanQuantity: "100",
	}))

	events, err := s.List(ctx, tx, 0, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)

	_, ok := events[0].Data["failure_reason"]
	assert.False(t, ok)
}

func TestCacheServesFullPages(t *testing.T) {
	ctx := context.Background()
	s, tx := openStore(t)

	contract := addr(0x01)
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Append(ctx, tx, contract, core.EventDeposit, nil))
	}

	cached := Cache(s)

	events, err := cached.List(ctx, tx, 0, 4)
	require.NoError(t, err)
	require.Len(t, events, 4)

	// a full page comes from the cache even after more events land
	require.NoError(t, s.Append(ctx, tx, contract, core.EventDeposit, nil))
	events, err = cached.List(ctx, tx, 0, 4)
	require.NoError(t, err)
	assert.Len(t, events, 4)

	// a short page is never cached and sees the new event
	events, err = cached.List(ctx, tx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}
