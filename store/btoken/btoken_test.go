package btoken

import (
	"context"
	"testing"

	"bowerbird/core"
	"bowerbird/pkg/kv"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(b byte) core.Address {
	var a core.Address
	a[0] = b
	return a
}

func openStore(t *testing.T) (core.BTokenStore, *kv.Tx) {
	t.Helper()

	db, err := kv.OpenMem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tx, err := db.Begin()
	require.NoError(t, err)
	t.Cleanup(tx.Discard)

	return New("busdl/"), tx
}

func TestQuantitySlots(t *testing.T) {
	ctx := context.Background()
	s, tx := openStore(t)

	// absent slots read as zero
	v, err := s.TotalSupply(ctx, tx)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	require.NoError(t, s.SetTotalSupply(ctx, tx, uint256.NewInt(42)))
	v, err = s.TotalSupply(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, "42", v.Dec())

	require.NoError(t, s.SetLastHeight(ctx, tx, 77))
	height, err := s.LastHeight(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), height)

	require.NoError(t, s.SetNumAccounts(ctx, tx, 3))
	n, err := s.NumAccounts(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestBalanceLifecycle(t *testing.T) {
	ctx := context.Background()
	s, tx := openStore(t)

	account := addr(0x10)

	balance, err := s.Balance(ctx, tx, account)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	require.NoError(t, s.SetBalance(ctx, tx, account, uint256.NewInt(100)))
	balance, err = s.Balance(ctx, tx, account)
	require.NoError(t, err)
	assert.Equal(t, "100", balance.Dec())

	require.NoError(t, s.DeleteBalance(ctx, tx, account))
	balance, err = s.Balance(ctx, tx, account)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestBalancesPagination(t *testing.T) {
	ctx := context.Background()
	s, tx := openStore(t)

	for i := byte(1); i <= 10; i++ {
		require.NoError(t, s.SetBalance(ctx, tx, addr(i), uint256.NewInt(uint64(i))))
	}
	// zero balances stay out of the listing
	require.NoError(t, s.SetBalance(ctx, tx, addr(11), uint256.NewInt(0)))

	page, err := s.Balances(ctx, tx, 0, 4)
	require.NoError(t, err)
	require.Len(t, page, 4)

	page, err = s.Balances(ctx, tx, 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 2)

	page, err = s.Balances(ctx, tx, 3, 4)
	require.NoError(t, err)
	assert.Len(t, page, 0)

	_, err = s.Balances(ctx, tx, 0, 0)
	assert.Equal(t, core.ErrInvalidArgument, err)

	_, err = s.Balances(ctx, tx, 0, 513)
	assert.Equal(t, core.ErrInvalidArgument, err)

	_, err = s.Balances(ctx, tx, -1, 4)
	assert.Equal(t, core.ErrInvalidArgument, err)
}

func TestLoanedBalances(t *testing.T) {
	ctx := context.Background()
	s, tx := openStore(t)

	account := addr(0x10)

	require.NoError(t, s.SetLoanedBalance(ctx, tx, account, uint256.NewInt(5000)))
	v, err := s.LoanedBalance(ctx, tx, account)
	require.NoError(t, err)
	assert.Equal(t, "5000", v.Dec())

	// loaned balances are independent of share balances
	balance, err := s.Balance(ctx, tx, account)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestPrefixIsolation(t *testing.T) {
	ctx := context.Background()

	db, err := kv.OpenMem()
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Discard()

	a := New("a/")
	b := New("b/")

	require.NoError(t, a.SetTotalSupply(ctx, tx, uint256.NewInt(1)))

	v, err := b.TotalSupply(ctx, tx)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}
