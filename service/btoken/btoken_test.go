package btoken

import (
	"context"
	"testing"

	"bowerbird/core"
	"bowerbird/pkg/kv"
	tokenservice "bowerbird/service/token"
	btokenstore "bowerbird/store/btoken"
	"bowerbird/store/event"
	"bowerbird/store/property"
	tokenstore "bowerbird/store/token"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClock struct {
	height uint64
}

func (c *stubClock) Height(ctx context.Context) (uint64, error) {
	return c.height, nil
}

func addr(b byte) core.Address {
	var a core.Address
	a[0] = b
	return a
}

func u(v string) *uint256.Int {
	x, err := uint256.FromDecimal(v)
	if err != nil {
		panic(err)
	}
	return x
}

type pool struct {
	store      *kv.Store
	tx         *kv.Tx
	clock      *stubClock
	usdl       tokenservice.Token
	btoken     core.BTokenService
	properties core.PropertyStore

	usdlAddr   core.Address
	btokenAddr core.Address
	nestAddr   core.Address
}

func setupPool(t *testing.T) *pool {
	t.Helper()

	store, err := kv.OpenMem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tx, err := store.Begin()
	require.NoError(t, err)
	t.Cleanup(tx.Discard)

	p := &pool{
		store:      store,
		tx:         tx,
		clock:      &stubClock{},
		properties: property.New(),
		usdlAddr:   addr(0x01),
		btokenAddr: addr(0x02),
		nestAddr:   addr(0x03),
	}

	registry := core.NewRegistry()
	events := event.New()

	p.usdl = tokenservice.New(p.usdlAddr, core.USDLSymbol, core.BTokenDecimals, tokenstore.New("usdl/"), events, registry)
	p.btoken = New(p.btokenAddr, btokenstore.New("busdl/"), p.properties, events, registry, p.clock)

	registry.AddToken(p.usdl)
	registry.AddToken(p.btoken)
	registry.AddReceiver(p.btokenAddr, p.btoken)

	ctx := context.Background()
	require.NoError(t, p.properties.SetAddress(ctx, tx, core.PropertyUnderlying, p.usdlAddr))
	require.NoError(t, p.properties.SetAddress(ctx, tx, core.PropertyNestContract, p.nestAddr))

	return p
}

func (p *pool) deposit(t *testing.T, account core.Address, quantity *uint256.Int) {
	t.Helper()

	ctx := core.WithWitness(context.Background(), account)
	ok, err := p.usdl.Transfer(ctx, p.tx, account, p.btokenAddr, quantity, &core.TransferData{Action: core.ActionDeposit})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPoolLifecycle(t *testing.T) {
	ctx := context.Background()
	p := setupPool(t)

	depositor := addr(0x10)
	borrower := addr(0x11)

	require.NoError(t, p.usdl.Mint(ctx, p.tx, depositor, u("100000000000")))

	// deposit 1000 USDL at the initial exchange rate
	p.deposit(t, depositor, u("100000000000"))

	balance, err := p.btoken.BalanceOf(ctx, p.tx, depositor)
	require.NoError(t, err)
	assert.Equal(t, "100000000000", balance.Dec())

	supply, err := p.btoken.TotalSupply(ctx, p.tx)
	require.NoError(t, err)
	assert.Equal(t, "100000000000", supply.Dec())

	underlying, err := p.btoken.UnderlyingSupply(ctx, p.tx)
	require.NoError(t, err)
	assert.Equal(t, "100000000000", underlying.Dec())

	rate, err := p.btoken.ExchangeRate(ctx, p.tx)
	require.NoError(t, err)
	assert.Equal(t, "100000000", rate.Dec())

	// one block later the vault lends 700 USDL out of the pool
	p.clock.height = 1
	nestCtx := core.WithWitness(ctx, p.nestAddr)
	require.NoError(t, p.btoken.Loan(nestCtx, p.tx, borrower, u("70000000000")))

	lent, err := p.usdl.BalanceOf(ctx, p.tx, borrower)
	require.NoError(t, err)
	assert.Equal(t, "70000000000", lent.Dec())

	underlying, err = p.btoken.UnderlyingSupply(ctx, p.tx)
	require.NoError(t, err)
	assert.Equal(t, "30000000000", underlying.Dec())

	owed, err := p.btoken.LoanedBalanceOf(ctx, p.tx, borrower)
	require.NoError(t, err)
	assert.Equal(t, "69999999999", owed.Dec())

	// 240 blocks of interest
	p.clock.height = 241

	multiplier, err := p.btoken.InterestMultiplier(ctx, p.tx)
	require.NoError(t, err)
	assert.Equal(t, "1000114630952318897", multiplier.Dec())

	owed, err = p.btoken.LoanedBalanceOf(ctx, p.tx, borrower)
	require.NoError(t, err)
	assert.Equal(t, "70007990867", owed.Dec())

	loaned, err := p.btoken.LoanedSupply(ctx, p.tx)
	require.NoError(t, err)
	assert.Equal(t, "70007990867", loaned.Dec())

	underlying, err = p.btoken.UnderlyingSupply(ctx, p.tx)
	require.NoError(t, err)
	assert.Equal(t, "30000000000", underlying.Dec())

	rate, err = p.btoken.ExchangeRate(ctx, p.tx)
	require.NoError(t, err)
	assert.Equal(t, "100007990", rate.Dec())

	// the borrower overpays; the surplus comes straight back
	require.NoError(t, p.usdl.Mint(ctx, p.tx, borrower, u("10000000000")))

	target := borrower
	repayCtx := core.WithWitness(ctx, borrower)
	ok, err := p.usdl.Transfer(repayCtx, p.tx, borrower, p.btokenAddr, u("80000000000"), &core.TransferData{
		Action: core.ActionRepayment,
		Target: target[:],
	})
	require.NoError(t, err)
	require.True(t, ok)

	owed, err = p.btoken.LoanedBalanceOf(ctx, p.tx, borrower)
	require.NoError(t, err)
	assert.True(t, owed.IsZero())

	underlying, err = p.btoken.UnderlyingSupply(ctx, p.tx)
	require.NoError(t, err)
	assert.Equal(t, "100007990867", underlying.Dec())

	refund, err := p.usdl.BalanceOf(ctx, p.tx, borrower)
	require.NoError(t, err)
	assert.Equal(t, "9992009133", refund.Dec())

	// all shares redeem back into the grown pool
	redeemCtx := core.WithWitness(ctx, depositor)
	ok, err = p.btoken.Transfer(redeemCtx, p.tx, depositor, p.btokenAddr, u("100000000000"), &core.TransferData{Action: core.ActionRedeem})
	require.NoError(t, err)
	require.True(t, ok)

	cash, err := p.usdl.BalanceOf(ctx, p.tx, depositor)
	require.NoError(t, err)
	assert.Equal(t, "100007990000", cash.Dec())

	supply, err = p.btoken.TotalSupply(ctx, p.tx)
	require.NoError(t, err)
	assert.True(t, supply.IsZero())
}

func TestLoanRequiresNest(t *testing.T) {
	ctx := context.Background()
	p := setupPool(t)

	borrower := addr(0x11)

	err := p.btoken.Loan(ctx, p.tx, borrower, u("100"))
	assert.Equal(t, core.ErrOperationForbidden, err)

	// witnessing some other account is not enough
	err = p.btoken.Loan(core.WithWitness(ctx, borrower), p.tx, borrower, u("100"))
	assert.Equal(t, core.ErrOperationForbidden, err)
}

func TestLoanInsufficientSupply(t *testing.T) {
	ctx := context.Background()
	p := setupPool(t)

	depositor := addr(0x10)
	borrower := addr(0x11)

	require.NoError(t, p.usdl.Mint(ctx, p.tx, depositor, u("1000")))
	p.deposit(t, depositor, u("1000"))

	nestCtx := core.WithWitness(ctx, p.nestAddr)
	err := p.btoken.Loan(nestCtx, p.tx, borrower, u("1001"))
	assert.Equal(t, core.ErrInsufficientSupply, err)
}

func TestRedeemInsufficientSupply(t *testing.T) {
	ctx := context.Background()
	p := setupPool(t)

	depositor := addr(0x10)
	borrower := addr(0x11)

	require.NoError(t, p.usdl.Mint(ctx, p.tx, depositor, u("1000")))
	p.deposit(t, depositor, u("1000"))

	nestCtx := core.WithWitness(ctx, p.nestAddr)
	require.NoError(t, p.btoken.Loan(nestCtx, p.tx, borrower, u("600")))

	// only 400 underlying remains in the pool
	redeemCtx := core.WithWitness(ctx, depositor)
	_, err := p.btoken.Transfer(redeemCtx, p.tx, depositor, p.btokenAddr, u("500"), &core.TransferData{Action: core.ActionRedeem})
	assert.Equal(t, core.ErrInsufficientSupply, err)
}

func TestTransferSemantics(t *testing.T) {
	ctx := context.Background()
	p := setupPool(t)

	depositor := addr(0x10)
	other := addr(0x12)

	require.NoError(t, p.usdl.Mint(ctx, p.tx, depositor, u("1000")))
	p.deposit(t, depositor, u("1000"))

	// missing witness fails soft
	ok, err := p.btoken.Transfer(ctx, p.tx, depositor, other, u("100"), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// insufficient balance fails soft
	witnessed := core.WithWitness(ctx, depositor)
	ok, err = p.btoken.Transfer(witnessed, p.tx, depositor, other, u("1001"), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// exact-balance transfer removes the ledger entry
	ok, err = p.btoken.Transfer(witnessed, p.tx, depositor, other, u("1000"), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	balance, err := p.btoken.BalanceOf(ctx, p.tx, depositor)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	balance, err = p.btoken.BalanceOf(ctx, p.tx, other)
	require.NoError(t, err)
	assert.Equal(t, "1000", balance.Dec())

	// self transfer moves nothing but still succeeds
	ok, err = p.btoken.Transfer(core.WithWitness(ctx, other), p.tx, other, other, u("1000"), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	balance, err = p.btoken.BalanceOf(ctx, p.tx, other)
	require.NoError(t, err)
	assert.Equal(t, "1000", balance.Dec())
}
