package btoken

import (
	"context"
	"fmt"

	"bowerbird/core"
	"bowerbird/internal/bowerbird"
	"bowerbird/pkg/fixpoint"
	"bowerbird/pkg/kv"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

type service struct {
	address    core.Address
	store      core.BTokenStore
	properties core.PropertyStore
	events     core.EventStore
	registry   core.TokenRegistry
	clock      core.BlockClock
}

// New new pool token engine. The engine is itself a conforming fungible
// token: pool shares circulate like any other asset.
func New(
	address core.Address,
	store core.BTokenStore,
	properties core.PropertyStore,
	events core.EventStore,
	registry core.TokenRegistry,
	clock core.BlockClock,
) core.BTokenService {
	return &service{
		address:    address,
		store:      store,
		properties: properties,
		events:     events,
		registry:   registry,
		clock:      clock,
	}
}

func (s *service) Address() core.Address {
	return s.address
}

func (s *service) Symbol() string {
	return core.BTokenSymbol
}

func (s *service) Decimals() int {
	return core.BTokenDecimals
}

func (s *service) TotalSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	return s.store.TotalSupply(ctx, h)
}

func (s *service) BalanceOf(ctx context.Context, h kv.Handle, account core.Address) (*uint256.Int, error) {
	if !core.ValidateAddress(account) {
		return nil, core.ErrInvalidArgument
	}

	return s.store.Balance(ctx, h, account)
}

func (s *service) Balances(ctx context.Context, h kv.Handle, pageNum, pageSize int) ([]*core.AccountBalance, error) {
	return s.store.Balances(ctx, h, pageNum, pageSize)
}

func (s *service) LastHeight(ctx context.Context, h kv.Handle) (uint64, error) {
	return s.store.LastHeight(ctx, h)
}

func (s *service) UnderlyingAddress(ctx context.Context, h kv.Handle) (core.Address, error) {
	return s.properties.GetAddress(ctx, h, core.PropertyUnderlying)
}

func (s *service) underlying(ctx context.Context, h kv.Handle) (core.Token, error) {
	addr, err := s.UnderlyingAddress(ctx, h)
	if err != nil {
		return nil, err
	}

	t, ok := s.registry.Token(addr)
	if !ok {
		return nil, fmt.Errorf("btoken: underlying ledger %s not registered", addr)
	}

	return t, nil
}

// callByNest reports whether the vault vouches for this call.
func (s *service) callByNest(ctx context.Context, h kv.Handle) (bool, error) {
	nest, err := s.properties.GetAddress(ctx, h, core.PropertyNestContract)
	if err != nil {
		return false, err
	}

	return !nest.IsZero() && core.CheckWitness(ctx, nest), nil
}

// storedMultiplier reads the persisted multiplier, defaulting to the
// initial value before the first accrual.
func (s *service) storedMultiplier(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	m, err := s.store.InterestMultiplier(ctx, h)
	if err != nil {
		return nil, err
	}

	if m.IsZero() {
		return bowerbird.InitialInterestMultiplier.Clone(), nil
	}

	return m, nil
}

// InterestMultiplier projects the stored multiplier to the current height
// without persisting the accrual.
func (s *service) InterestMultiplier(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	stored, err := s.storedMultiplier(ctx, h)
	if err != nil {
		return nil, err
	}

	last, err := s.store.LastHeight(ctx, h)
	if err != nil {
		return nil, err
	}

	height, err := s.clock.Height(ctx)
	if err != nil {
		return nil, err
	}

	return bowerbird.CompoundMultiplier(stored, height-last, core.AnnualRateBps), nil
}

// accrueInterest compounds the stored multiplier over the blocks elapsed
// since the last accrual. Runs on every supply-changing operation.
func (s *service) accrueInterest(ctx context.Context, h kv.Handle) error {
	stored, err := s.storedMultiplier(ctx, h)
	if err != nil {
		return err
	}

	last, err := s.store.LastHeight(ctx, h)
	if err != nil {
		return err
	}

	height, err := s.clock.Height(ctx)
	if err != nil {
		return err
	}

	next := bowerbird.CompoundMultiplier(stored, height-last, core.AnnualRateBps)
	if err := s.store.SetInterestMultiplier(ctx, h, next); err != nil {
		return err
	}

	return s.store.SetLastHeight(ctx, h, height)
}

func (s *service) scaled(ctx context.Context, h kv.Handle, unscaled *uint256.Int) (*uint256.Int, error) {
	m, err := s.InterestMultiplier(ctx, h)
	if err != nil {
		return nil, err
	}

	return bowerbird.ScaledQuantity(unscaled, m), nil
}

func (s *service) unscaled(ctx context.Context, h kv.Handle, scaled *uint256.Int) (*uint256.Int, error) {
	m, err := s.InterestMultiplier(ctx, h)
	if err != nil {
		return nil, err
	}

	return bowerbird.UnscaledQuantity(scaled, m), nil
}

func (s *service) LoanedBalanceOf(ctx context.Context, h kv.Handle, account core.Address) (*uint256.Int, error) {
	if !core.ValidateAddress(account) {
		return nil, core.ErrInvalidArgument
	}

	unscaled, err := s.store.LoanedBalance(ctx, h, account)
	if err != nil {
		return nil, err
	}

	return s.scaled(ctx, h, unscaled)
}

func (s *service) LoanedSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	unscaled, err := s.store.LoanedSupply(ctx, h)
	if err != nil {
		return nil, err
	}

	return s.scaled(ctx, h, unscaled)
}

func (s *service) UnderlyingSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	return s.store.UnderlyingSupply(ctx, h)
}

// ExchangeRate derives the share/underlying rate from the live pool
// composition; it is never stored.
func (s *service) ExchangeRate(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	supply, err := s.store.TotalSupply(ctx, h)
	if err != nil {
		return nil, err
	}

	underlying, err := s.store.UnderlyingSupply(ctx, h)
	if err != nil {
		return nil, err
	}

	loaned, err := s.LoanedSupply(ctx, h)
	if err != nil {
		return nil, err
	}

	return bowerbird.ExchangeRate(supply, underlying, loaned), nil
}

// Transfer moves pool shares, with the account counter tracking ledger
// entries appearing and disappearing.
func (s *service) Transfer(ctx context.Context, h kv.Handle, from, to core.Address, amount *uint256.Int, data *core.TransferData) (bool, error) {
	if !core.ValidateAddress(from) || !core.ValidateAddress(to) {
		return false, core.ErrInvalidArgument
	}

	fromBalance, err := s.store.Balance(ctx, h, from)
	if err != nil {
		return false, err
	}

	if fromBalance.Lt(amount) {
		return false, nil
	}

	if !core.CheckWitness(ctx, from) {
		return false, nil
	}

	var diffAccounts int64

	if from != to && !amount.IsZero() {
		if fromBalance.Eq(amount) {
			if err := s.store.DeleteBalance(ctx, h, from); err != nil {
				return false, err
			}
			diffAccounts--
		} else {
			remaining, _ := fixpoint.Sub(fromBalance, amount)
			if err := s.store.SetBalance(ctx, h, from, remaining); err != nil {
				return false, err
			}
		}

		toBalance, err := s.store.Balance(ctx, h, to)
		if err != nil {
			return false, err
		}

		if err := s.store.SetBalance(ctx, h, to, fixpoint.Add(toBalance, amount)); err != nil {
			return false, err
		}
		if toBalance.IsZero() {
			diffAccounts++
		}
	}

	if err := s.events.Append(ctx, h, s.address, core.EventTransfer, &core.TransferEvent{
		From:   from.String(),
		To:     to.String(),
		Amount: amount.Dec(),
	}); err != nil {
		return false, err
	}

	if err := s.postTransfer(ctx, h, from, to, amount, data); err != nil {
		return false, err
	}

	n, err := s.store.NumAccounts(ctx, h)
	if err != nil {
		return false, err
	}
	if err := s.store.SetNumAccounts(ctx, h, n+diffAccounts); err != nil {
		return false, err
	}

	return true, nil
}

func (s *service) postTransfer(ctx context.Context, h kv.Handle, from, to core.Address, amount *uint256.Int, data *core.TransferData) error {
	receiver, ok := s.registry.Receiver(to)
	if !ok {
		return nil
	}

	if err := receiver.OnTokenPayment(ctx, h, s, from, amount, data); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("btoken: payment hook rejected transfer")
		return err
	}

	return nil
}

// mint issues new shares to account. The account counter is deliberately
// left alone here; only Transfer maintains it.
func (s *service) mint(ctx context.Context, h kv.Handle, account core.Address, amount *uint256.Int) error {
	if !core.ValidateAddress(account) {
		return core.ErrInvalidArgument
	}

	if amount.IsZero() {
		return nil
	}

	supply, err := s.store.TotalSupply(ctx, h)
	if err != nil {
		return err
	}
	minted, err := s.store.TotalMinted(ctx, h)
	if err != nil {
		return err
	}
	balance, err := s.store.Balance(ctx, h, account)
	if err != nil {
		return err
	}

	if err := s.store.SetTotalSupply(ctx, h, fixpoint.Add(supply, amount)); err != nil {
		return err
	}
	if err := s.store.SetTotalMinted(ctx, h, fixpoint.Add(minted, amount)); err != nil {
		return err
	}
	if err := s.store.SetBalance(ctx, h, account, fixpoint.Add(balance, amount)); err != nil {
		return err
	}

	if err := s.events.Append(ctx, h, s.address, core.EventTransfer, &core.TransferEvent{
		From:   core.Address{}.String(),
		To:     account.String(),
		Amount: amount.Dec(),
	}); err != nil {
		return err
	}

	return s.postTransfer(ctx, h, core.Address{}, account, amount, &core.TransferData{Action: core.ActionMint})
}

// burn retires shares held by account. Anyone may burn their own shares;
// the vault may burn on behalf of the pool.
func (s *service) burn(ctx context.Context, h kv.Handle, account core.Address, amount *uint256.Int) error {
	if !core.ValidateAddress(account) {
		return core.ErrInvalidArgument
	}

	byNest, err := s.callByNest(ctx, h)
	if err != nil {
		return err
	}
	if !byNest && !core.CheckWitness(ctx, account) {
		return core.ErrOperationForbidden
	}

	if amount.IsZero() {
		return nil
	}

	supply, err := s.store.TotalSupply(ctx, h)
	if err != nil {
		return err
	}
	burned, err := s.store.TotalBurned(ctx, h)
	if err != nil {
		return err
	}
	balance, err := s.store.Balance(ctx, h, account)
	if err != nil {
		return err
	}

	newSupply, ok := fixpoint.Sub(supply, amount)
	if !ok {
		return core.ErrInvalidArgument
	}
	newBalance, ok := fixpoint.Sub(balance, amount)
	if !ok {
		return core.ErrInvalidArgument
	}

	if err := s.store.SetTotalSupply(ctx, h, newSupply); err != nil {
		return err
	}
	if err := s.store.SetTotalBurned(ctx, h, fixpoint.Add(burned, amount)); err != nil {
		return err
	}
	if err := s.store.SetBalance(ctx, h, account, newBalance); err != nil {
		return err
	}

	return s.events.Append(ctx, h, s.address, core.EventTransfer, &core.TransferEvent{
		From:   core.Address{}.String(),
		To:     account.String(),
		Amount: amount.Dec(),
	})
}

// deposit converts underlying already received into freshly minted shares
// at the pre-deposit exchange rate.
func (s *service) deposit(ctx context.Context, h kv.Handle, account core.Address, quantity *uint256.Int) error {
	if !core.ValidateAddress(account) {
		return core.ErrInvalidArgument
	}

	rate, err := s.ExchangeRate(ctx, h)
	if err != nil {
		return err
	}
	mintQuantity := bowerbird.MintQuantity(quantity, rate)

	if !quantity.IsZero() {
		underlying, err := s.store.UnderlyingSupply(ctx, h)
		if err != nil {
			return err
		}
		if err := s.store.SetUnderlyingSupply(ctx, h, fixpoint.Add(underlying, quantity)); err != nil {
			return err
		}

		if err := s.accrueInterest(ctx, h); err != nil {
			return err
		}

		if err := s.mint(ctx, h, s.address, mintQuantity); err != nil {
			return err
		}

		ctx := core.WithWitness(ctx, s.address)
		ok, err := s.Transfer(ctx, h, s.address, account, mintQuantity, nil)
		if err != nil {
			return err
		}
		if !ok {
			if err := s.events.Append(ctx, h, s.address, core.EventDepositFailure, &core.PoolDepositEvent{
				Account:            account.String(),
				UnderlyingQuantity: quantity.Dec(),
				BAssetQuantity:     mintQuantity.Dec(),
				FailureReason:      "failed to transfer " + core.BTokenSymbol + " to depositor",
			}); err != nil {
				return err
			}
			return core.ErrTransferFailed
		}
	}

	return s.events.Append(ctx, h, s.address, core.EventDeposit, &core.PoolDepositEvent{
		Account:            account.String(),
		UnderlyingQuantity: quantity.Dec(),
		BAssetQuantity:     mintQuantity.Dec(),
	})
}

// redeem burns shares already received back into underlying at the
// current exchange rate.
func (s *service) redeem(ctx context.Context, h kv.Handle, account core.Address, quantity *uint256.Int) error {
	if !core.ValidateAddress(account) {
		return core.ErrInvalidArgument
	}

	rate, err := s.ExchangeRate(ctx, h)
	if err != nil {
		return err
	}
	redeemQuantity := bowerbird.RedeemQuantity(quantity, rate)

	if !quantity.IsZero() {
		underlying, err := s.store.UnderlyingSupply(ctx, h)
		if err != nil {
			return err
		}

		remaining, ok := fixpoint.Sub(underlying, redeemQuantity)
		if !ok {
			if err := s.events.Append(ctx, h, s.address, core.EventRedeemFailure, &core.PoolRedeemEvent{
				Account:            account.String(),
				UnderlyingQuantity: redeemQuantity.Dec(),
				BAssetQuantity:     quantity.Dec(),
				FailureReason:      fmt.Sprintf("failed to redeem because supply=%s < underlying redeem quantity=%s", underlying.Dec(), redeemQuantity.Dec()),
			}); err != nil {
				return err
			}
			return core.ErrInsufficientSupply
		}

		if err := s.store.SetUnderlyingSupply(ctx, h, remaining); err != nil {
			return err
		}

		if err := s.accrueInterest(ctx, h); err != nil {
			return err
		}

		ctx := core.WithWitness(ctx, s.address)
		if err := s.burn(ctx, h, s.address, quantity); err != nil {
			return err
		}

		underlyingToken, err := s.underlying(ctx, h)
		if err != nil {
			return err
		}

		ok, err = underlyingToken.Transfer(ctx, h, s.address, account, redeemQuantity, nil)
		if err != nil {
			return err
		}
		if !ok {
			if err := s.events.Append(ctx, h, s.address, core.EventRedeemFailure, &core.PoolRedeemEvent{
				Account:            account.String(),
				UnderlyingQuantity: redeemQuantity.Dec(),
				BAssetQuantity:     quantity.Dec(),
				FailureReason:      "failed to transfer underlying to redeemer",
			}); err != nil {
				return err
			}
			return core.ErrTransferFailed
		}
	}

	return s.events.Append(ctx, h, s.address, core.EventRedeem, &core.PoolRedeemEvent{
		Account:            account.String(),
		UnderlyingQuantity: redeemQuantity.Dec(),
		BAssetQuantity:     quantity.Dec(),
	})
}

// Loan pays out underlying against future repayment. Vault only.
func (s *service) Loan(ctx context.Context, h kv.Handle, account core.Address, quantity *uint256.Int) error {
	if !core.ValidateAddress(account) {
		return core.ErrInvalidArgument
	}

	byNest, err := s.callByNest(ctx, h)
	if err != nil {
		return err
	}
	if !byNest {
		return core.ErrOperationForbidden
	}

	if err := s.accrueInterest(ctx, h); err != nil {
		return err
	}

	if !quantity.IsZero() {
		underlying, err := s.store.UnderlyingSupply(ctx, h)
		if err != nil {
			return err
		}

		remaining, ok := fixpoint.Sub(underlying, quantity)
		if !ok {
			if err := s.events.Append(ctx, h, s.address, core.EventLoanFailure, &core.PoolLoanEvent{
				Account:       account.String(),
				LoanQuantity:  quantity.Dec(),
				FailureReason: fmt.Sprintf("failed to loan because supply=%s < loan quantity=%s", underlying.Dec(), quantity.Dec()),
			}); err != nil {
				return err
			}
			return core.ErrInsufficientSupply
		}

		if err := s.store.SetUnderlyingSupply(ctx, h, remaining); err != nil {
			return err
		}

		unscaledQuantity, err := s.unscaled(ctx, h, quantity)
		if err != nil {
			return err
		}

		loanedSupply, err := s.store.LoanedSupply(ctx, h)
		if err != nil {
			return err
		}
		if err := s.store.SetLoanedSupply(ctx, h, fixpoint.Add(loanedSupply, unscaledQuantity)); err != nil {
			return err
		}

		loanedBalance, err := s.store.LoanedBalance(ctx, h, account)
		if err != nil {
			return err
		}
		if err := s.store.SetLoanedBalance(ctx, h, account, fixpoint.Add(loanedBalance, unscaledQuantity)); err != nil {
			return err
		}

		underlyingToken, err := s.underlying(ctx, h)
		if err != nil {
			return err
		}

		ctx := core.WithWitness(ctx, s.address)
		ok, err = underlyingToken.Transfer(ctx, h, s.address, account, quantity, nil)
		if err != nil {
			return err
		}
		if !ok {
			if err := s.events.Append(ctx, h, s.address, core.EventLoanFailure, &core.PoolLoanEvent{
				Account:       account.String(),
				LoanQuantity:  quantity.Dec(),
				FailureReason: "failed to transfer underlying to borrower",
			}); err != nil {
				return err
			}
			return core.ErrTransferFailed
		}
	}

	return s.events.Append(ctx, h, s.address, core.EventLoan, &core.PoolLoanEvent{
		Account:      account.String(),
		LoanQuantity: quantity.Dec(),
	})
}

// repayment settles debt with underlying already received, clipping to
// the outstanding balance and refunding any overpayment to the payer.
func (s *service) repayment(ctx context.Context, h kv.Handle, payer, account core.Address, quantity *uint256.Int) error {
	if !core.ValidateAddress(account) {
		return core.ErrInvalidArgument
	}

	owed, err := s.LoanedBalanceOf(ctx, h, account)
	if err != nil {
		return err
	}
	clipped := fixpoint.Min(owed, quantity)

	if err := s.accrueInterest(ctx, h); err != nil {
		return err
	}

	if !quantity.IsZero() {
		loanedSupply, err := s.LoanedSupply(ctx, h)
		if err != nil {
			return err
		}
		if loanedSupply.Lt(clipped) {
			if err := s.events.Append(ctx, h, s.address, core.EventRepaymentFailure, &core.PoolRepaymentEvent{
				Account:           account.String(),
				RepaymentQuantity: clipped.Dec(),
				FailureReason:     fmt.Sprintf("failed to repay because loaned supply=%s < clipped repayment quantity=%s", loanedSupply.Dec(), clipped.Dec()),
			}); err != nil {
				return err
			}
			return core.ErrInsufficientSupply
		}

		unscaledRepayment, err := s.unscaled(ctx, h, clipped)
		if err != nil {
			return err
		}

		unscaledLoanedSupply, err := s.store.LoanedSupply(ctx, h)
		if err != nil {
			return err
		}
		newLoanedSupply, ok := fixpoint.Sub(unscaledLoanedSupply, unscaledRepayment)
		if !ok {
			return core.ErrInvalidArgument
		}
		if err := s.store.SetLoanedSupply(ctx, h, newLoanedSupply); err != nil {
			return err
		}

		underlying, err := s.store.UnderlyingSupply(ctx, h)
		if err != nil {
			return err
		}
		if err := s.store.SetUnderlyingSupply(ctx, h, fixpoint.Add(underlying, clipped)); err != nil {
			return err
		}

		loanedBalance, err := s.store.LoanedBalance(ctx, h, account)
		if err != nil {
			return err
		}
		newLoanedBalance, ok := fixpoint.Sub(loanedBalance, unscaledRepayment)
		if !ok {
			return core.ErrInvalidArgument
		}
		if err := s.store.SetLoanedBalance(ctx, h, account, newLoanedBalance); err != nil {
			return err
		}
	}

	overpayment, _ := fixpoint.Sub(quantity, clipped)
	if overpayment != nil && overpayment.Sign() > 0 {
		underlyingToken, err := s.underlying(ctx, h)
		if err != nil {
			return err
		}

		ctx := core.WithWitness(ctx, s.address)
		ok, err := underlyingToken.Transfer(ctx, h, s.address, payer, overpayment, nil)
		if err != nil {
			return err
		}
		if !ok {
			if err := s.events.Append(ctx, h, s.address, core.EventRepaymentFailure, &core.PoolRepaymentEvent{
				Account:           account.String(),
				RepaymentQuantity: clipped.Dec(),
				FailureReason:     fmt.Sprintf("failed to refund overpayment quantity=%s", overpayment.Dec()),
			}); err != nil {
				return err
			}
			return core.ErrTransferFailed
		}
	}

	return s.events.Append(ctx, h, s.address, core.EventRepayment, &core.PoolRepaymentEvent{
		Account:           account.String(),
		RepaymentQuantity: quantity.Dec(),
	})
}

// OnTokenPayment dispatches incoming transfers on their action tag. Mint
// deliveries are swallowed; everything else must arrive from the matching
// ledger or the whole transfer aborts.
func (s *service) OnTokenPayment(ctx context.Context, h kv.Handle, token core.Token, from core.Address, amount *uint256.Int, data *core.TransferData) error {
	if data == nil {
		return core.ErrBadAction
	}

	if data.Action == core.ActionMint {
		return nil
	}

	if !core.ValidateAddress(from) {
		return core.ErrInvalidArgument
	}

	origin := token.Address()

	underlyingAddr, err := s.UnderlyingAddress(ctx, h)
	if err != nil {
		return err
	}

	switch {
	case origin == s.address && data.Action == core.ActionRedeem:
		return s.redeem(ctx, h, from, amount)
	case origin == underlyingAddr && data.Action == core.ActionDeposit:
		return s.deposit(ctx, h, from, amount)
	case origin == underlyingAddr && data.Action == core.ActionRepayment:
		target, err := data.TargetAddress()
		if err != nil {
			return err
		}
		return s.repayment(ctx, h, from, target, amount)
	}

	return core.ErrBadAction
}
