package vault

import (
	"context"
	"fmt"

	"bowerbird/core"
	"bowerbird/internal/bowerbird"
	"bowerbird/pkg/fixpoint"
	"bowerbird/pkg/kv"

	"github.com/fox-one/msgpack"
	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

type service struct {
	address     core.Address
	collaterals core.CollateralStore
	properties  core.PropertyStore
	events      core.EventStore
	registry    core.TokenRegistry
	oracle      core.OracleService
	btoken      core.BTokenService
}

// New new vault engine: collateral custody, borrowing and liquidation.
func New(
	address core.Address,
	collaterals core.CollateralStore,
	properties core.PropertyStore,
	events core.EventStore,
	registry core.TokenRegistry,
	oracle core.OracleService,
	btoken core.BTokenService,
) core.VaultService {
	return &service{
		address:     address,
		collaterals: collaterals,
		properties:  properties,
		events:      events,
		registry:    registry,
		oracle:      oracle,
		btoken:      btoken,
	}
}

func (s *service) Address() core.Address {
	return s.address
}

func (s *service) token(asset core.Address) (core.Token, error) {
	t, ok := s.registry.Token(asset)
	if !ok {
		return nil, fmt.Errorf("vault: ledger %s not registered", asset)
	}

	return t, nil
}

func (s *service) symbol(asset core.Address) (string, error) {
	t, err := s.token(asset)
	if err != nil {
		return "", err
	}

	return t.Symbol(), nil
}

func (s *service) requireOwner(ctx context.Context, h kv.Handle) error {
	owner, err := s.properties.GetAddress(ctx, h, core.PropertyOwner)
	if err != nil {
		return err
	}

	if owner.IsZero() || !core.CheckWitness(ctx, owner) {
		return core.ErrOperationForbidden
	}

	return nil
}

// ComputeCollateralLTV sums quantity*price*ltv/BASIS_POINTS over the
// account's positive positions. Every position's symbol must be priced in
// the snapshot or the whole callback aborts.
func (s *service) ComputeCollateralLTV(ctx context.Context, h kv.Handle, account core.Address, prices core.PriceMap) (*uint256.Int, error) {
	positions, err := s.collaterals.Positions(ctx, h, account)
	if err != nil {
		return nil, err
	}

	value := fixpoint.Zero()
	for _, position := range positions {
		if position.Quantity.Sign() <= 0 {
			continue
		}

		symbol, err := s.symbol(position.Asset)
		if err != nil {
			return nil, err
		}

		price, ok := prices.Price(symbol)
		if !ok {
			return nil, core.ErrBadOracleResponse
		}

		ltv, err := s.collaterals.LoanToValue(ctx, h, position.Asset)
		if err != nil {
			return nil, err
		}

		value = fixpoint.Add(value, bowerbird.CollateralValue(position.Quantity, price, ltv))
	}

	return value, nil
}

// depositCollateral credits the transferred quantity to the account's
// position. Synchronous; no price needed.
func (s *service) depositCollateral(ctx context.Context, h kv.Handle, account, asset core.Address, quantity *uint256.Int) error {
	symbol, err := s.symbol(asset)
	if err != nil {
		return err
	}

	balance, err := s.collaterals.Balance(ctx, h, asset, account)
	if err != nil {
		return err
	}
	if err := s.collaterals.SetBalance(ctx, h, asset, account, fixpoint.Add(balance, quantity)); err != nil {
		return err
	}

	total, err := s.collaterals.TotalCollateral(ctx, h, asset)
	if err != nil {
		return err
	}
	if err := s.collaterals.SetTotalCollateral(ctx, h, asset, fixpoint.Add(total, quantity)); err != nil {
		return err
	}

	return s.events.Append(ctx, h, s.address, core.EventCollateralDeposit, &core.CollateralDepositEvent{
		Account:            account.String(),
		CollateralSymbol:   symbol,
		CollateralQuantity: quantity.Dec(),
	})
}

// Loan registers a price request; the settlement happens in LoanCallback.
func (s *service) Loan(ctx context.Context, h kv.Handle, account, loanToken core.Address, quantity *uint256.Int) error {
	if !core.ValidateAddress(account) || !core.ValidateAddress(loanToken) {
		return core.ErrInvalidArgument
	}

	_, err := s.oracle.Request(ctx, h, core.CallbackLoan, &core.LoanCall{
		Account:      account.Bytes(),
		LoanToken:    loanToken.Bytes(),
		LoanQuantity: core.QuantityBytes(quantity),
	})
	return err
}

// WithdrawCollateral registers a price request; the settlement happens in
// WithdrawCollateralCallback.
func (s *service) WithdrawCollateral(ctx context.Context, h kv.Handle, account, asset core.Address, quantity *uint256.Int) error {
	if !core.ValidateAddress(account) || !core.ValidateAddress(asset) {
		return core.ErrInvalidArgument
	}

	_, err := s.oracle.Request(ctx, h, core.CallbackWithdraw, &core.WithdrawCall{
		Account:          account.Bytes(),
		CollateralToken:  asset.Bytes(),
		WithdrawQuantity: core.QuantityBytes(quantity),
	})
	return err
}

// liquidate escrows the already-received stablecoin and registers a price
// request; the settlement happens in LiquidateCallback.
func (s *service) liquidate(ctx context.Context, h kv.Handle, liquidator, account, asset core.Address, quantity *uint256.Int) error {
	if !core.ValidateAddress(liquidator) || !core.ValidateAddress(account) || !core.ValidateAddress(asset) {
		return core.ErrInvalidArgument
	}

	_, err := s.oracle.Request(ctx, h, core.CallbackLiquidate, &core.LiquidateCall{
		Liquidator:      liquidator.Bytes(),
		Account:         account.Bytes(),
		CollateralToken: asset.Bytes(),
		USDLQuantity:    core.QuantityBytes(quantity),
	})
	return err
}

// callByOracle reports whether the response carries the oracle's witness.
func (s *service) callByOracle(ctx context.Context, h kv.Handle) (bool, error) {
	oracle, err := s.properties.GetAddress(ctx, h, core.PropertyOracle)
	if err != nil {
		return false, err
	}

	return !oracle.IsZero() && core.CheckWitness(ctx, oracle), nil
}

func (s *service) requireOracle(ctx context.Context, h kv.Handle) error {
	ok, err := s.callByOracle(ctx, h)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrOperationForbidden
	}

	return nil
}

func (s *service) LoanCallback(ctx context.Context, h kv.Handle, resp *core.OracleResponse) error {
	if err := s.requireOracle(ctx, h); err != nil {
		return err
	}

	var call core.LoanCall
	if err := msgpack.Unmarshal(resp.Payload, &call); err != nil {
		return core.ErrBadOracleResponse
	}

	account, err := call.AccountAddress()
	if err != nil {
		return err
	}
	loanToken, err := call.LoanTokenAddress()
	if err != nil {
		return err
	}
	quantity := core.QuantityFromBytes(call.LoanQuantity)

	if loanToken != s.btoken.Address() {
		return core.ErrInvalidArgument
	}

	underlyingAddr, err := s.btoken.UnderlyingAddress(ctx, h)
	if err != nil {
		return err
	}
	loanSymbol, err := s.symbol(underlyingAddr)
	if err != nil {
		return err
	}

	currentLoan, err := s.btoken.LoanedBalanceOf(ctx, h, account)
	if err != nil {
		return err
	}

	// an oracle-level failure is reported but deliberately not returned;
	// execution falls through to the price decode
	if resp.Code != 0 {
		if err := s.events.Append(ctx, h, s.address, core.EventLoanFailure, &core.VaultLoanEvent{
			Account:       account.String(),
			LoanSymbol:    loanSymbol,
			LoanQuantity:  quantity.Dec(),
			FailureReason: "oracle invocation failed",
		}); err != nil {
			return err
		}
	}

	prices, err := core.ParsePrices(resp.Body)
	if err != nil {
		return err
	}

	totalLoan := fixpoint.Add(currentLoan, quantity)
	loanPrice, ok := prices.Price(loanSymbol)
	if !ok {
		return core.ErrBadOracleResponse
	}
	loanValue := bowerbird.LoanValue(totalLoan, loanPrice)

	collateralLTV, err := s.ComputeCollateralLTV(ctx, h, account, prices)
	if err != nil {
		return err
	}

	if loanValue.Gt(collateralLTV) {
		return s.events.Append(ctx, h, s.address, core.EventLoanFailure, &core.VaultLoanEvent{
			Account:       account.String(),
			LoanSymbol:    loanSymbol,
			LoanQuantity:  quantity.Dec(),
			FailureReason: fmt.Sprintf("the total loan value=%s > total collateral loan to value=%s", loanValue.Dec(), collateralLTV.Dec()),
		})
	}

	ctx = core.WithWitness(ctx, s.address)
	if err := s.btoken.Loan(ctx, h, account, quantity); err != nil {
		return err
	}

	return s.events.Append(ctx, h, s.address, core.EventLoan, &core.VaultLoanEvent{
		Account:      account.String(),
		LoanSymbol:   loanSymbol,
		LoanQuantity: quantity.Dec(),
	})
}

func (s *service) WithdrawCollateralCallback(ctx context.Context, h kv.Handle, resp *core.OracleResponse) error {
	if err := s.requireOracle(ctx, h); err != nil {
		return err
	}

	var call core.WithdrawCall
	if err := msgpack.Unmarshal(resp.Payload, &call); err != nil {
		return core.ErrBadOracleResponse
	}

	account, err := call.AccountAddress()
	if err != nil {
		return err
	}
	asset, err := call.CollateralTokenAddress()
	if err != nil {
		return err
	}
	quantity := core.QuantityFromBytes(call.WithdrawQuantity)

	symbol, err := s.symbol(asset)
	if err != nil {
		return err
	}

	if resp.Code != 0 {
		if err := s.events.Append(ctx, h, s.address, core.EventCollateralWithdrawFailure, &core.CollateralWithdrawEvent{
			Account:            account.String(),
			CollateralSymbol:   symbol,
			CollateralQuantity: quantity.Dec(),
			FailureReason:      "oracle invocation failed",
		}); err != nil {
			return err
		}
	}

	loanQuantity, err := s.btoken.LoanedBalanceOf(ctx, h, account)
	if err != nil {
		return err
	}

	balance, err := s.collaterals.Balance(ctx, h, asset, account)
	if err != nil {
		return err
	}

	if balance.Lt(quantity) {
		return s.events.Append(ctx, h, s.address, core.EventCollateralWithdrawFailure, &core.CollateralWithdrawEvent{
			Account:            account.String(),
			CollateralSymbol:   symbol,
			CollateralQuantity: quantity.Dec(),
			FailureReason:      fmt.Sprintf("withdraw quantity=%s > current collateral=%s", quantity.Dec(), balance.Dec()),
		})
	}

	prices, err := core.ParsePrices(resp.Body)
	if err != nil {
		return err
	}

	usdlPrice, ok := prices.Price(core.USDLSymbol)
	if !ok {
		return core.ErrBadOracleResponse
	}
	collateralPrice, ok := prices.Price(symbol)
	if !ok {
		return core.ErrBadOracleResponse
	}

	loanValue := bowerbird.LoanValue(loanQuantity, usdlPrice)
	collateralLTV, err := s.ComputeCollateralLTV(ctx, h, account, prices)
	if err != nil {
		return err
	}

	ltv, err := s.collaterals.LoanToValue(ctx, h, asset)
	if err != nil {
		return err
	}
	withdrawLTV := bowerbird.CollateralValue(quantity, collateralPrice, ltv)

	// loan_value > collateral_ltv - withdraw_ltv, avoiding the negative
	// intermediate
	if loanValue.Sign() > 0 {
		if fixpoint.Add(loanValue, withdrawLTV).Gt(collateralLTV) {
			remaining, _ := fixpoint.Sub(collateralLTV, fixpoint.Min(collateralLTV, withdrawLTV))
			return s.events.Append(ctx, h, s.address, core.EventCollateralWithdrawFailure, &core.CollateralWithdrawEvent{
				Account:            account.String(),
				CollateralSymbol:   symbol,
				CollateralQuantity: quantity.Dec(),
				FailureReason:      fmt.Sprintf("withdrawal causes loan value=%s > remaining collateral loan to value=%s", loanValue.Dec(), remaining.Dec()),
			})
		}
	}

	newBalance, _ := fixpoint.Sub(balance, quantity)
	if err := s.collaterals.SetBalance(ctx, h, asset, account, newBalance); err != nil {
		return err
	}

	total, err := s.collaterals.TotalCollateral(ctx, h, asset)
	if err != nil {
		return err
	}
	newTotal, _ := fixpoint.Sub(total, fixpoint.Min(total, quantity))
	if err := s.collaterals.SetTotalCollateral(ctx, h, asset, newTotal); err != nil {
		return err
	}

	assetToken, err := s.token(asset)
	if err != nil {
		return err
	}

	ctx = core.WithWitness(ctx, s.address)
	ok, err = assetToken.Transfer(ctx, h, s.address, account, quantity, nil)
	if err != nil {
		return err
	}
	if !ok {
		// the balance stays decremented: an accepted at-risk window
		return s.events.Append(ctx, h, s.address, core.EventCollateralWithdrawFailure, &core.CollateralWithdrawEvent{
			Account:            account.String(),
			CollateralSymbol:   symbol,
			CollateralQuantity: quantity.Dec(),
			FailureReason:      "failed to transfer collateral to withdrawer",
		})
	}

	return s.events.Append(ctx, h, s.address, core.EventCollateralWithdraw, &core.CollateralWithdrawEvent{
		Account:            account.String(),
		CollateralSymbol:   symbol,
		CollateralQuantity: quantity.Dec(),
	})
}

func (s *service) LiquidateCallback(ctx context.Context, h kv.Handle, resp *core.OracleResponse) error {
	if err := s.requireOracle(ctx, h); err != nil {
		return err
	}

	var call core.LiquidateCall
	if err := msgpack.Unmarshal(resp.Payload, &call); err != nil {
		return core.ErrBadOracleResponse
	}

	liquidator, err := call.LiquidatorAddress()
	if err != nil {
		return err
	}
	account, err := call.AccountAddress()
	if err != nil {
		return err
	}
	asset, err := call.CollateralTokenAddress()
	if err != nil {
		return err
	}
	usdlQuantity := core.QuantityFromBytes(call.USDLQuantity)

	loanQuantity, err := s.btoken.LoanedBalanceOf(ctx, h, account)
	if err != nil {
		return err
	}
	symbol, err := s.symbol(asset)
	if err != nil {
		return err
	}
	balance, err := s.collaterals.Balance(ctx, h, asset, account)
	if err != nil {
		return err
	}

	failure := func(reason string) *core.LiquidateEvent {
		return &core.LiquidateEvent{
			Liquidator:       liquidator.String(),
			Account:          account.String(),
			CollateralSymbol: symbol,
			USDLQuantity:     usdlQuantity.Dec(),
			FailureReason:    reason,
		}
	}

	if resp.Code != 0 {
		if err := s.events.Append(ctx, h, s.address, core.EventLiquidateFailure, failure("oracle invocation failed")); err != nil {
			return err
		}
	}

	prices, err := core.ParsePrices(resp.Body)
	if err != nil {
		return err
	}

	usdlPrice, ok := prices.Price(core.USDLSymbol)
	if !ok {
		return core.ErrBadOracleResponse
	}
	collateralPrice, ok := prices.Price(symbol)
	if !ok {
		return core.ErrBadOracleResponse
	}

	loanValue := bowerbird.LoanValue(loanQuantity, usdlPrice)
	collateralLTV, err := s.ComputeCollateralLTV(ctx, h, account, prices)
	if err != nil {
		return err
	}

	usdlAddr, err := s.properties.GetAddress(ctx, h, core.PropertyUSDLToken)
	if err != nil {
		return err
	}
	usdlToken, err := s.token(usdlAddr)
	if err != nil {
		return err
	}

	ctx = core.WithWitness(ctx, s.address)

	// the position is healthy: refund the whole escrow
	if collateralLTV.Gt(loanValue) {
		if err := s.events.Append(ctx, h, s.address, core.EventLiquidateFailure,
			failure(fmt.Sprintf("collateral loan to value=%s > loan value=%s", collateralLTV.Dec(), loanValue.Dec()))); err != nil {
			return err
		}

		ok, err := usdlToken.Transfer(ctx, h, s.address, liquidator, usdlQuantity, nil)
		if err != nil {
			return err
		}
		if !ok {
			return s.events.Append(ctx, h, s.address, core.EventLiquidateFailure,
				failure(fmt.Sprintf("failed to refund usdl quantity=%s", usdlQuantity.Dec())))
		}
		return nil
	}

	maxRatio, err := s.collaterals.MaxLiquidationRatio(ctx, h, asset)
	if err != nil {
		return err
	}
	penalty, err := s.collaterals.LiquidationPenalty(ctx, h, asset)
	if err != nil {
		return err
	}

	desired := bowerbird.DesiredLiquidation(usdlQuantity, usdlPrice, collateralPrice)
	max := bowerbird.MaxLiquidation(balance, maxRatio)
	clipped := fixpoint.Min(desired, max)
	payout := bowerbird.LiquidationPayout(clipped, penalty)
	consumed := bowerbird.ConsumedStable(clipped, collateralPrice, usdlPrice)
	unused, _ := fixpoint.Sub(usdlQuantity, fixpoint.Min(usdlQuantity, consumed))

	if payout.IsZero() {
		return s.events.Append(ctx, h, s.address, core.EventLiquidateFailure, failure("total liquidate quantity = 0"))
	}

	newBalance, ok1 := fixpoint.Sub(balance, payout)
	if !ok1 {
		return core.ErrInsufficientCollateral
	}
	if err := s.collaterals.SetBalance(ctx, h, asset, account, newBalance); err != nil {
		return err
	}

	total, err := s.collaterals.TotalCollateral(ctx, h, asset)
	if err != nil {
		return err
	}
	newTotal, _ := fixpoint.Sub(total, fixpoint.Min(total, payout))
	if err := s.collaterals.SetTotalCollateral(ctx, h, asset, newTotal); err != nil {
		return err
	}

	restore := func() error {
		if err := s.collaterals.SetBalance(ctx, h, asset, account, balance); err != nil {
			return err
		}
		return s.collaterals.SetTotalCollateral(ctx, h, asset, total)
	}

	// forward the consumed escrow as a repayment on the borrower's behalf
	ok, err = usdlToken.Transfer(ctx, h, s.address, s.btoken.Address(), consumed, &core.TransferData{
		Action: core.ActionRepayment,
		Target: account.Bytes(),
	})
	if err != nil {
		return err
	}
	if !ok {
		if err := s.events.Append(ctx, h, s.address, core.EventLiquidateFailure,
			failure(fmt.Sprintf("failed to repay usdl quantity=%s", consumed.Dec()))); err != nil {
			return err
		}
		return restore()
	}

	assetToken, err := s.token(asset)
	if err != nil {
		return err
	}

	ok, err = assetToken.Transfer(ctx, h, s.address, liquidator, payout, nil)
	if err != nil {
		return err
	}
	if !ok {
		if err := s.events.Append(ctx, h, s.address, core.EventLiquidateFailure,
			failure(fmt.Sprintf("failed to transfer liquidated collateral=%s", payout.Dec()))); err != nil {
			return err
		}
		return restore()
	}

	if unused.Sign() > 0 {
		ok, err := usdlToken.Transfer(ctx, h, s.address, liquidator, unused, nil)
		if err != nil {
			return err
		}
		if !ok {
			// logged only; the primary mutation stands
			log := logger.FromContext(ctx)
			log.Errorln("vault: unused escrow refund failed")
			if err := s.events.Append(ctx, h, s.address, core.EventLiquidateFailure,
				failure(fmt.Sprintf("failed to repay unused usdl quantity=%s", unused.Dec()))); err != nil {
				return err
			}
		}
	}

	return s.events.Append(ctx, h, s.address, core.EventLiquidate, &core.LiquidateEvent{
		Liquidator:         liquidator.String(),
		Account:            account.String(),
		CollateralSymbol:   symbol,
		USDLQuantity:       consumed.Dec(),
		CollateralQuantity: payout.Dec(),
	})
}

// OnTokenPayment dispatches incoming transfers on their action tag.
func (s *service) OnTokenPayment(ctx context.Context, h kv.Handle, token core.Token, from core.Address, amount *uint256.Int, data *core.TransferData) error {
	if data == nil {
		return core.ErrBadAction
	}

	if !core.ValidateAddress(from) {
		return core.ErrInvalidArgument
	}

	switch data.Action {
	case core.ActionCollateralize:
		asset := token.Address()
		supported, err := s.collaterals.IsSupported(ctx, h, asset)
		if err != nil {
			return err
		}
		if !supported {
			return core.ErrCollateralNotSupported
		}
		return s.depositCollateral(ctx, h, from, asset, amount)

	case core.ActionLiquidate:
		usdlAddr, err := s.properties.GetAddress(ctx, h, core.PropertyUSDLToken)
		if err != nil {
			return err
		}
		if token.Address() != usdlAddr {
			return core.ErrBadAction
		}

		target, err := data.TargetAddress()
		if err != nil {
			return err
		}
		asset, err := data.AssetAddress()
		if err != nil {
			return err
		}
		return s.liquidate(ctx, h, from, target, asset, amount)
	}

	return core.ErrBadAction
}

// SupportCollateral enters asset into the registry and writes the default
// risk parameters. Re-supporting an asset resets tuned parameters back to
// the defaults.
func (s *service) SupportCollateral(ctx context.Context, h kv.Handle, asset core.Address) error {
	if err := s.requireOwner(ctx, h); err != nil {
		return err
	}
	if !core.ValidateAddress(asset) {
		return core.ErrInvalidArgument
	}

	if err := s.collaterals.Support(ctx, h, asset); err != nil {
		return err
	}

	if err := s.collaterals.SetLoanToValue(ctx, h, asset, core.DefaultLoanToValue); err != nil {
		return err
	}
	if err := s.collaterals.SetMaxLiquidationRatio(ctx, h, asset, core.DefaultMaxLiquidationRatio); err != nil {
		return err
	}

	return s.collaterals.SetLiquidationPenalty(ctx, h, asset, core.DefaultLiquidationPenalty)
}

// InvalidateCollateral removes asset from the registry. Parameters and
// balances stay so withdrawals and liquidations keep working.
func (s *service) InvalidateCollateral(ctx context.Context, h kv.Handle, asset core.Address) error {
	if err := s.requireOwner(ctx, h); err != nil {
		return err
	}

	return s.collaterals.Invalidate(ctx, h, asset)
}

// SetLoanToValue sets asset's loan-to-value in basis points. Zero is
// rejected; values above 10000 are allowed, matching the other setters.
func (s *service) SetLoanToValue(ctx context.Context, h kv.Handle, asset core.Address, bps uint64) error {
	if err := s.requireOwner(ctx, h); err != nil {
		return err
	}
	if bps == 0 {
		return core.ErrInvalidArgument
	}

	return s.collaterals.SetLoanToValue(ctx, h, asset, bps)
}

func (s *service) SetMaxLiquidationRatio(ctx context.Context, h kv.Handle, asset core.Address, bps uint64) error {
	if err := s.requireOwner(ctx, h); err != nil {
		return err
	}

	return s.collaterals.SetMaxLiquidationRatio(ctx, h, asset, bps)
}

// SetLiquidationPenalty sets the liquidator's bonus in basis points. A
// penalty above 10000 is legal; it only scales the payout.
func (s *service) SetLiquidationPenalty(ctx context.Context, h kv.Handle, asset core.Address, bps uint64) error {
	if err := s.requireOwner(ctx, h); err != nil {
		return err
	}

	return s.collaterals.SetLiquidationPenalty(ctx, h, asset, bps)
}
