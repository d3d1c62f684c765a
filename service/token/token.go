package token

import (
	"context"

	"bowerbird/core"
	"bowerbird/pkg/fixpoint"
	"bowerbird/pkg/kv"
	"bowerbird/store/token"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// Token is a plain fungible ledger with a genesis mint hook.
type Token interface {
	core.Token

	Mint(ctx context.Context, h kv.Handle, account core.Address, amount *uint256.Int) error
}

type service struct {
	address  core.Address
	symbol   string
	decimals int

	store    *token.Store
	events   core.EventStore
	registry core.TokenRegistry
}

// New new plain fungible ledger. It has no lending behavior of its own;
// the vault accepts it as collateral and the pool token uses one as its
// underlying asset.
func New(
	address core.Address,
	symbol string,
	decimals int,
	store *token.Store,
	events core.EventStore,
	registry core.TokenRegistry,
) Token {
	return &service{
		address:  address,
		symbol:   symbol,
		decimals: decimals,
		store:    store,
		events:   events,
		registry: registry,
	}
}

func (s *service) Address() core.Address {
	return s.address
}

func (s *service) Symbol() string {
	return s.symbol
}

func (s *service) Decimals() int {
	return s.decimals
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

// Transfer moves amount between accounts. It returns false without error
// when the sender's balance or witness is missing; zero-amount and
// self-transfers succeed without touching balances but still fire the
// event and the receiver hook.
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

	if from != to && !amount.IsZero() {
		if fromBalance.Eq(amount) {
			if err := s.store.DeleteBalance(ctx, h, from); err != nil {
				return false, err
			}
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

	return true, nil
}

// postTransfer invokes the receiver's payment hook when the receiver is a
// hosted contract. A hook error aborts the whole operation.
func (s *service) postTransfer(ctx context.Context, h kv.Handle, from, to core.Address, amount *uint256.Int, data *core.TransferData) error {
	receiver, ok := s.registry.Receiver(to)
	if !ok {
		return nil
	}

	log := logger.FromContext(ctx)
	if err := receiver.OnTokenPayment(ctx, h, s, from, amount, data); err != nil {
		log.WithError(err).Errorln("token: payment hook rejected transfer")
		return err
	}

	return nil
}

// Mint issues amount to account, outside the transfer surface. Used to
// seed ledgers at genesis and by tests.
func (s *service) Mint(ctx context.Context, h kv.Handle, account core.Address, amount *uint256.Int) error {
	if !core.ValidateAddress(account) {
		return core.ErrInvalidArgument
	}

	supply, err := s.store.TotalSupply(ctx, h)
	if err != nil {
		return err
	}

	balance, err := s.store.Balance(ctx, h, account)
	if err != nil {
		return err
	}

	if balance.IsZero() && !amount.IsZero() {
		n, err := s.store.NumAccounts(ctx, h)
		if err != nil {
			return err
		}
		if err := s.store.SetNumAccounts(ctx, h, n+1); err != nil {
			return err
		}
	}

	if err := s.store.SetTotalSupply(ctx, h, fixpoint.Add(supply, amount)); err != nil {
		return err
	}

	if err := s.store.SetBalance(ctx, h, account, fixpoint.Add(balance, amount)); err != nil {
		return err
	}

	return s.events.Append(ctx, h, s.address, core.EventTransfer, &core.TransferEvent{
		From:   core.Address{}.String(),
		To:     account.String(),
		Amount: amount.Dec(),
	})
}
