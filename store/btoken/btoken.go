package btoken

import (
	"context"
	"encoding/binary"

	"bowerbird/core"
	"bowerbird/pkg/kv"

	"github.com/holiman/uint256"
)

// Storage key layout. Balances and loans are namespaced maps keyed by the
// account's base64 form; the rest are single slots.
const (
	balanceKey = "bl/"
	loanKey    = "ln/"

	supplyKey           = "ts"
	underlyingSupplyKey = "us"
	loanedSupplyKey     = "ls"
	multiplierKey       = "im"
	lastHeightKey       = "lh"
	mintedKey           = "mt"
	burnedKey           = "bn"
	numAccountsKey      = "na"
)

type btokenStore struct {
	prefix string
}

// New new pool token store rooted at prefix, so several ledgers can share
// one database.
func New(prefix string) core.BTokenStore {
	return &btokenStore{prefix: prefix}
}

func (s *btokenStore) slot(h kv.Handle) kv.Map {
	return kv.NewMap(h, s.prefix)
}

func decodeQuantity(b []byte) *uint256.Int {
	return new(uint256.Int).SetBytes(b)
}

func (s *btokenStore) getQuantity(h kv.Handle, key string) (*uint256.Int, error) {
	b, err := s.slot(h).Get(key)
	if err != nil {
		return nil, err
	}

	return decodeQuantity(b), nil
}

func (s *btokenStore) putQuantity(h kv.Handle, key string, v *uint256.Int) error {
	return s.slot(h).Put(key, v.Bytes())
}

func (s *btokenStore) TotalSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	return s.getQuantity(h, supplyKey)
}

func (s *btokenStore) SetTotalSupply(ctx context.Context, h kv.Handle, v *uint256.Int) error {
	return s.putQuantity(h, supplyKey, v)
}

func (s *btokenStore) TotalMinted(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	return s.getQuantity(h, mintedKey)
}

func (s *btokenStore) SetTotalMinted(ctx context.Context, h kv.Handle, v *uint256.Int) error {
	return s.putQuantity(h, mintedKey, v)
}

func (s *btokenStore) TotalBurned(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	return s.getQuantity(h, burnedKey)
}

func (s *btokenStore) SetTotalBurned(ctx context.Context, h kv.Handle, v *uint256.Int) error {
	return s.putQuantity(h, burnedKey, v)
}

func (s *btokenStore) NumAccounts(ctx context.Context, h kv.Handle) (int64, error) {
	b, err := s.slot(h).Get(numAccountsKey)
	if err != nil {
		return 0, err
	}

	if len(b) == 0 {
		return 0, nil
	}

	return int64(binary.BigEndian.Uint64(b)), nil
}

func (s *btokenStore) SetNumAccounts(ctx context.Context, h kv.Handle, n int64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	return s.slot(h).Put(numAccountsKey, b[:])
}

func (s *btokenStore) Balance(ctx context.Context, h kv.Handle, account core.Address) (*uint256.Int, error) {
	b, err := kv.NewMap(h, s.prefix+balanceKey).Get(account.String())
	if err != nil {
		return nil, err
	}

	return decodeQuantity(b), nil
}

func (s *btokenStore) SetBalance(ctx context.Context, h kv.Handle, account core.Address, v *uint256.Int) error {
	return kv.NewMap(h, s.prefix+balanceKey).Put(account.String(), v.Bytes())
}

func (s *btokenStore) DeleteBalance(ctx context.Context, h kv.Handle, account core.Address) error {
	return kv.NewMap(h, s.prefix+balanceKey).Delete(account.String())
}

func (s *btokenStore) Balances(ctx context.Context, h kv.Handle, pageNum, pageSize int) ([]*core.AccountBalance, error) {
	if pageNum < 0 {
		return nil, core.ErrInvalidArgument
	}
	if pageSize <= 0 || pageSize > 512 {
		return nil, core.ErrInvalidArgument
	}

	offset := pageNum * pageSize
	var (
		page    []*core.AccountBalance
		scanErr error
	)

	err := kv.NewMap(h, s.prefix+balanceKey).Range(func(k string, v []byte) bool {
		if offset > 0 {
			offset--
			return true
		}

		account, err := core.AddressFromString(k)
		if err != nil {
			scanErr = err
			return false
		}

		quantity := decodeQuantity(v)
		if quantity.Sign() > 0 {
			page = append(page, &core.AccountBalance{Account: account, Balance: quantity})
		}

		return len(page) < pageSize
	})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}

	return page, nil
}

func (s *btokenStore) LoanedBalance(ctx context.Context, h kv.Handle, account core.Address) (*uint256.Int, error) {
	b, err := kv.NewMap(h, s.prefix+loanKey).Get(account.String())
	if err != nil {
		return nil, err
	}

	return decodeQuantity(b), nil
}

func (s *btokenStore) SetLoanedBalance(ctx context.Context, h kv.Handle, account core.Address, v *uint256.Int) error {
	return kv.NewMap(h, s.prefix+loanKey).Put(account.String(), v.Bytes())
}

func (s *btokenStore) UnderlyingSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	return s.getQuantity(h, underlyingSupplyKey)
}

func (s *btokenStore) SetUnderlyingSupply(ctx context.Context, h kv.Handle, v *uint256.Int) error {
	return s.putQuantity(h, underlyingSupplyKey, v)
}

func (s *btokenStore) LoanedSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	return s.getQuantity(h, loanedSupplyKey)
}

func (s *btokenStore) SetLoanedSupply(ctx context.Context, h kv.Handle, v *uint256.Int) error {
	return s.putQuantity(h, loanedSupplyKey, v)
}

func (s *btokenStore) InterestMultiplier(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	return s.getQuantity(h, multiplierKey)
}

func (s *btokenStore) SetInterestMultiplier(ctx context.Context, h kv.Handle, v *uint256.Int) error {
	return s.putQuantity(h, multiplierKey, v)
}

func (s *btokenStore) LastHeight(ctx context.Context, h kv.Handle) (uint64, error) {
	b, err := s.slot(h).Get(lastHeightKey)
	if err != nil {
		return 0, err
	}

	if len(b) == 0 {
		return 0, nil
	}

	return binary.BigEndian.Uint64(b), nil
}

func (s *btokenStore) SetLastHeight(ctx context.Context, h kv.Handle, height uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], height)
	return s.slot(h).Put(lastHeightKey, b[:])
}
