package token

import (
	"context"
	"encoding/binary"

	"bowerbird/core"
	"bowerbird/pkg/kv"

	"github.com/holiman/uint256"
)

const (
	balanceKey     = "balance/"
	supplyKey      = "totalSupply"
	numAccountsKey = "numAccounts"
)

// Store is the plain fungible ledger state, prefix-scoped so several
// reference tokens can share one database.
type Store struct {
	prefix string
}

// New new token store rooted at prefix.
func New(prefix string) *Store {
	return &Store{prefix: prefix}
}

func (s *Store) TotalSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error) {
	b, err := kv.NewMap(h, s.prefix).Get(supplyKey)
	if err != nil {
		return nil, err
	}

	return new(uint256.Int).SetBytes(b), nil
}

func (s *Store) SetTotalSupply(ctx context.Context, h kv.Handle, v *uint256.Int) error {
	return kv.NewMap(h, s.prefix).Put(supplyKey, v.Bytes())
}

func (s *Store) NumAccounts(ctx context.Context, h kv.Handle) (int64, error) {
	b, err := kv.NewMap(h, s.prefix).Get(numAccountsKey)
	if err != nil {
		return 0, err
	}

	if len(b) == 0 {
		return 0, nil
	}

	return int64(binary.BigEndian.Uint64(b)), nil
}

func (s *Store) SetNumAccounts(ctx context.Context, h kv.Handle, n int64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	return kv.NewMap(h, s.prefix).Put(numAccountsKey, b[:])
}

func (s *Store) Balance(ctx context.Context, h kv.Handle, account core.Address) (*uint256.Int, error) {
	b, err := kv.NewMap(h, s.prefix+balanceKey).Get(account.String())
	if err != nil {
		return nil, err
	}

	return new(uint256.Int).SetBytes(b), nil
}

func (s *Store) SetBalance(ctx context.Context, h kv.Handle, account core.Address, v *uint256.Int) error {
	return kv.NewMap(h, s.prefix+balanceKey).Put(account.String(), v.Bytes())
}

func (s *Store) DeleteBalance(ctx context.Context, h kv.Handle, account core.Address) error {
	return kv.NewMap(h, s.prefix+balanceKey).Delete(account.String())
}
