package collateral

import (
	"context"
	"encoding/binary"

	"bowerbird/core"
	"bowerbird/pkg/kv"

	"github.com/holiman/uint256"
)

// Storage key layout. Per-account positions live under cl/<account64>/ so
// one bounded scan lists everything the account ever deposited.
const (
	registryKey = "col/"
	ltvKey      = "lv/"
	maxRatioKey = "ml/"
	penaltyKey  = "lp/"
	positionKey = "cl/"
	totalKey    = "tc/"
)

type collateralStore struct{}

// New new collateral store
func New() core.CollateralStore {
	return &collateralStore{}
}

func (s *collateralStore) IsSupported(ctx context.Context, h kv.Handle, asset core.Address) (bool, error) {
	return kv.NewMap(h, registryKey).Has(asset.String())
}

func (s *collateralStore) Support(ctx context.Context, h kv.Handle, asset core.Address) error {
	return kv.NewMap(h, registryKey).Put(asset.String(), []byte{1})
}

func (s *collateralStore) Invalidate(ctx context.Context, h kv.Handle, asset core.Address) error {
	return kv.NewMap(h, registryKey).Delete(asset.String())
}

func getBps(h kv.Handle, prefix string, asset core.Address) (uint64, error) {
	b, err := kv.NewMap(h, prefix).Get(asset.String())
	if err != nil {
		return 0, err
	}

	if len(b) == 0 {
		return 0, nil
	}

	return binary.BigEndian.Uint64(b), nil
}

func putBps(h kv.Handle, prefix string, asset core.Address, bps uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], bps)
	return kv.NewMap(h, prefix).Put(asset.String(), b[:])
}

func (s *collateralStore) LoanToValue(ctx context.Context, h kv.Handle, asset core.Address) (uint64, error) {
	return getBps(h, ltvKey, asset)
}

func (s *collateralStore) SetLoanToValue(ctx context.Context, h kv.Handle, asset core.Address, bps uint64) error {
	return putBps(h, ltvKey, asset, bps)
}

func (s *collateralStore) MaxLiquidationRatio(ctx context.Context, h kv.Handle, asset core.Address) (uint64, error) {
	return getBps(h, maxRatioKey, asset)
}

func (s *collateralStore) SetMaxLiquidationRatio(ctx context.Context, h kv.Handle, asset core.Address, bps uint64) error {
	return putBps(h, maxRatioKey, asset, bps)
}

func (s *collateralStore) LiquidationPenalty(ctx context.Context, h kv.Handle, asset core.Address) (uint64, error) {
	return getBps(h, penaltyKey, asset)
}

func (s *collateralStore) SetLiquidationPenalty(ctx context.Context, h kv.Handle, asset core.Address, bps uint64) error {
	return putBps(h, penaltyKey, asset, bps)
}

func accountMap(h kv.Handle, account core.Address) kv.Map {
	return kv.NewMap(h, positionKey+account.String()+"/")
}

func (s *collateralStore) Balance(ctx context.Context, h kv.Handle, asset, account core.Address) (*uint256.Int, error) {
	b, err := accountMap(h, account).Get(asset.String())
	if err != nil {
		return nil, err
	}

	return new(uint256.Int).SetBytes(b), nil
}

func (s *collateralStore) SetBalance(ctx context.Context, h kv.Handle, asset, account core.Address, quantity *uint256.Int) error {
	return accountMap(h, account).Put(asset.String(), quantity.Bytes())
}

func (s *collateralStore) Positions(ctx context.Context, h kv.Handle, account core.Address) ([]*core.CollateralPosition, error) {
	var (
		positions []*core.CollateralPosition
		scanErr   error
	)

	err := accountMap(h, account).Range(func(k string, v []byte) bool {
		asset, err := core.AddressFromString(k)
		if err != nil {
			scanErr = err
			return false
		}

		positions = append(positions, &core.CollateralPosition{
			Account:  account,
			Asset:    asset,
			Quantity: new(uint256.Int).SetBytes(v),
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}

	return positions, nil
}

func (s *collateralStore) TotalCollateral(ctx context.Context, h kv.Handle, asset core.Address) (*uint256.Int, error) {
	b, err := kv.NewMap(h, totalKey).Get(asset.String())
	if err != nil {
		return nil, err
	}

	return new(uint256.Int).SetBytes(b), nil
}

func (s *collateralStore) SetTotalCollateral(ctx context.Context, h kv.Handle, asset core.Address, quantity *uint256.Int) error {
	return kv.NewMap(h, totalKey).Put(asset.String(), quantity.Bytes())
}
