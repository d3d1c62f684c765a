package core

import "context"

// BlockClock reports the current block height. Interest accrual is
// denominated in blocks, not wall time.
type BlockClock interface {
	Height(ctx context.Context) (uint64, error)
}
