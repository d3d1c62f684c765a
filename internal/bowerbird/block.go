package bowerbird

import (
	"context"
	"errors"
	"time"
)

// SecondsPerBlock matches the 15 second block time BlocksPerYear assumes.
const SecondsPerBlock int64 = 15

// CurrentBlock derives the current block height from wall time and the
// genesis timestamp.
func CurrentBlock(ctx context.Context, secondsPerBlock, genesis int64) (uint64, error) {
	if secondsPerBlock <= 0 {
		return 0, errors.New("secondsPerBlock should not be less than or equal zero")
	}

	seconds := time.Now().UTC().Unix() - genesis
	if seconds < 0 {
		return 0, errors.New("genesis is in the future")
	}

	return uint64(seconds / secondsPerBlock), nil
}
