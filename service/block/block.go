package block

import (
	"context"

	"bowerbird/core"
	"bowerbird/internal/bowerbird"
)

type service struct {
	genesis         int64
	secondsPerBlock int64
}

// New new block clock anchored at the genesis timestamp.
func New(genesis, secondsPerBlock int64) core.BlockClock {
	if secondsPerBlock <= 0 {
		secondsPerBlock = bowerbird.SecondsPerBlock
	}
	return &service{genesis: genesis, secondsPerBlock: secondsPerBlock}
}

func (s *service) Height(ctx context.Context) (uint64, error) {
	return bowerbird.CurrentBlock(ctx, s.secondsPerBlock, s.genesis)
}

// Fixed is a clock pinned to one height, for tests and replays.
type Fixed uint64

func (f Fixed) Height(ctx context.Context) (uint64, error) {
	return uint64(f), nil
}
