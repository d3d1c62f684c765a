package core

import (
	"context"
	"time"

	"bowerbird/pkg/kv"
	"github.com/holiman/uint256"
)

// Output is an incoming transfer waiting to be settled by the payee
// worker. Memo carries the msgpack-encoded TransferData, base64'd.
type Output struct {
	ID        uint64       `json:"id"`
	TraceID   string       `json:"trace_id"`
	Sender    Address      `json:"sender"`
	Receiver  Address      `json:"receiver"`
	Asset     Address      `json:"asset"`
	Amount    *uint256.Int `json:"amount"`
	Memo      string       `json:"memo"`
	CreatedAt time.Time    `json:"created_at"`
}

// OutputStore queues transfers for the payee worker. The checkpoint
// records the last settled output id so restarts resume in order.
type OutputStore interface {
	Enqueue(ctx context.Context, h kv.Handle, output *Output) error
	ListAfter(ctx context.Context, h kv.Handle, checkpoint uint64, limit int) ([]*Output, error)
	Checkpoint(ctx context.Context, h kv.Handle) (uint64, error)
	SetCheckpoint(ctx context.Context, h kv.Handle, id uint64) error
}
