package output

import (
	"context"
	"testing"

	"bowerbird/core"
	"bowerbird/pkg/kv"

	"github.com/fox-one/pkg/uuid"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(b byte) core.Address {
	var a core.Address
	a[0] = b
	return a
}

func TestQueueOrdering(t *testing.T) {
	ctx := context.Background()

	db, err := kv.OpenMem()
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Discard()

	s := New()

	for i := 0; i < 5; i++ {
		out := &core.Output{
			TraceID:  uuid.New(),
			Sender:   addr(0x10),
			Receiver: addr(0x11),
			Asset:    addr(0x01),
			Amount:   uint256.NewInt(uint64(i + 1)),
		}
		require.NoError(t, s.Enqueue(ctx, tx, out))
		assert.Equal(t, uint64(i+1), out.ID)
		assert.False(t, out.CreatedAt.IsZero())
	}

	outputs, err := s.ListAfter(ctx, tx, 0, 100)
	require.NoError(t, err)
	require.Len(t, outputs, 5)
	assert.Equal(t, "1", outputs[0].Amount.Dec())

	outputs, err = s.ListAfter(ctx, tx, 3, 100)
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	assert.Equal(t, uint64(4), outputs[0].ID)

	outputs, err = s.ListAfter(ctx, tx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, outputs, 2)
}

func TestCheckpoint(t *testing.T) {
	ctx := context.Background()

	db, err := kv.OpenMem()
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Discard()

	s := New()

	checkpoint, err := s.Checkpoint(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), checkpoint)

	require.NoError(t, s.SetCheckpoint(ctx, tx, 42))
	checkpoint, err = s.Checkpoint(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), checkpoint)
}
