package output

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"bowerbird/core"
	"bowerbird/pkg/kv"
)

const (
	queueKey      = "out/"
	seqKey        = "outseq"
	checkpointKey = "outckpt"
)

type outputStore struct{}

// New new output store
func New() core.OutputStore {
	return &outputStore{}
}

func seqString(id uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return string(b[:])
}

func getUint64(h kv.Handle, key string) (uint64, error) {
	b, err := kv.NewMap(h, "").Get(key)
	if err != nil {
		return 0, err
	}

	if len(b) != 8 {
		return 0, nil
	}

	return binary.BigEndian.Uint64(b), nil
}

func putUint64(h kv.Handle, key string, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return kv.NewMap(h, "").Put(key, b[:])
}

func (s *outputStore) Enqueue(ctx context.Context, h kv.Handle, output *core.Output) error {
	seq, err := getUint64(h, seqKey)
	if err != nil {
		return err
	}

	output.ID = seq + 1
	if output.CreatedAt.IsZero() {
		output.CreatedAt = time.Now()
	}

	b, err := json.Marshal(output)
	if err != nil {
		return err
	}

	if err := kv.NewMap(h, queueKey).Put(seqString(output.ID), b); err != nil {
		return err
	}

	return putUint64(h, seqKey, output.ID)
}

func (s *outputStore) ListAfter(ctx context.Context, h kv.Handle, checkpoint uint64, limit int) ([]*core.Output, error) {
	if limit <= 0 {
		limit = 100
	}

	var (
		outputs []*core.Output
		scanErr error
	)

	err := kv.NewMap(h, queueKey).Range(func(k string, v []byte) bool {
		var output core.Output
		if err := json.Unmarshal(v, &output); err != nil {
			scanErr = err
			return false
		}

		if output.ID <= checkpoint {
			return true
		}

		outputs = append(outputs, &output)
		return len(outputs) < limit
	})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}

	return outputs, nil
}

func (s *outputStore) Checkpoint(ctx context.Context, h kv.Handle) (uint64, error) {
	return getUint64(h, checkpointKey)
}

func (s *outputStore) SetCheckpoint(ctx context.Context, h kv.Handle, id uint64) error {
	return putUint64(h, checkpointKey, id)
}
