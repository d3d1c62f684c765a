package event

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"bowerbird/core"
	"bowerbird/pkg/kv"

	"github.com/yiplee/structs"
)

const (
	logKey = "ev/"
	seqKey = "evseq"
)

type eventStore struct{}

// New new event store
func New() core.EventStore {
	return &eventStore{}
}

// seqString renders the id fixed-width so leveldb's key order is the
// append order.
func seqString(id uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return string(b[:])
}

func (s *eventStore) Append(ctx context.Context, h kv.Handle, contract core.Address, name string, payload interface{}) error {
	m := kv.NewMap(h, logKey)

	raw, err := m.Get(seqKey)
	if err != nil {
		return err
	}

	var next uint64 = 1
	if len(raw) == 8 {
		next = binary.BigEndian.Uint64(raw) + 1
	}

	event := &core.Event{
		ID:        next,
		Name:      name,
		Contract:  contract.String(),
		CreatedAt: time.Now(),
	}
	if payload != nil {
		event.Data = structs.Map(payload)
	}

	b, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := m.Put(seqString(next), b); err != nil {
		return err
	}

	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], next)
	return m.Put(seqKey, seq[:])
}

func (s *eventStore) List(ctx context.Context, h kv.Handle, from uint64, limit int) ([]*core.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	var (
		events  []*core.Event
		scanErr error
	)

	err := kv.NewMap(h, logKey).Range(func(k string, v []byte) bool {
		if k == seqKey {
			return true
		}

		var event core.Event
		if err := json.Unmarshal(v, &event); err != nil {
			scanErr = err
			return false
		}

		if event.ID < from {
			return true
		}

		events = append(events, &event)
		return len(events) < limit
	})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}

	return events, nil
}
