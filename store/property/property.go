package property

import (
	"context"
	"encoding/binary"

	"bowerbird/core"
	"bowerbird/pkg/kv"
)

const prefix = "p/"

type propertyStore struct{}

// New new property store
func New() core.PropertyStore {
	return &propertyStore{}
}

func (s *propertyStore) Get(ctx context.Context, h kv.Handle, key string) ([]byte, error) {
	return kv.NewMap(h, prefix).Get(key)
}

func (s *propertyStore) Set(ctx context.Context, h kv.Handle, key string, value []byte) error {
	return kv.NewMap(h, prefix).Put(key, value)
}

func (s *propertyStore) GetAddress(ctx context.Context, h kv.Handle, key string) (core.Address, error) {
	b, err := s.Get(ctx, h, key)
	if err != nil {
		return core.Address{}, err
	}

	if len(b) == 0 {
		return core.Address{}, nil
	}

	return core.NewAddress(b)
}

func (s *propertyStore) SetAddress(ctx context.Context, h kv.Handle, key string, addr core.Address) error {
	return s.Set(ctx, h, key, addr.Bytes())
}

func (s *propertyStore) GetUint64(ctx context.Context, h kv.Handle, key string) (uint64, error) {
	b, err := s.Get(ctx, h, key)
	if err != nil {
		return 0, err
	}

	if len(b) == 0 {
		return 0, nil
	}

	return binary.BigEndian.Uint64(b), nil
}

func (s *propertyStore) SetUint64(ctx context.Context, h kv.Handle, key string, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return s.Set(ctx, h, key, b[:])
}
