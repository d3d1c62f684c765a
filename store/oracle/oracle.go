package oracle

import (
	"context"
	"encoding/json"
	"time"

	"bowerbird/core"
	"bowerbird/pkg/kv"
)

const (
	requestKey = "req/"
	signerKey  = "sgn/"
)

type oracleStore struct{}

// New new oracle request store
func New() core.OracleRequestStore {
	return &oracleStore{}
}

func (s *oracleStore) Create(ctx context.Context, h kv.Handle, req *core.OracleRequest) error {
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}

	return kv.NewMap(h, requestKey).Put(req.ID, b)
}

func (s *oracleStore) List(ctx context.Context, h kv.Handle, limit int) ([]*core.OracleRequest, error) {
	if limit <= 0 {
		limit = 100
	}

	var (
		requests []*core.OracleRequest
		scanErr  error
	)

	err := kv.NewMap(h, requestKey).Range(func(k string, v []byte) bool {
		var req core.OracleRequest
		if err := json.Unmarshal(v, &req); err != nil {
			scanErr = err
			return false
		}

		requests = append(requests, &req)
		return len(requests) < limit
	})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}

	return requests, nil
}

func (s *oracleStore) Delete(ctx context.Context, h kv.Handle, id string) error {
	return kv.NewMap(h, requestKey).Delete(id)
}

type signerStore struct{}

// NewSignerStore new oracle signer store
func NewSignerStore() core.OracleSignerStore {
	return &signerStore{}
}

func (s *signerStore) Save(ctx context.Context, h kv.Handle, id string, publicKey []byte) error {
	b, err := json.Marshal(&core.OracleSigner{
		ID:        id,
		PublicKey: publicKey,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	return kv.NewMap(h, signerKey).Put(id, b)
}

func (s *signerStore) Delete(ctx context.Context, h kv.Handle, id string) error {
	return kv.NewMap(h, signerKey).Delete(id)
}

func (s *signerStore) FindAll(ctx context.Context, h kv.Handle) ([]*core.OracleSigner, error) {
	var (
		signers []*core.OracleSigner
		scanErr error
	)

	err := kv.NewMap(h, signerKey).Range(func(k string, v []byte) bool {
		var signer core.OracleSigner
		if err := json.Unmarshal(v, &signer); err != nil {
			scanErr = err
			return false
		}

		signers = append(signers, &signer)
		return true
	})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}

	return signers, nil
}
