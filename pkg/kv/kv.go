package kv

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Handle is the storage access path shared by the database and a pending
// transaction. Stores accept a Handle so the same repository code serves
// both the read-only view and the transactional read/write view.
type Handle interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	Has(key []byte, ro *opt.ReadOptions) (bool, error)
	Put(key, value []byte, wo *opt.WriteOptions) error
	Delete(key []byte, wo *opt.WriteOptions) error
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

// Store wraps a leveldb database. Every inbound operation runs inside one
// transaction; discarding the transaction aborts the operation with no
// partial effects.
type Store struct {
	db *leveldb.DB
}

// Open opens the database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// OpenMem opens an in-memory database, for tests and local runs.
func OpenMem() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// View returns the read path.
func (s *Store) View() Handle {
	return s.db
}

// Begin opens the read/write path. leveldb serializes transactions, which
// matches the one-operation-at-a-time execution model.
func (s *Store) Begin() (*Tx, error) {
	tr, err := s.db.OpenTransaction()
	if err != nil {
		return nil, err
	}

	return &Tx{tr: tr}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx is a pending all-or-nothing operation.
type Tx struct {
	tr   *leveldb.Transaction
	done bool
}

func (t *Tx) Get(key []byte, ro *opt.ReadOptions) ([]byte, error) {
	return t.tr.Get(key, ro)
}

func (t *Tx) Has(key []byte, ro *opt.ReadOptions) (bool, error) {
	return t.tr.Has(key, ro)
}

func (t *Tx) Put(key, value []byte, wo *opt.WriteOptions) error {
	return t.tr.Put(key, value, wo)
}

func (t *Tx) Delete(key []byte, wo *opt.WriteOptions) error {
	return t.tr.Delete(key, wo)
}

func (t *Tx) NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator {
	return t.tr.NewIterator(slice, ro)
}

// Commit makes the operation's writes durable.
func (t *Tx) Commit() error {
	t.done = true
	return t.tr.Commit()
}

// Discard aborts the operation. Safe to call after Commit, so it can be
// deferred.
func (t *Tx) Discard() {
	if !t.done {
		t.tr.Discard()
		t.done = true
	}
}

// IsNotFound reports whether err means the key is absent.
func IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}
