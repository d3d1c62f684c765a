package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Map is a namespaced sub-map over a Handle, the equivalent of a storage
// context map on the host chain. Keys inside the map are plain strings;
// missing keys read as nil.
type Map struct {
	h      Handle
	prefix []byte
}

// NewMap builds a sub-map rooted at prefix.
func NewMap(h Handle, prefix string) Map {
	return Map{h: h, prefix: []byte(prefix)}
}

func (m Map) key(k string) []byte {
	key := make([]byte, 0, len(m.prefix)+len(k))
	key = append(key, m.prefix...)
	key = append(key, k...)
	return key
}

// Get returns the stored value, or nil when absent.
func (m Map) Get(k string) ([]byte, error) {
	v, err := m.h.Get(m.key(k), nil)
	if IsNotFound(err) {
		return nil, nil
	}

	return v, err
}

func (m Map) Put(k string, v []byte) error {
	return m.h.Put(m.key(k), v, nil)
}

func (m Map) Delete(k string) error {
	err := m.h.Delete(m.key(k), nil)
	if IsNotFound(err) {
		return nil
	}

	return err
}

func (m Map) Has(k string) (bool, error) {
	ok, err := m.h.Has(m.key(k), nil)
	if IsNotFound(err) {
		return false, nil
	}

	return ok, err
}

// Range calls fn for every key under the map's prefix, in key order, with
// the prefix stripped. fn returning false stops the scan.
func (m Map) Range(fn func(k string, v []byte) bool) error {
	iter := m.h.NewIterator(util.BytesPrefix(m.prefix), nil)
	defer iter.Release()

	for iter.Next() {
		k := string(iter.Key()[len(m.prefix):])
		v := append([]byte(nil), iter.Value()...)
		if !fn(k, v) {
			break
		}
	}

	return iter.Error()
}
