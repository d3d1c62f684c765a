package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapNamespacing(t *testing.T) {
	store, err := OpenMem()
	require.NoError(t, err)
	defer store.Close()

	tx, err := store.Begin()
	require.NoError(t, err)
	defer tx.Discard()

	a := NewMap(tx, "a/")
	b := NewMap(tx, "b/")

	require.NoError(t, a.Put("k", []byte("va")))
	require.NoError(t, b.Put("k", []byte("vb")))

	v, err := a.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "va", string(v))

	// missing keys read as nil, not an error
	v, err = a.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	ok, err := a.Has("k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, a.Delete("k"))
	ok, err = a.Has("k")
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting twice is fine
	require.NoError(t, a.Delete("k"))
}

func TestMapRange(t *testing.T) {
	store, err := OpenMem()
	require.NoError(t, err)
	defer store.Close()

	tx, err := store.Begin()
	require.NoError(t, err)
	defer tx.Discard()

	m := NewMap(tx, "m/")
	require.NoError(t, m.Put("a", []byte("1")))
	require.NoError(t, m.Put("b", []byte("2")))
	require.NoError(t, m.Put("c", []byte("3")))
	require.NoError(t, NewMap(tx, "n/").Put("x", []byte("9")))

	var keys []string
	require.NoError(t, m.Range(func(k string, v []byte) bool {
		keys = append(keys, k)
		return true
	}))
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	// early stop
	keys = keys[:0]
	require.NoError(t, m.Range(func(k string, v []byte) bool {
		keys = append(keys, k)
		return false
	}))
	assert.Equal(t, []string{"a"}, keys)
}

func TestTxDiscardAbortsWrites(t *testing.T) {
	store, err := OpenMem()
	require.NoError(t, err)
	defer store.Close()

	tx, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, NewMap(tx, "").Put("k", []byte("v")))
	tx.Discard()

	v, err := NewMap(store.View(), "").Get("k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTxCommitPersists(t *testing.T) {
	store, err := OpenMem()
	require.NoError(t, err)
	defer store.Close()

	tx, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, NewMap(tx, "").Put("k", []byte("v")))
	require.NoError(t, tx.Commit())

	// deferred Discard after Commit must not unwind anything
	tx.Discard()

	v, err := NewMap(store.View(), "").Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
}
