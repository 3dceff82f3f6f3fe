package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixDB_Isolation(t *testing.T) {
	inner := NewMemory()
	accounts := NewPrefixDB(inner, []byte("a/"))
	receipts := NewPrefixDB(inner, []byte("r/"))

	require.NoError(t, accounts.Put([]byte("k"), []byte("acct")))
	require.NoError(t, receipts.Put([]byte("k"), []byte("rcpt")))

	got, err := accounts.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("acct"), got)

	got, err = inner.Get([]byte("r/k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("rcpt"), got)

	var keys []string
	require.NoError(t, accounts.ForEach(nil, func(k, v []byte) error {
		keys = append(keys, string(k))
		return nil
	}))
	assert.Equal(t, []string{"k"}, keys)
}

func TestPrefixDB_SharedBatch(t *testing.T) {
	inner := NewMemory()
	accounts := NewPrefixDB(inner, []byte("a/"))
	receipts := NewPrefixDB(inner, []byte("r/"))

	batch := inner.NewBatch()
	require.NoError(t, accounts.Wrap(batch).Put([]byte("1"), []byte("x")))
	require.NoError(t, receipts.Wrap(batch).Put([]byte("1"), []byte("y")))

	ok, _ := accounts.Has([]byte("1"))
	assert.False(t, ok)

	require.NoError(t, batch.Commit())
	ok, _ = accounts.Has([]byte("1"))
	assert.True(t, ok)
	ok, _ = receipts.Has([]byte("1"))
	assert.True(t, ok)
}

func TestPrefixDB_NewBatch(t *testing.T) {
	inner := NewMemory()
	p := NewPrefixDB(inner, []byte("m/"))
	b := p.NewBatch()
	require.NoError(t, b.Put([]byte("height"), []byte{1}))
	require.NoError(t, b.Commit())

	got, err := inner.Get([]byte("m/height"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, got)
}
