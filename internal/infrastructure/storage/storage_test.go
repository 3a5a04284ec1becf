package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	bolt, err := OpenBolt(filepath.Join(t.TempDir(), "nested", "slots.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"bolt":   bolt,
	}
}

func TestBackend_Contract(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.PutAll(ctx,
				Entry{Key: "a", Value: []byte("1")},
				Entry{Key: "b", Value: []byte("2")},
			))

			got, err := b.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, []byte("1"), got)

			require.NoError(t, Put(ctx, b, "a", []byte("3")))
			got, err = b.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, []byte("3"), got)

			require.NoError(t, b.Delete(ctx, "a", "b", "never-written"))
			_, err = b.Get(ctx, "b")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, b.Ping(ctx))
		})
	}
}

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	value := []byte("abc")
	require.NoError(t, Put(ctx, b, "k", value))
	value[0] = 'z'

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := b.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestBoltBackend_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "slots.db")

	first, err := OpenBolt(path, "slots")
	require.NoError(t, err)
	require.NoError(t, Put(ctx, first, "users", []byte(`[]`)))
	require.NoError(t, first.Close())

	second, err := OpenBolt(path, "slots")
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
	assert.Positive(t, second.Stats().TxN, "reads are counted")
}

func TestBoltBackend_ClosedDatabase(t *testing.T) {
	var b *BoltBackend
	_, err := b.Get(context.Background(), "x")
	assert.Error(t, err)
	assert.NoError(t, b.Close())
	assert.Zero(t, b.Stats().TxN)
}
