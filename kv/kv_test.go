package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	mr := miniredis.RunT(t)
	rds := NewRedis(mr.Addr(), "", "folio:")
	t.Cleanup(func() { rds.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
		"redis":  rds,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "projects")
			require.NoError(t, err)
			assert.False(t, ok, "absent key must report ok=false")

			require.NoError(t, s.Set(ctx, "projects", `[{"id":"a"}]`))
			v, ok, err := s.Get(ctx, "projects")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":"a"}]`, v)

			require.NoError(t, s.Set(ctx, "projects", `[]`))
			v, _, err = s.Get(ctx, "projects")
			require.NoError(t, err)
			assert.Equal(t, `[]`, v)

			require.NoError(t, s.Delete(ctx, "projects"))
			_, ok, err = s.Get(ctx, "projects")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, s.Delete(ctx, "never-written"))
		})
	}
}

func TestRedisPrefixesKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedis(mr.Addr(), "", "folio:")
	defer s.Close()

	require.NoError(t, s.Set(context.Background(), "isAuthenticated", "true"))
	got, err := mr.Get("folio:isAuthenticated")
	require.NoError(t, err)
	assert.Equal(t, "true", got)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "k", "v"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestMemoryFailWrites(t *testing.T) {
	m := NewMemory()
	m.FailWrites(true)
	assert.ErrorIs(t, m.Set(context.Background(), "k", "v"), ErrWriteFailed)
	assert.ErrorIs(t, m.Delete(context.Background(), "k"), ErrWriteFailed)

	m.FailWrites(false)
	assert.NoError(t, m.Set(context.Background(), "k", "v"))
}
