package boltblob

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/roleshuffle/internal/blobstore"
)

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(" ")
	assert.Error(t, err)
}

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "teams.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "savedTeams")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, s.Put(ctx, "savedTeams", []byte(`[{"id":"a"}]`)))
	got, err := s.Get(ctx, "savedTeams")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got))

	require.NoError(t, s.Put(ctx, "savedTeams", []byte(`[]`)))
	got, err = s.Get(ctx, "savedTeams")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "teams.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestStore_CanceledContext(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "teams.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, "k", []byte("v")), context.Canceled)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_EmptyKey(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "teams.db"))
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Put(ctx, "", []byte("v")))
	_, err = s.Get(ctx, "")
	assert.Error(t, err)
}
