package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("migrations reach the latest version", func(t *testing.T) {
		s := newTestSQLite(t)
		v, err := s.SchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, migrations[len(migrations)-1].version, v)
	})

	t.Run("missing key is absent", func(t *testing.T) {
		s := newTestSQLite(t)
		_, err := s.Load(ctx, KeyProjects)
		assert.ErrorIs(t, err, ErrAbsent)
	})

	t.Run("save overwrites the whole value", func(t *testing.T) {
		s := newTestSQLite(t)
		require.NoError(t, s.Save(ctx, KeyProjects, []byte(`[{"id":"a"}]`)))
		require.NoError(t, s.Save(ctx, KeyProjects, []byte(`[]`)))

		got, err := s.Load(ctx, KeyProjects)
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newTestSQLite(t)
		require.NoError(t, s.Save(ctx, KeyProjects, []byte(`"p"`)))
		require.NoError(t, s.Save(ctx, KeyNotifications, []byte(`"n"`)))
		require.NoError(t, s.Delete(ctx, KeyProjects))

		_, err := s.Load(ctx, KeyProjects)
		assert.ErrorIs(t, err, ErrAbsent)

		got, err := s.Load(ctx, KeyNotifications)
		require.NoError(t, err)
		assert.Equal(t, `"n"`, string(got))

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{KeyNotifications}, keys)
	})

	t.Run("deleting a missing key is fine", func(t *testing.T) {
		s := newTestSQLite(t)
		assert.NoError(t, s.Delete(ctx, "nope"))
	})
}
