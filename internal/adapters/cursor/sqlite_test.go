package cursor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	s := newStore(t, filepath.Join(t.TempDir(), "cursor.db"))

	id, ok, err := s.Load(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), id)
}

func TestSQLiteStore_Save(t *testing.T) {
	tests := []struct {
		name  string
		saves []int64
		want  int64
	}{
		{name: "single save", saves: []int64{10}, want: 10},
		{name: "advances", saves: []int64{10, 11, 1400000000000000001}, want: 1400000000000000001},
		{name: "never moves backwards", saves: []int64{20, 5}, want: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, filepath.Join(t.TempDir(), "cursor.db"))

			for _, id := range tt.saves {
				require.NoError(t, s.Save(t.Context(), id))
			}

			id, ok, err := s.Load(t.Context())
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cursor.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(t.Context(), 42))
	require.NoError(t, s.Close())

	reopened := newStore(t, path)

	id, ok, err := reopened.Load(t.Context())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}
