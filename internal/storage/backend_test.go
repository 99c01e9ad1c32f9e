package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend(t *testing.T) {
	t.Run("missing file is ErrNotFound", func(t *testing.T) {
		backend := NewFileBackend(filepath.Join(t.TempDir(), "tasks.json"))

		_, err := backend.Load()

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		backend := NewFileBackend(filepath.Join(t.TempDir(), "tasks.json"))

		require.NoError(t, backend.Save([]byte(`[{"id":"task_1"}]`)))
		got, err := backend.Load()

		require.NoError(t, err)
		assert.Equal(t, []byte(`[{"id":"task_1"}]`), got)
	})

	t.Run("creates missing parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "deeper", "tasks.json")
		backend := NewFileBackend(path)

		require.NoError(t, backend.Save([]byte("[]")))
		got, err := backend.Load()

		require.NoError(t, err)
		assert.Equal(t, []byte("[]"), got)
	})

	t.Run("save overwrites previous record", func(t *testing.T) {
		backend := NewFileBackend(filepath.Join(t.TempDir(), "tasks.json"))

		require.NoError(t, backend.Save([]byte("first")))
		require.NoError(t, backend.Save([]byte("second")))
		got, err := backend.Load()

		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})
}

func TestMemoryBackend(t *testing.T) {
	backend := NewMemoryBackend()

	_, err := backend.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, backend.Save([]byte("payload")))
	got, err := backend.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestRecordBackend(t *testing.T) {
	t.Run("empty database is ErrNotFound", func(t *testing.T) {
		backend, err := OpenRecordBackend(filepath.Join(t.TempDir(), "tasks.db"))
		require.NoError(t, err)
		defer backend.Close()

		_, err = backend.Load()

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		backend, err := OpenRecordBackend(filepath.Join(t.TempDir(), "tasks.db"))
		require.NoError(t, err)
		defer backend.Close()

		require.NoError(t, backend.Save([]byte(`[{"id":"task_1"}]`)))
		require.NoError(t, backend.Save([]byte(`[]`)))
		got, err := backend.Load()

		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), got)
	})

	t.Run("record survives reopening", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.db")

		backend, err := OpenRecordBackend(path)
		require.NoError(t, err)
		require.NoError(t, backend.Save([]byte("durable")))
		require.NoError(t, backend.Close())

		reopened, err := OpenRecordBackend(path)
		require.NoError(t, err)
		defer reopened.Close()

		got, err := reopened.Load()
		require.NoError(t, err)
		assert.Equal(t, []byte("durable"), got)
	})
}
