package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lserrors "github.com/rileyhilliard/lsview/internal/errors"
)

func openBoth(t *testing.T) map[string]Store {
	t.Helper()
	file, err := Open(BackendFile, t.TempDir())
	require.NoError(t, err)
	db, err := Open(BackendSQLite, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		file.Close()
		db.Close()
	})
	return map[string]Store{"file": file, "sqlite": db}
}

func TestStore_LoadMissing(t *testing.T) {
	for name, s := range openBoth(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := s.Load(context.Background(), "alice", "viewoptions")
			require.NoError(t, err)
			assert.Nil(t, doc)
		})
	}
}

func TestStore_UpdateAndLoad(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBoth(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(ctx, "alice", "viewoptions", func(doc map[string]any) (map[string]any, error) {
				assert.Empty(t, doc)
				doc["allhosts"] = map[string]any{"ts_format": "epoch", "refresh": 30}
				return doc, nil
			})
			require.NoError(t, err)

			err = s.Update(ctx, "alice", "viewoptions", func(doc map[string]any) (map[string]any, error) {
				doc["allservices"] = map[string]any{"ts_date": "%Y-%m-%d"}
				return doc, nil
			})
			require.NoError(t, err)

			doc, err := s.Load(ctx, "alice", "viewoptions")
			require.NoError(t, err)
			assert.Equal(t, map[string]any{
				"allhosts":    map[string]any{"ts_format": "epoch", "refresh": int64(30)},
				"allservices": map[string]any{"ts_date": "%Y-%m-%d"},
			}, doc)

			other, err := s.Load(ctx, "bob", "viewoptions")
			require.NoError(t, err)
			assert.Nil(t, other)
		})
	}
}

func TestStore_UpdateErrorKeepsDocument(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBoth(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Update(ctx, "alice", "k", func(doc map[string]any) (map[string]any, error) {
				doc["a"] = "1"
				return doc, nil
			}))
			err := s.Update(ctx, "alice", "k", func(doc map[string]any) (map[string]any, error) {
				return nil, assert.AnError
			})
			assert.ErrorIs(t, err, assert.AnError)

			doc, err := s.Load(ctx, "alice", "k")
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"a": "1"}, doc)
		})
	}
}

func TestStore_ConcurrentUpdatesSerialize(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBoth(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := s.Update(ctx, "alice", "counter", func(doc map[string]any) (map[string]any, error) {
						n, _ := doc["n"].(int64)
						doc["n"] = n + 1
						return doc, nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			doc, err := s.Load(ctx, "alice", "counter")
			require.NoError(t, err)
			assert.Equal(t, int64(10), doc["n"])
		})
	}
}

func TestFileStore_RejectsPathNames(t *testing.T) {
	s := NewFileStore(t.TempDir())
	for _, user := range []string{"", "..", "a/b"} {
		_, err := s.Load(context.Background(), user, "viewoptions")
		assert.True(t, lserrors.IsCode(err, lserrors.ErrStore), user)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alice"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice", "viewoptions.yaml"), []byte("a: [b"), 0o600))

	_, err := NewFileStore(dir).Load(context.Background(), "alice", "viewoptions")
	assert.True(t, lserrors.IsCode(err, lserrors.ErrStore))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	assert.True(t, lserrors.IsCode(err, lserrors.ErrConfig))
}
