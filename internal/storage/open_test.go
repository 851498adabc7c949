package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hbnb/internal/models"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

func TestOpenBackendSelection(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		storage string
		want    any
	}{
		{"file", &FileBackend{}},
		{"sqlite", &SQLiteBackend{}},
		{"db", &SQLiteBackend{}},
		{"badger", &BadgerBackend{}},
	}
	for _, tt := range tests {
		t.Run(tt.storage, func(t *testing.T) {
			cfg := types.Config{
				Storage:    tt.storage,
				FilePath:   filepath.Join(dir, tt.storage+".json"),
				SQLitePath: filepath.Join(dir, tt.storage+".db"),
				BadgerDir:  filepath.Join(dir, tt.storage+".badger"),
			}
			b, err := OpenBackend(cfg, nil)
			require.NoError(t, err)
			defer b.Close()
			assert.IsType(t, tt.want, b)
		})
	}
}

func TestOpenBackendRejectsUnknownStorage(t *testing.T) {
	_, err := OpenBackend(types.Config{Storage: "mysql"}, nil)
	assert.ErrorIs(t, err, types.ErrStorageUnknown)

	_, err = OpenBackend(types.Config{}, nil)
	assert.ErrorIs(t, err, types.ErrStorageEmpty)
}

func TestOpenReloadsSnapshot(t *testing.T) {
	cfg := types.Config{Storage: types.StorageFile, FilePath: filepath.Join(t.TempDir(), "hbnb.json")}

	s, err := Open(cfg, nil)
	require.NoError(t, err)
	e, err := s.Create(models.KindReview)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(cfg, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, s.Live())
	_, err = s.Lookup(models.KindReview, e.ID())
	assert.NoError(t, err)
}
