package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hbnb/internal/models"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// backendFactory opens a fresh backend rooted in dir. Calling it twice with
// the same dir must reach the same persisted data.
type backendFactory func(t *testing.T, dir string) Backend

var backendFactories = map[string]backendFactory{
	"file": func(t *testing.T, dir string) Backend {
		return NewFileBackend(filepath.Join(dir, "hbnb.json"))
	},
	"sqlite": func(t *testing.T, dir string) Backend {
		b, err := OpenSQLite(filepath.Join(dir, "hbnb.db"))
		require.NoError(t, err)
		return b
	},
	"badger": func(t *testing.T, dir string) Backend {
		b, err := OpenBadger(BadgerOptions{Dir: filepath.Join(dir, "badger")})
		require.NoError(t, err)
		return b
	},
}

func sampleEntries() []Entry {
	user := models.KindUser.New(nil)
	_ = user.Set("email", types.StringValue("airbnb@mail.com"))
	_ = user.Set("first_name", types.StringValue("Betty"))
	place := models.KindPlace.New(nil)
	_ = place.Set("number_rooms", types.IntValue(4))
	_ = place.Set("latitude", types.FloatValue(37.77))
	state := models.KindState.New(nil)

	var entries []Entry
	for _, e := range []*models.Entity{user, place, state} {
		entries = append(entries, Entry{Key: e.Key(), Fields: e.ToFields()})
	}
	return entries
}

func entryKeys(entries []Entry) []string {
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys
}

func TestBackendsEmptyLoad(t *testing.T) {
	for name, open := range backendFactories {
		t.Run(name, func(t *testing.T) {
			b := open(t, t.TempDir())
			defer b.Close()

			entries, err := b.Load()
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	for name, open := range backendFactories {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			want := sampleEntries()

			b := open(t, dir)
			require.NoError(t, b.Save(want))
			require.NoError(t, b.Close())

			b = open(t, dir)
			defer b.Close()
			got, err := b.Load()
			require.NoError(t, err)

			require.Equal(t, entryKeys(want), entryKeys(got))
			for i := range want {
				wantJSON, err := want[i].Fields.MarshalJSON()
				require.NoError(t, err)
				gotJSON, err := got[i].Fields.MarshalJSON()
				require.NoError(t, err)
				assert.Equal(t, string(wantJSON), string(gotJSON))
			}
		})
	}
}

func TestBackendsSaveReplacesWholeSnapshot(t *testing.T) {
	for name, open := range backendFactories {
		t.Run(name, func(t *testing.T) {
			b := open(t, t.TempDir())
			defer b.Close()

			entries := sampleEntries()
			require.NoError(t, b.Save(entries))
			require.NoError(t, b.Save(entries[1:2]))

			got, err := b.Load()
			require.NoError(t, err)
			assert.Equal(t, entryKeys(entries[1:2]), entryKeys(got))

			require.NoError(t, b.Save(nil))
			got, err = b.Load()
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestBackendsCloseIsIdempotent(t *testing.T) {
	for name, open := range backendFactories {
		t.Run(name, func(t *testing.T) {
			b := open(t, t.TempDir())
			require.NoError(t, b.Close())
			require.NoError(t, b.Close())
		})
	}
}

func TestBadgerInMemory(t *testing.T) {
	b, err := OpenBadger(BadgerOptions{})
	require.NoError(t, err)
	defer b.Close()

	entries := sampleEntries()
	require.NoError(t, b.Save(entries))
	got, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, entryKeys(entries), entryKeys(got))
}
