package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hbnb/internal/models"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// memoryBackend keeps the last saved snapshot in memory.
type memoryBackend struct {
	entries []Entry
	saves   int
	loadErr error
	saveErr error
	closed  bool
}

func (b *memoryBackend) Load() ([]Entry, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return b.entries, nil
}

func (b *memoryBackend) Save(entries []Entry) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saves++
	b.entries = entries
	return nil
}

func (b *memoryBackend) Close() error {
	b.closed = true
	return nil
}

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hbnb.json")
	s := New(NewFileBackend(path))
	require.NoError(t, s.Reload())
	return s, path
}

func TestStoreLifecycle(t *testing.T) {
	s := New(&memoryBackend{})
	assert.False(t, s.Live())
	require.NoError(t, s.Reload())
	assert.True(t, s.Live())
}

func TestCreateRegistersAndPersists(t *testing.T) {
	b := &memoryBackend{}
	s := New(b)

	e, err := s.Create(models.KindUser)
	require.NoError(t, err)

	got, ok := s.Get("User." + e.ID())
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.Equal(t, 1, b.saves)
	require.Len(t, b.entries, 1)
	assert.Equal(t, e.Key(), b.entries[0].Key)
}

func TestRegisterOverwrites(t *testing.T) {
	s := New(&memoryBackend{})
	e := models.KindCity.New(s)
	s.Register(e)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{e.Key()}, s.Keys())
}

func TestLookup(t *testing.T) {
	s := New(&memoryBackend{})
	e := models.KindAmenity.New(s)

	got, err := s.Lookup(models.KindAmenity, e.ID())
	require.NoError(t, err)
	assert.Same(t, e, got)

	_, err = s.Lookup(models.KindUser, e.ID())
	assert.ErrorIs(t, err, types.ErrNoSuchInstance)
}

func TestDeleteRemovesExactlyOneKey(t *testing.T) {
	b := &memoryBackend{}
	s := New(b)
	a := models.KindUser.New(s)
	c := models.KindUser.New(s)
	d := models.KindPlace.New(s)

	require.NoError(t, s.Delete(models.KindUser, c.ID()))
	assert.Equal(t, []string{a.Key(), d.Key()}, s.Keys())
	assert.Equal(t, 1, b.saves)

	err := s.Delete(models.KindUser, c.ID())
	assert.ErrorIs(t, err, types.ErrNoSuchInstance)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, b.saves)
}

func TestCount(t *testing.T) {
	s := New(&memoryBackend{})
	for range 3 {
		models.KindUser.New(s)
	}
	for range 2 {
		models.KindReview.New(s)
	}

	assert.Equal(t, 3, s.Count(models.KindUser))
	assert.Equal(t, 2, s.Count(models.KindReview))
	assert.Equal(t, 0, s.Count(models.KindState))

	sum := 0
	for _, k := range models.Kinds() {
		sum += s.Count(k)
	}
	assert.Equal(t, s.Count(""), sum)
	assert.Equal(t, 5, sum)
}

func TestAllKeepsInsertionOrder(t *testing.T) {
	s := New(&memoryBackend{})
	var want []string
	for _, k := range []models.Kind{models.KindState, models.KindUser, models.KindBaseModel} {
		want = append(want, k.New(s).Key())
	}

	var got []string
	for _, e := range s.All() {
		got = append(got, e.Key())
	}
	assert.Equal(t, want, got)
}

func TestPersistReloadPreservesState(t *testing.T) {
	s, path := newFileStore(t)

	e, err := s.Create(models.KindPlace)
	require.NoError(t, err)
	require.NoError(t, e.Set("name", types.StringValue("x")))
	require.NoError(t, e.Set("max_guest", types.IntValue(10)))
	require.NoError(t, e.Save())
	_, err = s.Create(models.KindUser)
	require.NoError(t, err)

	reloaded := New(NewFileBackend(path))
	require.NoError(t, reloaded.Reload())

	assert.Equal(t, s.Keys(), reloaded.Keys())
	back, err := reloaded.Lookup(models.KindPlace, e.ID())
	require.NoError(t, err)
	name, _ := back.Get("name")
	assert.Equal(t, "x", name.String())
	guests, _ := back.Get("max_guest")
	assert.Equal(t, types.KindInt, guests.Kind())
	assert.True(t, e.UpdatedAt().Equal(back.UpdatedAt()))
	assert.Equal(t, e.String(), back.String())

	// Reloaded entities persist through the store that loaded them.
	require.NoError(t, back.Save())
}

func TestReloadMissingFileIsEmpty(t *testing.T) {
	s, path := newFileStore(t)
	assert.Equal(t, 0, s.Len())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReloadMalformedFileIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hbnb.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"User.1": `), 0o644))

	s := New(NewFileBackend(path))
	err := s.Reload()
	assert.ErrorIs(t, err, types.ErrCorruptSnapshot)
	assert.True(t, IsCorrupt(err))
}

func TestReloadUnknownTypeTagIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hbnb.json")
	content := `{"Town.1": {"id": "1", "created_at": "2017-09-28T21:03:54.052298", ` +
		`"updated_at": "2017-09-28T21:03:54.052302", "__class__": "Town"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := New(NewFileBackend(path))
	err := s.Reload()
	assert.ErrorIs(t, err, types.ErrCorruptSnapshot)
	assert.ErrorIs(t, err, types.ErrUnknownEntityType)
}

func TestReloadMismatchedKeyIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hbnb.json")
	content := `{"User.aaa": {"id": "bbb", "created_at": "2017-09-28T21:03:54.052298", ` +
		`"updated_at": "2017-09-28T21:03:54.052302", "__class__": "Place"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := New(NewFileBackend(path))
	err := s.Reload()
	assert.ErrorIs(t, err, types.ErrCorruptSnapshot)
	assert.Equal(t, 0, s.Len())
}

func TestReloadMissingTimestampsIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hbnb.json")
	content := `{"User.1": {"id": "1", "__class__": "User"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	err := New(NewFileBackend(path)).Reload()
	assert.ErrorIs(t, err, types.ErrCorruptSnapshot)
	assert.ErrorIs(t, err, types.ErrInvalidValue)
}

func TestReloadKeepsOversizedIntegers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hbnb.json")
	content := `{"User.1": {"id": "1", "created_at": "2017-09-28T21:03:54.052298", ` +
		`"updated_at": "2017-09-28T21:03:54.052302", "big": 12345678901234567890, "__class__": "User"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := New(NewFileBackend(path))
	require.NoError(t, s.Reload())
	require.NoError(t, s.Persist())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"big":12345678901234567890`)
}

func TestReloadFailureLeavesCollectionUntouched(t *testing.T) {
	b := &memoryBackend{}
	s := New(b)
	e := models.KindUser.New(s)

	b.loadErr = errors.New("disk on fire")
	err := s.Reload()
	assert.ErrorIs(t, err, types.ErrCorruptSnapshot)
	_, ok := s.Get(e.Key())
	assert.True(t, ok)
}

func TestPersistError(t *testing.T) {
	b := &memoryBackend{saveErr: errors.New("read-only")}
	s := New(b)
	_, err := s.Create(models.KindUser)
	assert.Error(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestClosedStore(t *testing.T) {
	b := &memoryBackend{}
	s := New(b)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, b.closed)

	assert.ErrorIs(t, s.Persist(), types.ErrStoreClosed)
	assert.ErrorIs(t, s.Reload(), types.ErrStoreClosed)
}
