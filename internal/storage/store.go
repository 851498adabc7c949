// Package storage implements the object store: the in-memory collection
// of live entities keyed by "<Kind>.<id>", persisted as a whole through a
// pluggable Backend.
package storage

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/hbnb/internal/models"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Entry is one member of a snapshot: a store key and the entity's
// serialized fields, type tag included.
type Entry struct {
	Key    string
	Fields *models.Fields
}

// Backend persists and loads complete snapshots.
type Backend interface {
	// Load returns every persisted entry in insertion order. A backend
	// with nothing persisted yet returns no entries and no error.
	Load() ([]Entry, error)

	// Save replaces the persisted snapshot with entries, atomically.
	Save(entries []Entry) error

	// Close releases backend resources. Idempotent.
	Close() error
}

// Store holds every live entity. It is not safe for concurrent use.
type Store struct {
	backend Backend
	logger  *zap.Logger
	objects map[string]*models.Entity
	order   []string
	live    bool
	closed  bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty store persisting through b.
func New(b Backend, opts ...Option) *Store {
	s := &Store{
		backend: b,
		logger:  zap.NewNop(),
		objects: make(map[string]*models.Entity),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Live reports whether the store has been reloaded or used.
func (s *Store) Live() bool { return s.live }

// Register inserts e at its key, replacing any entity already there, and
// binds e to this store.
func (s *Store) Register(e *models.Entity) {
	e.Bind(s)
	s.put(e.Key(), e)
}

func (s *Store) put(key string, e *models.Entity) {
	s.live = true
	if _, ok := s.objects[key]; !ok {
		s.order = append(s.order, key)
	}
	s.objects[key] = e
}

// Get returns the entity stored at key.
func (s *Store) Get(key string) (*models.Entity, bool) {
	e, ok := s.objects[key]
	return e, ok
}

// Lookup returns the entity of kind k with the given id.
// Returns ErrNoSuchInstance if there is none.
func (s *Store) Lookup(k models.Kind, id string) (*models.Entity, error) {
	e, ok := s.objects[models.Key(k, id)]
	if !ok {
		return nil, types.ErrNoSuchInstance
	}
	return e, nil
}

// All returns the live entities in insertion order.
func (s *Store) All() []*models.Entity {
	out := make([]*models.Entity, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.objects[key])
	}
	return out
}

// Keys returns the live store keys in insertion order.
func (s *Store) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of live entities.
func (s *Store) Len() int { return len(s.objects) }

// Count returns the number of live entities of kind k, or of every kind
// when k is empty.
func (s *Store) Count(k models.Kind) int {
	if k == "" {
		return len(s.objects)
	}
	n := 0
	for _, e := range s.objects {
		if e.Kind() == k {
			n++
		}
	}
	return n
}

// Remove deletes key from the collection without persisting.
// Returns false if key was not present.
func (s *Store) Remove(key string) bool {
	if _, ok := s.objects[key]; !ok {
		return false
	}
	delete(s.objects, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Create constructs a fresh entity of kind k, registers it, and persists.
func (s *Store) Create(k models.Kind) (*models.Entity, error) {
	e := k.New(s)
	if err := s.Persist(); err != nil {
		return e, err
	}
	return e, nil
}

// Delete removes the entity of kind k with the given id and persists.
// Returns ErrNoSuchInstance without persisting if there is none.
func (s *Store) Delete(k models.Kind, id string) error {
	if !s.Remove(models.Key(k, id)) {
		return types.ErrNoSuchInstance
	}
	return s.Persist()
}

// Persist serializes every live entity and replaces the snapshot.
func (s *Store) Persist() error {
	if s.closed {
		return types.ErrStoreClosed
	}
	entries := make([]Entry, 0, len(s.order))
	for _, key := range s.order {
		entries = append(entries, Entry{Key: key, Fields: s.objects[key].ToFields()})
	}
	if err := s.backend.Save(entries); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	s.live = true
	s.logger.Debug("snapshot persisted", zap.Int("entities", len(entries)))
	return nil
}

// Reload replaces the collection with the persisted snapshot. A missing
// snapshot leaves the store empty. An unreadable snapshot, an entry whose
// type tag is not registered, or an entry stored under a key other than
// "<Kind>.<id>" fails with ErrCorruptSnapshot and leaves the collection
// untouched.
func (s *Store) Reload() error {
	if s.closed {
		return types.ErrStoreClosed
	}
	entries, err := s.backend.Load()
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrCorruptSnapshot, err)
	}

	objects := make(map[string]*models.Entity, len(entries))
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		e, err := models.Decode(entry.Fields)
		if err != nil {
			return fmt.Errorf("%w: entry %q: %w", types.ErrCorruptSnapshot, entry.Key, err)
		}
		if e.Key() != entry.Key {
			return fmt.Errorf("%w: entry %q holds %s", types.ErrCorruptSnapshot, entry.Key, e.Key())
		}
		e.Bind(s)
		if _, dup := objects[entry.Key]; !dup {
			order = append(order, entry.Key)
		}
		objects[entry.Key] = e
	}

	s.objects = objects
	s.order = order
	s.live = true
	s.logger.Debug("snapshot reloaded", zap.Int("entities", len(order)))
	return nil
}

// Close releases the backend. Further Persist and Reload calls fail with
// ErrStoreClosed.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.backend.Close()
}

// IsCorrupt reports whether err came from an unreadable snapshot.
func IsCorrupt(err error) bool {
	return errors.Is(err, types.ErrCorruptSnapshot)
}
