package storage

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/hbnb/internal/models"
)

// snapshotPrefix namespaces snapshot members inside the badger keyspace.
// Member keys are the prefix plus a zero-padded position so that badger's
// sorted iteration yields insertion order.
const snapshotPrefix = "snapshot/"

// badgerRecord is the value stored under each snapshot member key.
type badgerRecord struct {
	Key    string         `json:"key"`
	Fields *models.Fields `json:"fields"`
}

// BadgerBackend keeps the snapshot in a BadgerDB directory.
type BadgerBackend struct {
	db *badger.DB
}

// BadgerOptions configures the BadgerDB backend.
type BadgerOptions struct {
	// Dir is the database directory. If empty, uses in-memory mode.
	Dir string
	// Logger receives badger's internal logging. If nil, logging is disabled.
	Logger *zap.Logger
}

// OpenBadger opens the badger database described by opts.
func OpenBadger(opts BadgerOptions) (*BadgerBackend, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir)
	if opts.Dir == "" {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(badgerLogger{opts.Logger.Sugar()})
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

// Load iterates the snapshot members in key order.
func (b *BadgerBackend) Load() ([]Entry, error) {
	var entries []Entry
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := []byte(snapshotPrefix)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("reading %s: %w", item.Key(), err)
			}
			var rec badgerRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("decoding %s: %w", item.Key(), err)
			}
			if rec.Fields == nil {
				rec.Fields = models.NewFields()
			}
			entries = append(entries, Entry{Key: rec.Key, Fields: rec.Fields})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Save deletes every existing member and writes entries in one
// read-write transaction.
func (b *BadgerBackend) Save(entries []Entry) error {
	return b.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(snapshotPrefix)
		var stale [][]byte
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("deleting %s: %w", key, err)
			}
		}

		for i, entry := range entries {
			data, err := json.Marshal(badgerRecord{Key: entry.Key, Fields: entry.Fields})
			if err != nil {
				return fmt.Errorf("encoding %s: %w", entry.Key, err)
			}
			if err := txn.Set(memberKey(i), data); err != nil {
				return fmt.Errorf("writing %s: %w", entry.Key, err)
			}
		}
		return nil
	})
}

// Close closes the database. Idempotent.
func (b *BadgerBackend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func memberKey(position int) []byte {
	return []byte(fmt.Sprintf("%s%010d", snapshotPrefix, position))
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...any)   { l.s.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...any) { l.s.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...any)    { l.s.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...any)   { l.s.Debugf(format, args...) }
