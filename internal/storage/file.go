package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/hbnb/internal/models"
)

// FileBackend keeps the snapshot as a single JSON object mapping store
// keys to serialized fields.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend reading and writing the snapshot at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load reads the snapshot. A missing or blank file yields no entries.
func (b *FileBackend) Load() ([]Entry, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	entries, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", b.path, err)
	}
	return entries, nil
}

// Save writes entries to the snapshot path, replacing any prior file.
func (b *FileBackend) Save(entries []Entry) error {
	data, err := encodeSnapshot(entries)
	if err != nil {
		return err
	}
	return writeFileAtomic(b.path, data)
}

// Close is a no-op; the file is only open during Load and Save.
func (b *FileBackend) Close() error { return nil }

// encodeSnapshot renders entries as one JSON object in entry order.
func encodeSnapshot(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range entries {
		if i > 0 {
			buf.WriteString(", ")
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		fields, err := entry.Fields.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", entry.Key, err)
		}
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(fields)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeSnapshot parses a snapshot object, keeping member order.
func decodeSnapshot(data []byte) ([]Entry, error) {
	var entries []Entry
	err := models.DecodeObject(data, func(key string, raw json.RawMessage) error {
		f := models.NewFields()
		if err := f.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("entry %q: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Fields: f})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// writeFileAtomic writes data to path using the temp-file, fsync, rename
// pattern so readers never observe a partial snapshot.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
