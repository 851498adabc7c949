package types

import (
	"errors"
	"strings"
)

// Config selects the storage backend and carries its parameters.
type Config struct {
	Storage    string `yaml:"storage" mapstructure:"storage"`
	FilePath   string `yaml:"file_path,omitempty" mapstructure:"file_path"`
	SQLitePath string `yaml:"sqlite_path,omitempty" mapstructure:"sqlite_path"`
	BadgerDir  string `yaml:"badger_dir,omitempty" mapstructure:"badger_dir"`
	LogLevel   string `yaml:"log_level,omitempty" mapstructure:"log_level"`
}

// Supported storage backend names.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageBadger = "badger"

	// StorageAliasDB is the legacy selector for the database backend.
	StorageAliasDB = "db"
)

// Default backend parameters.
const (
	DefaultFilePath   = "hbnb.json"
	DefaultSQLitePath = "hbnb.db"
	DefaultBadgerDir  = "hbnb.badger"
	DefaultLogLevel   = "warn"
)

// Config validation errors.
var (
	ErrStorageEmpty   = errors.New("storage must not be empty")
	ErrStorageUnknown = errors.New("unknown storage")
)

// knownStorages lists the backends that Validate accepts.
var knownStorages = map[string]bool{
	StorageFile:   true,
	StorageSQLite: true,
	StorageBadger: true,
}

// NormalizeStorage lowercases a backend selector and resolves aliases.
func NormalizeStorage(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == StorageAliasDB {
		return StorageSQLite
	}
	return name
}

// Validate checks that the Config names a known backend.
func (c Config) Validate() error {
	storage := NormalizeStorage(c.Storage)
	if storage == "" {
		return ErrStorageEmpty
	}
	if !knownStorages[storage] {
		return ErrStorageUnknown
	}
	return nil
}

// WithDefaults returns a copy of c with empty fields filled in.
func (c Config) WithDefaults() Config {
	c.Storage = NormalizeStorage(c.Storage)
	if c.Storage == "" {
		c.Storage = StorageFile
	}
	if c.FilePath == "" {
		c.FilePath = DefaultFilePath
	}
	if c.SQLitePath == "" {
		c.SQLitePath = DefaultSQLitePath
	}
	if c.BadgerDir == "" {
		c.BadgerDir = DefaultBadgerDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return c
}
