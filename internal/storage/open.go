package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// OpenBackend creates the backend selected by cfg.Storage.
func OpenBackend(cfg types.Config, logger *zap.Logger) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	switch cfg.Storage {
	case types.StorageFile:
		return NewFileBackend(cfg.FilePath), nil
	case types.StorageSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case types.StorageBadger:
		return OpenBadger(BadgerOptions{Dir: cfg.BadgerDir, Logger: logger})
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrStorageUnknown, cfg.Storage)
	}
}

// Open creates the configured backend, wraps it in a Store, and reloads
// the persisted snapshot. The caller must Close the returned store.
func Open(cfg types.Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	backend, err := OpenBackend(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}

	s := New(backend, WithLogger(logger))
	if err := s.Reload(); err != nil {
		backend.Close()
		return nil, err
	}
	logger.Debug("store opened",
		zap.String("storage", types.NormalizeStorage(cfg.Storage)),
		zap.Int("entities", s.Len()))
	return s, nil
}
