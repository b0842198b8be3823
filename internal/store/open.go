package store

import (
	"fmt"
	"io"

	"fuel-tracker/internal/config"
	"fuel-tracker/internal/service"
)

// Backend is a store the binaries own and must close on shutdown.
type Backend interface {
	service.EntryStore
	io.Closer
}

// Open returns the storage backend selected in cfg.
func Open(cfg *config.Config) (Backend, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		s, err := NewJSONStore(cfg.DataFile, cfg.BackupDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
