package persist

import (
	"fmt"

	"github.com/fairyhunter13/product-catalog-manager/internal/config"
	"github.com/fairyhunter13/product-catalog-manager/internal/store"
)

// Backend is a store backend that can be inspected and closed.
type Backend interface {
	store.Backend
	Path() string
	Exists() bool
	Close() error
}

// Open returns the backend selected by cfg. With create unset, a missing
// SQLite database is an error; a missing JSON file is reported later by Load.
func Open(cfg config.StorageConfig, create bool) (Backend, error) {
	switch cfg.Driver {
	case config.DriverFile:
		return NewFile(cfg.Path), nil
	case config.DriverSQLite:
		db, err := OpenSQLite(cfg.Path, create)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Close is a no-op; the file is only open during Load and Persist.
func (f *File) Close() error { return nil }
