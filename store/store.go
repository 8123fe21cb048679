// ABOUTME: Contact store abstraction shared by the SQLite and Badger backends
// ABOUTME: Open picks the backend named in the configuration

package store

import (
	"context"
	"fmt"

	"github.com/mycrew/mycrew/config"
	"github.com/mycrew/mycrew/db"
	"github.com/mycrew/mycrew/kv"
	"github.com/mycrew/mycrew/models"
)

// Store persists contacts. Writes normalize job titles and validate
// locations; Get, Update, Delete and SetFavorite return
// models.ErrContactNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, contact *models.Contact) (string, error)
	Get(ctx context.Context, id string) (*models.Contact, error)
	GetAll(ctx context.Context) ([]models.Contact, error)
	Search(ctx context.Context, query string, limit int) ([]models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, id string) error
	SetFavorite(ctx context.Context, id string, favorite bool) error

	// FindByNameAndPhone returns nil, nil when no contact matches.
	FindByNameAndPhone(ctx context.Context, fullName, phone string) (*models.Contact, error)

	Close() error
}

var (
	_ Store = (*db.ContactsRepository)(nil)
	_ Store = (*kv.Store)(nil)
)

// Open opens the backend selected by cfg.Backend.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		repo, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return repo, nil
	case config.BackendBadger:
		s, err := kv.Open(cfg.KVDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open kv store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Memory returns an empty in-memory store, used by tests and dry runs.
func Memory() (Store, error) {
	return kv.Open("")
}
