package providers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/repository"
	"github.com/km-arc/go-resolver/framework/repository/memory"
	"github.com/km-arc/go-resolver/framework/repository/sqlite"
)

// Store is the backing store entity repositories are opened on.
type Store struct {
	driver string
	db     *sql.DB
}

// OpenStore opens the store for driver ("memory" or "sqlite"). database is
// the sqlite path and is ignored for memory.
func OpenStore(driver, database string) (*Store, error) {
	switch strings.ToLower(driver) {
	case "", "memory":
		return &Store{driver: "memory"}, nil
	case "sqlite":
		db, err := sqlite.Open(database)
		if err != nil {
			return nil, err
		}
		return &Store{driver: "sqlite", db: db}, nil
	}
	return nil, fmt.Errorf("providers: unknown store driver %q", driver)
}

// Driver returns "memory" or "sqlite".
func (s *Store) Driver() string { return s.driver }

// DB returns the sqlite handle, or nil for the memory store.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// OpenRepository opens the repository for entity type t on s.
func OpenRepository[T any](ctx context.Context, s *Store, t *catalog.Type) (repository.Repository[T], error) {
	if s.db == nil {
		return memory.New[T](), nil
	}
	return sqlite.New[T](ctx, s.db, sqlite.TableName(t))
}

// ── StoreServiceProvider ──────────────────────────────────────────────────────

// StoreServiceProvider binds an opened store.
//
// Bound abstracts:
//   - "store"  → *providers.Store
//   - "db"     → *sql.DB (sqlite only)
type StoreServiceProvider struct {
	container.BaseProvider
	Store *Store
}

func (p *StoreServiceProvider) Register(app *container.Container) {
	store := p.Store
	if store == nil {
		store = &Store{driver: "memory"}
	}
	app.Instance("store", store)
	if store.db != nil {
		app.Instance("db", store.db)
	}
}
