// Package sqlite is a Repository that stores each entity as a JSON document
// in a SQLite table, one table per entity type.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/repository"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open opens (or creates) the database at path. ":memory:" gives a private
// in-memory database; the pool is pinned to one connection so every
// statement sees the same database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	return db, nil
}

// TableName derives the table for a catalog type: "<schema>_<table>",
// lower-cased.
func TableName(t *catalog.Type) string {
	if t.Schema == "" {
		return strings.ToLower(t.Table)
	}
	return strings.ToLower(t.Schema + "_" + t.Table)
}

// Store is a document repository for T.
type Store[T any] struct {
	db    *sql.DB
	table string
}

var _ repository.Repository[struct{ ID int }] = (*Store[struct{ ID int }])(nil)

// New ensures table exists in db and returns a store over it.
func New[T any](ctx context.Context, db *sql.DB, table string) (*Store[T], error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("sqlite: invalid table name %q", table)
	}
	schema := `CREATE TABLE IF NOT EXISTS "` + table + `" (
        id  TEXT PRIMARY KEY,
        doc TEXT NOT NULL
    );`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("sqlite: create %s: %w", table, err)
	}
	return &Store[T]{db: db, table: table}, nil
}

// Table returns the table backing the store.
func (s *Store[T]) Table() string { return s.table }

func (s *Store[T]) GetByID(ctx context.Context, id any) (T, error) {
	var zero T
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM "`+s.table+`" WHERE id = ?`, repository.KeyOf(id)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%w: id %v", repository.ErrNotFound, id)
	}
	if err != nil {
		return zero, err
	}
	return decode[T](doc)
}

func (s *Store[T]) List(ctx context.Context, specs ...repository.Spec[T]) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM "`+s.table+`" ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []T
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		item, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return repository.Apply(items, specs...), nil
}

func (s *Store[T]) Count(ctx context.Context, specs ...repository.Spec[T]) (int, error) {
	if len(specs) == 0 {
		var n int
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "`+s.table+`"`).Scan(&n)
		return n, err
	}
	items, err := s.List(ctx, specs...)
	return len(items), err
}

func (s *Store[T]) Add(ctx context.Context, entity T) (T, error) {
	entity, err := repository.EnsureID(entity)
	if err != nil {
		return entity, err
	}
	id, doc, err := encode(entity)
	if err != nil {
		return entity, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO "`+s.table+`" (id, doc) VALUES (?, ?)`, id, doc); err != nil {
		return entity, fmt.Errorf("sqlite: add %s: %w", id, err)
	}
	return entity, nil
}

func (s *Store[T]) Update(ctx context.Context, entity T) error {
	id, doc, err := encode(entity)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE "`+s.table+`" SET doc = ? WHERE id = ?`, doc, id)
	if err != nil {
		return err
	}
	return affected(res, id)
}

func (s *Store[T]) Delete(ctx context.Context, entity T) error {
	id, err := repository.IDOf(entity)
	if err != nil {
		return err
	}
	key := repository.KeyOf(id)
	res, err := s.db.ExecContext(ctx, `DELETE FROM "`+s.table+`" WHERE id = ?`, key)
	if err != nil {
		return err
	}
	return affected(res, key)
}

func (s *Store[T]) Untyped() repository.Any {
	return repository.Erase[T](s)
}

func affected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %s", repository.ErrNotFound, id)
	}
	return nil
}

func encode(entity any) (id, doc string, err error) {
	raw, err := repository.IDOf(entity)
	if err != nil {
		return "", "", err
	}
	b, err := json.Marshal(entity)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encode %T: %w", entity, err)
	}
	return repository.KeyOf(raw), string(b), nil
}

func decode[T any](doc string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return v, fmt.Errorf("sqlite: decode %T: %w", v, err)
	}
	return v, nil
}
