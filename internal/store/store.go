// Package store is a small document store on sqlite: JSON documents grouped
// into named collections, equality filters on top-level fields, targeted
// field updates and per-collection change notification. It stands in for a
// hosted document database and offers exactly the primitives the
// repositories need, nothing more.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	ErrNotFound           = errors.New("document not found")
	ErrCollectionRequired = errors.New("collection is required")
	ErrIDRequired         = errors.New("document id is required")
)

// DeleteField marks a key for removal in UpdateFields.
var DeleteField = deleteField{}

type deleteField struct{}

// Store holds the sqlite handle and the change-notification hub.
type Store struct {
	db  *sql.DB
	hub *hub
}

// Open opens (or creates) the store at path and applies pending migrations.
// Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}

	dsn := path + "?_busy_timeout=5000&_journal_mode=WAL"
	if path == ":memory:" {
		// A shared in-memory database so every pooled connection sees the
		// same data.
		dsn = "file::memory:?mode=memory&cache=shared"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	return &Store{db: db, hub: newHub()}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes the full document, replacing any previous version.
func (s *Store) Put(ctx context.Context, collection, id string, v any) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, id, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}

	s.hub.notify(collection)
	return nil
}

// Get decodes the document into out. Malformed documents return a decode
// error rather than silently nulled fields.
func (s *Store) Get(ctx context.Context, collection, id string, out any) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes the document. Deleting a missing document is a no-op.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		s.hub.notify(collection)
	}
	return nil
}

// Find decodes every document in the collection matching all equality
// filters into out, which must be a pointer to a slice. Filter keys are
// top-level document fields; no ordering is applied.
func (s *Store) Find(ctx context.Context, collection string, filter map[string]any, out any) error {
	if strings.TrimSpace(collection) == "" {
		return ErrCollectionRequired
	}

	query := `SELECT data FROM documents WHERE collection = ?`
	args := []any{collection}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		query += fmt.Sprintf(` AND json_extract(data, '$.%s') = ?`, k)
		args = append(args, filterArg(filter[k]))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("find documents: %w", err)
	}
	defer rows.Close()

	raw := make([]json.RawMessage, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		raw = append(raw, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate documents: %w", err)
	}

	joined, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("assemble result set: %w", err)
	}
	if err := json.Unmarshal(joined, out); err != nil {
		return fmt.Errorf("decode result set for %s: %w", collection, err)
	}
	return nil
}

// UpdateFields merges the given fields into the document without rewriting
// the rest of it. A DeleteField value removes the key entirely. Returns
// ErrNotFound if the document does not exist.
func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read document for update: %w", err)
	}

	doc := make(map[string]any)
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}

	for k, v := range fields {
		if _, drop := v.(deleteField); drop {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode updated document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(merged), time.Now().UTC(), collection, id); err != nil {
		return fmt.Errorf("write updated document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}

	s.hub.notify(collection)
	return nil
}

// RawFields returns the document's top-level fields untyped. Used by the
// legacy-field migration, which has to inspect keys the current schema no
// longer declares.
func (s *Store) RawFields(ctx context.Context, collection, id string) (map[string]any, error) {
	doc := make(map[string]any)
	if err := s.Get(ctx, collection, id, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Watch returns a coalescing notification channel that signals after every
// committed write to the collection, plus a cancel func the caller must
// invoke exactly once on teardown.
func (s *Store) Watch(collection string) (<-chan struct{}, func()) {
	return s.hub.watch(collection)
}

func checkKey(collection, id string) error {
	if strings.TrimSpace(collection) == "" {
		return ErrCollectionRequired
	}
	if strings.TrimSpace(id) == "" {
		return ErrIDRequired
	}
	return nil
}

// filterArg maps Go values onto json_extract comparison values; sqlite
// reports JSON booleans as 0/1 integers.
func filterArg(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}
