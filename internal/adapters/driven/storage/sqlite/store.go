package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/rulebook/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

// Entity table names.
const (
	tableUnits      = "units"
	tableItems      = "items"
	tableRules      = "rules"
	tableActions    = "actions"
	tableOperations = "operations"
	tableArticles   = "articles"
)

var entityTables = []string{tableUnits, tableItems, tableRules, tableActions, tableOperations, tableArticles}

// Store is a unified SQLite-based storage that provides access to
// all store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.rulebook/data/rulebook.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".rulebook", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "rulebook.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// MetadataStore returns a MetadataStore interface backed by this store.
func (s *Store) MetadataStore() driven.MetadataStore {
	return &metadataStore{store: s}
}

// EntityStore returns an EntityStore interface backed by this store.
func (s *Store) EntityStore() driven.EntityStore {
	return &entityStore{store: s}
}

// IndexStore returns an IndexStore interface backed by this store.
func (s *Store) IndexStore() driven.IndexStore {
	return &indexStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// inTx runs fn in a transaction, rolling back when it fails.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return domain.NewStorageError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.NewStorageError(op, err)
	}
	return nil
}

// ==================== Metadata Store ====================

// metadataStore implements driven.MetadataStore.
type metadataStore struct {
	store *Store
}

var _ driven.MetadataStore = (*metadataStore)(nil)

// GetMeta decodes the JSON value stored under key into dst.
func (s *metadataStore) GetMeta(ctx context.Context, key string, dst any) (bool, error) {
	var raw string
	err := s.store.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, domain.NewStorageError("get meta "+key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: meta %s: %v", domain.ErrParse, key, err)
	}
	return true, nil
}

// PutMeta stores value under key.
func (s *metadataStore) PutMeta(ctx context.Context, key string, value any) error {
	return s.PutMetaBatch(ctx, map[string]any{key: value})
}

// PutMetaBatch stores every value in one transaction.
func (s *metadataStore) PutMetaBatch(ctx context.Context, values map[string]any) error {
	encoded := make(map[string]string, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshalling meta %s: %w", key, err)
		}
		encoded[key] = string(raw)
	}

	return s.store.inTx(ctx, "put meta", func(tx *sql.Tx) error {
		for key, raw := range encoded {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO meta (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
				ON CONFLICT(key) DO UPDATE SET
					value = excluded.value,
					updated_at = excluded.updated_at
			`, key, raw)
			if err != nil {
				return fmt.Errorf("writing %s: %w", key, err)
			}
		}
		return nil
	})
}

// DeleteMeta removes key.
func (s *metadataStore) DeleteMeta(ctx context.Context, key string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM meta WHERE key = ?", key); err != nil {
		return domain.NewStorageError("delete meta "+key, err)
	}
	return nil
}

// ==================== Entity Store ====================

// entityStore implements driven.EntityStore.
type entityStore struct {
	store *Store
}

var _ driven.EntityStore = (*entityStore)(nil)

// ReplaceUnits replaces every composite unit.
func (s *entityStore) ReplaceUnits(ctx context.Context, units []domain.Unit) error {
	return s.store.inTx(ctx, "replace units", func(tx *sql.Tx) error {
		return replaceTable(ctx, tx, tableUnits, units, func(u domain.Unit) string { return u.ID })
	})
}

// ReplaceItems replaces every universal item.
func (s *entityStore) ReplaceItems(ctx context.Context, items []domain.UniversalItem) error {
	return s.store.inTx(ctx, "replace items", func(tx *sql.Tx) error {
		return replaceTable(ctx, tx, tableItems, items, func(i domain.UniversalItem) string { return i.ID })
	})
}

// ReplaceRules replaces every standalone rule.
func (s *entityStore) ReplaceRules(ctx context.Context, rules []domain.Rule) error {
	return s.store.inTx(ctx, "replace rules", func(tx *sql.Tx) error {
		return replaceTable(ctx, tx, tableRules, rules, func(r domain.Rule) string { return r.ID })
	})
}

// ReplaceActions replaces the action catalog.
func (s *entityStore) ReplaceActions(ctx context.Context, actions []domain.Action) error {
	return s.store.inTx(ctx, "replace actions", func(tx *sql.Tx) error {
		return replaceTable(ctx, tx, tableActions, actions, func(a domain.Action) string { return a.ID })
	})
}

// ReplaceOperations replaces every operation.
func (s *entityStore) ReplaceOperations(ctx context.Context, ops []domain.Operation) error {
	return s.store.inTx(ctx, "replace operations", func(tx *sql.Tx) error {
		return replaceTable(ctx, tx, tableOperations, ops, func(o domain.Operation) string { return o.ID })
	})
}

// ReplaceArticles replaces every sequence step and article.
func (s *entityStore) ReplaceArticles(ctx context.Context, articles []domain.Article) error {
	return s.store.inTx(ctx, "replace articles", func(tx *sql.Tx) error {
		return replaceTable(ctx, tx, tableArticles, articles, func(a domain.Article) string { return a.ID })
	})
}

// ReplaceCore replaces rules, actions and operations in one transaction.
func (s *entityStore) ReplaceCore(ctx context.Context, bundle domain.CoreBundle) error {
	return s.store.inTx(ctx, "replace core", func(tx *sql.Tx) error {
		if err := replaceTable(ctx, tx, tableRules, bundle.Rules, func(r domain.Rule) string { return r.ID }); err != nil {
			return err
		}
		if err := replaceTable(ctx, tx, tableActions, bundle.Actions, func(a domain.Action) string { return a.ID }); err != nil {
			return err
		}
		return replaceTable(ctx, tx, tableOperations, bundle.Operations, func(o domain.Operation) string { return o.ID })
	})
}

// LoadEntities reads every table inside one read transaction.
func (s *entityStore) LoadEntities(ctx context.Context) (*domain.EntityBatch, error) {
	batch := &domain.EntityBatch{}
	err := s.store.inTx(ctx, "load entities", func(tx *sql.Tx) error {
		var err error
		if batch.Units, err = loadTable[domain.Unit](ctx, tx, tableUnits); err != nil {
			return err
		}
		if batch.Items, err = loadTable[domain.UniversalItem](ctx, tx, tableItems); err != nil {
			return err
		}
		if batch.Rules, err = loadTable[domain.Rule](ctx, tx, tableRules); err != nil {
			return err
		}
		if batch.Actions, err = loadTable[domain.Action](ctx, tx, tableActions); err != nil {
			return err
		}
		if batch.Operations, err = loadTable[domain.Operation](ctx, tx, tableOperations); err != nil {
			return err
		}
		batch.Articles, err = loadTable[domain.Article](ctx, tx, tableArticles)
		return err
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// ClearEntities empties every entity table in one transaction.
func (s *entityStore) ClearEntities(ctx context.Context) error {
	return s.store.inTx(ctx, "clear entities", func(tx *sql.Tx) error {
		for _, table := range entityTables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil { //nolint:gosec // fixed table names
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		return nil
	})
}

// replaceTable deletes every row of table and inserts rows. A later row
// with the same id replaces an earlier one.
func replaceTable[T any](ctx context.Context, tx *sql.Tx, table string, rows []T, id func(T) string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil { //nolint:gosec // fixed table names
		return fmt.Errorf("clearing %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+table+" (id, data) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data") //nolint:gosec // fixed table names
	if err != nil {
		return fmt.Errorf("preparing %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshalling %s %s: %w", table, id(row), err)
		}
		if _, err := stmt.ExecContext(ctx, id(row), string(data)); err != nil {
			return fmt.Errorf("inserting %s %s: %w", table, id(row), err)
		}
	}
	return nil
}

// loadTable reads every row of table ordered by id.
func loadTable[T any](ctx context.Context, tx *sql.Tx, table string) ([]T, error) {
	rows, err := tx.QueryContext(ctx, "SELECT data FROM "+table+" ORDER BY id") //nolint:gosec // fixed table names
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var out []T //nolint:prealloc // size unknown from query
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return out, nil
}

// ==================== Index Store ====================

// indexStore implements driven.IndexStore.
type indexStore struct {
	store *Store
}

var _ driven.IndexStore = (*indexStore)(nil)

// SaveArtifact replaces the stored artifact.
func (s *indexStore) SaveArtifact(ctx context.Context, data []byte) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO index_artifact (id, data, saved_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			saved_at = excluded.saved_at
	`, data)
	if err != nil {
		return domain.NewStorageError("save index artifact", err)
	}
	return nil
}

// LoadArtifact returns the stored artifact.
func (s *indexStore) LoadArtifact(ctx context.Context) ([]byte, bool, error) {
	var data []byte
	err := s.store.db.QueryRowContext(ctx, "SELECT data FROM index_artifact WHERE id = 1").Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.NewStorageError("load index artifact", err)
	}
	return data, true, nil
}
