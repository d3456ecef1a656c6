// Package sqlite provides a SQLite-based implementation of the storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements every store interface
// through a single database connection:
//
//   - MetadataStore: content hashes, manifest versions and the version record
//   - EntityStore: units, items, rules, actions, operations and articles
//   - IndexStore: the serialised search index
//   - SchedulerStore: background task state and history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.rulebook/data/rulebook.db
//
// # Thread Safety
//
// All operations are thread-safe. Multi-table writes run in one transaction,
// so readers never observe a partially replaced table set.
package sqlite
