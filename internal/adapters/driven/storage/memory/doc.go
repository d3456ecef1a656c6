// Package memory provides in-memory implementations of the storage ports.
//
// The stores are safe for concurrent use and are intended for tests and for
// running without a database. Metadata values and entities are copied through
// JSON, so callers observe the same round-trip behaviour as the SQLite store.
// Each store can be told to fail specific operations to exercise error paths.
package memory
