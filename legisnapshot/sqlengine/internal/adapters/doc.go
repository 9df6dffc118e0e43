// Package adapters provide database adapter implementations for the relational snapshot store.
//
// This package implements the adapter pattern to support multiple database libraries:
// pgxpool.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, so the store builds its SQL once and runs it on any of them.
package adapters
