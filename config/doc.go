// Package config loads the settings of the legisnap command and opens the configured snapshot store.
//
// Settings come from, in increasing precedence: built-in defaults, a YAML file, LEGISNAP_*
// environment variables and command line flags. Nested keys map to environment variables by
// upper-casing and replacing dots with underscores, e.g. database.max_open_conns becomes
// LEGISNAP_DATABASE_MAX_OPEN_CONNS.
//
// The connection factories mirror one another for the supported drivers:
//   - pgx: *pgxpool.Pool, with an optional read replica
//   - postgres: *sql.DB over github.com/lib/pq
//   - sqlx: *sqlx.DB over github.com/lib/pq
//   - sqlite: *sql.DB over modernc.org/sqlite, for the legacy LEGI .sqlite archives
package config
