// Package sqlengine provides a relational implementation of legisnapshot.Store.
//
// It reads the tables produced by the DILA archive importers (sommaires, sections, articles,
// tetiers, textes_versions, conteneurs) from PostgreSQL or SQLite. All SQL is built with goqu.
//
// Key features:
//   - Multiple database adapter support (pgxpool with optional read replica, database/sql, sqlx)
//   - Validity predicate pushed down into the adjacency queries
//   - Bounded IN lists, split into several queries when an id set is larger than the batch size
//   - Configurable table names, dialect, logging, metrics and tracing
//
// Usage examples:
//
//	// Postgres through pgx
//	pool, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := sqlengine.NewSnapshotStoreFromPGXPool(pool)
//
//	// A legacy LEGI SQLite file through database/sql
//	db, _ := sql.Open("sqlite", "legi.sqlite")
//	store, _ := sqlengine.NewSnapshotStoreFromSQLDB(
//		db,
//		sqlengine.WithDialect(sqlengine.DialectSQLite),
//		sqlengine.WithLogger(slog.Default()),
//	)
//
//	service, _ := legisnapshot.NewService(store)
package sqlengine
