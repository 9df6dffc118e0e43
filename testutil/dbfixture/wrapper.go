package dbfixture

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // driver import

	"github.com/legilibre/legi-snapshot-go/legisnapshot/sqlengine"
	"github.com/legilibre/legi-snapshot-go/testutil/fixture"
)

// Adapter type constants, read from ADAPTER_TYPE.
const (
	TypeSQLDB   = "sqldb"
	TypeSQLX    = "sqlx"
	TypePGXPool = "pgxpool"
)

const (
	sqliteDriverName = "sqlite"
	sqliteMemoryDSN  = ":memory:"
	envAdapterType   = "ADAPTER_TYPE"
	envPostgresDSN   = "LEGISNAP_TEST_DSN"
)

// Wrapper abstracts over the different database access paths.
type Wrapper interface {
	// NewStore builds a SnapshotStore on the wrapped connection. The dialect option is preset.
	NewStore(t testing.TB, options ...sqlengine.Option) sqlengine.SnapshotStore
	// Exec runs a raw statement, for tests that tamper with the data.
	Exec(ctx context.Context, statement string) error
	Dialect() string
	Close()
}

// SQLDBWrapper wraps database/sql on SQLite.
type SQLDBWrapper struct {
	db *sql.DB
}

func (w *SQLDBWrapper) NewStore(t testing.TB, options ...sqlengine.Option) sqlengine.SnapshotStore {
	store, err := sqlengine.NewSnapshotStoreFromSQLDB(w.db, withDialect(w.Dialect(), options)...)
	require.NoError(t, err, "error creating the store in test setup")

	return store
}

func (w *SQLDBWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLDBWrapper) Dialect() string {
	return sqlengine.DialectSQLite
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx on SQLite.
type SQLXWrapper struct {
	db *sqlx.DB
}

func (w *SQLXWrapper) NewStore(t testing.TB, options ...sqlengine.Option) sqlengine.SnapshotStore {
	store, err := sqlengine.NewSnapshotStoreFromSQLX(w.db, withDialect(w.Dialect(), options)...)
	require.NoError(t, err, "error creating the store in test setup")

	return store
}

func (w *SQLXWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLXWrapper) Dialect() string {
	return sqlengine.DialectSQLite
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// PGXPoolWrapper wraps pgxpool on a Postgres test server.
type PGXPoolWrapper struct {
	pool *pgxpool.Pool
}

func (w *PGXPoolWrapper) NewStore(t testing.TB, options ...sqlengine.Option) sqlengine.SnapshotStore {
	store, err := sqlengine.NewSnapshotStoreFromPGXPool(w.pool, withDialect(w.Dialect(), options)...)
	require.NoError(t, err, "error creating the store in test setup")

	return store
}

func (w *PGXPoolWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.pool.Exec(ctx, statement)
	return err
}

func (w *PGXPoolWrapper) Dialect() string {
	return sqlengine.DialectPostgres
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// OpenSQLite opens a fresh in-memory SQLite database limited to one connection,
// so every query sees the same memory database.
func OpenSQLite() (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, sqliteMemoryDSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	return db, nil
}

// CreateWrapper creates the wrapper selected by ADAPTER_TYPE with an empty schema.
// The wrapper is closed when the test ends.
func CreateWrapper(t testing.TB) Wrapper {
	adapterType := strings.ToLower(os.Getenv(envAdapterType))

	var wrapper Wrapper
	switch adapterType {
	case TypeSQLDB, "":
		db, err := OpenSQLite()
		require.NoError(t, err, "error opening sqlite in test setup")
		wrapper = &SQLDBWrapper{db: db}

	case TypeSQLX:
		db, err := OpenSQLite()
		require.NoError(t, err, "error opening sqlite in test setup")
		wrapper = &SQLXWrapper{db: sqlx.NewDb(db, sqliteDriverName)}

	case TypePGXPool:
		dsn := os.Getenv(envPostgresDSN)
		if dsn == "" {
			t.Skipf("%s=%s needs %s", envAdapterType, TypePGXPool, envPostgresDSN)
		}
		pool, err := pgxpool.New(context.Background(), dsn)
		require.NoError(t, err, "error connecting to DB pool in test setup")
		wrapper = &PGXPoolWrapper{pool: pool}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	t.Cleanup(wrapper.Close)
	require.NoError(t, CreateSchema(context.Background(), wrapper.Exec), "error creating the schema in test setup")

	return wrapper
}

// CreateWrapperWithData creates a wrapper and loads data.
func CreateWrapperWithData(t testing.TB, data fixture.Dataset) Wrapper {
	wrapper := CreateWrapper(t)
	require.NoError(t, Load(context.Background(), wrapper.Exec, wrapper.Dialect(), data), "error loading fixture data")

	return wrapper
}

// CreateWrapperWithScenario creates a wrapper holding fixture.Scenario().
func CreateWrapperWithScenario(t testing.TB) Wrapper {
	return CreateWrapperWithData(t, fixture.Scenario())
}

func withDialect(dialect string, options []sqlengine.Option) []sqlengine.Option {
	return append([]sqlengine.Option{sqlengine.WithDialect(dialect)}, options...)
}
