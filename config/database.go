package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"   // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/legilibre/legi-snapshot-go/legisnapshot/sqlengine"
)

// ErrOpeningDatabaseFailed is returned when a connection pool cannot be created or reached.
var ErrOpeningDatabaseFailed = errors.New("opening database failed")

// sqlDriverNames maps the configured driver to the database/sql driver name.
var sqlDriverNames = map[string]string{
	DriverPostgres: "postgres",
	DriverSQLX:     "postgres",
	DriverSQLite:   "sqlite",
}

// NewPGXPool creates a pgx pool for dsn with the pool limits of c and pings it.
func NewPGXPool(ctx context.Context, c DatabaseConfig, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	poolConfig.MaxConns = c.MaxConns
	poolConfig.MinConns = c.MinConns
	poolConfig.MaxConnLifetime = c.MaxConnLifetime
	poolConfig.MaxConnIdleTime = c.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = c.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	if err := ping(ctx, c, pool.Ping); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// NewSQLDB opens a *sql.DB for the postgres or sqlite driver and pings it.
func NewSQLDB(ctx context.Context, c DatabaseConfig) (*sql.DB, error) {
	driverName, ok := sqlDriverNames[c.Driver]
	if !ok {
		return nil, errors.Join(ErrOpeningDatabaseFailed, fmt.Errorf("driver %q is not a database/sql driver", c.Driver))
	}

	db, err := sql.Open(driverName, c.DSN)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	configurePool(db, c)

	if err := ping(ctx, c, db.PingContext); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// NewSQLX opens a *sqlx.DB over lib/pq and pings it.
func NewSQLX(ctx context.Context, c DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(sqlDriverNames[DriverSQLX], c.DSN)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	configurePool(db.DB, c)

	if err := ping(ctx, c, db.PingContext); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// ping retries a failed first connection ConnectAttempts times, for databases that are still starting.
func ping(ctx context.Context, c DatabaseConfig, pingFunc func(context.Context) error) error {
	_, err := RetryWithExponentialBackoff(ctx, pingFunc,
		WithMaxAttempts(max(c.ConnectAttempts, 1)),
		WithBaseDelay(c.ConnectBackoff),
	)
	if err != nil {
		return errors.Join(ErrOpeningDatabaseFailed, err)
	}

	return nil
}

func configurePool(db *sql.DB, c DatabaseConfig) {
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)
	db.SetConnMaxLifetime(c.MaxConnLifetime)
	db.SetConnMaxIdleTime(c.MaxConnIdleTime)
}

// OpenStore opens the configured database and builds a SnapshotStore on it. The dialect, table
// names and batch size come from cfg, options are applied after them. The returned function
// releases the connections.
func OpenStore(ctx context.Context, cfg Config, options ...sqlengine.Option) (sqlengine.SnapshotStore, func(), error) {
	dialect := sqlengine.DialectPostgres
	if cfg.Database.Driver == DriverSQLite {
		dialect = sqlengine.DialectSQLite
	}

	options = append([]sqlengine.Option{
		sqlengine.WithDialect(dialect),
		sqlengine.WithTableNames(cfg.Tables),
		sqlengine.WithBatchSize(cfg.Snapshot.BatchSize),
	}, options...)

	switch cfg.Database.Driver {
	case DriverPGX:
		return openPGXStore(ctx, cfg.Database, options)

	case DriverSQLX:
		db, err := NewSQLX(ctx, cfg.Database)
		if err != nil {
			return sqlengine.SnapshotStore{}, nil, err
		}

		store, err := sqlengine.NewSnapshotStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return sqlengine.SnapshotStore{}, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	case DriverPostgres, DriverSQLite:
		db, err := NewSQLDB(ctx, cfg.Database)
		if err != nil {
			return sqlengine.SnapshotStore{}, nil, err
		}

		store, err := sqlengine.NewSnapshotStoreFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return sqlengine.SnapshotStore{}, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	default:
		return sqlengine.SnapshotStore{}, nil, errors.Join(
			ErrOpeningDatabaseFailed,
			fmt.Errorf("unsupported database driver %q", cfg.Database.Driver),
		)
	}
}

func openPGXStore(
	ctx context.Context,
	c DatabaseConfig,
	options []sqlengine.Option,
) (sqlengine.SnapshotStore, func(), error) {
	primary, err := NewPGXPool(ctx, c, c.DSN)
	if err != nil {
		return sqlengine.SnapshotStore{}, nil, err
	}

	if c.ReplicaDSN == "" {
		store, err := sqlengine.NewSnapshotStoreFromPGXPool(primary, options...)
		if err != nil {
			primary.Close()
			return sqlengine.SnapshotStore{}, nil, err
		}

		return store, primary.Close, nil
	}

	replica, err := NewPGXPool(ctx, c, c.ReplicaDSN)
	if err != nil {
		primary.Close()
		return sqlengine.SnapshotStore{}, nil, err
	}

	closeBoth := func() {
		replica.Close()
		primary.Close()
	}

	store, err := sqlengine.NewSnapshotStoreFromPGXPoolWithReplica(primary, replica, options...)
	if err != nil {
		closeBoth()
		return sqlengine.SnapshotStore{}, nil, err
	}

	return store, closeBoth, nil
}
