package sqlengine

import (
	"errors"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
)

// ErrInvalidBatchSize is returned by WithBatchSize for sizes below one.
var ErrInvalidBatchSize = errors.New("batch size must be at least 1")

// TableNames names the adjacency table and the per-kind type tables.
type TableNames struct {
	Adjacency  string `yaml:"adjacency"`
	Sections   string `yaml:"sections"`
	Articles   string `yaml:"articles"`
	Headers    string `yaml:"headers"`
	Texts      string `yaml:"texts"`
	Containers string `yaml:"containers"`
}

// DefaultTableNames returns the table names of a dila2sql database.
func DefaultTableNames() TableNames {
	return TableNames{
		Adjacency:  "sommaires",
		Sections:   "sections",
		Articles:   "articles",
		Headers:    "tetiers",
		Texts:      "textes_versions",
		Containers: "conteneurs",
	}
}

func (t TableNames) validate() error {
	for _, name := range []string{t.Adjacency, t.Sections, t.Articles, t.Headers, t.Texts, t.Containers} {
		if name == "" {
			return legisnapshot.ErrEmptyTableName
		}
	}

	return nil
}

// Option defines a functional option for configuring SnapshotStore.
type Option func(*SnapshotStore) error

// WithDialect selects the SQL dialect, DialectPostgres (default) or DialectSQLite.
func WithDialect(dialect string) Option {
	return func(s *SnapshotStore) error {
		switch dialect {
		case DialectPostgres, DialectSQLite:
			s.dialectName = dialect
			return nil
		default:
			return errors.Join(legisnapshot.ErrUnsupportedDialect, errors.New(dialect))
		}
	}
}

// WithTableNames overrides the table names. Every name must be non-empty.
func WithTableNames(tables TableNames) Option {
	return func(s *SnapshotStore) error {
		if err := tables.validate(); err != nil {
			return err
		}

		s.tables = tables

		return nil
	}
}

// WithBatchSize caps the number of ids sent in one IN list.
// Larger id sets are split into several queries whose results are concatenated.
func WithBatchSize(size int) Option {
	return func(s *SnapshotStore) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}

		s.batchSize = size

		return nil
	}
}

// WithLogger sets the logger for the SnapshotStore.
//
// Debug level: executed SQL with timing
// Warn level: failures to close result rows
// Error level: failed query builds, queries and scans.
func WithLogger(logger legisnapshot.Logger) Option {
	return func(s *SnapshotStore) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger legisnapshot.ContextualLogger) Option {
	return func(s *SnapshotStore) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector, which receives one duration per executed query.
func WithMetrics(collector legisnapshot.MetricsCollector) Option {
	return func(s *SnapshotStore) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector, which receives one span per executed query.
func WithTracing(collector legisnapshot.TracingCollector) Option {
	return func(s *SnapshotStore) error {
		s.tracingCollector = collector
		return nil
	}
}
