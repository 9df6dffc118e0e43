// Package dbfixture creates LEGI/KALI tables and loads fixture datasets into a real database.
//
// The default backend is an in-memory SQLite database (modernc.org/sqlite). Setting ADAPTER_TYPE
// selects the access path the store under test is built on:
//
//	ADAPTER_TYPE=sqldb (default)  database/sql on SQLite
//	ADAPTER_TYPE=sqlx             sqlx on SQLite
//	ADAPTER_TYPE=pgxpool          pgxpool on the Postgres server named by LEGISNAP_TEST_DSN
package dbfixture

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
	"github.com/legilibre/legi-snapshot-go/testutil/fixture"
)

// Tables in creation order. The DDL is portable between SQLite and Postgres.
var schema = []struct {
	name string
	ddl  string
}{
	{"sommaires", `CREATE TABLE sommaires (
		cid TEXT NOT NULL,
		parent TEXT,
		element TEXT NOT NULL,
		debut DATE,
		fin DATE,
		etat TEXT,
		num TEXT,
		position INTEGER,
		_source TEXT
	)`},
	{"sections", `CREATE TABLE sections (
		id TEXT NOT NULL UNIQUE,
		titre_ta TEXT,
		commentaire TEXT,
		parent TEXT,
		cid TEXT
	)`},
	{"articles", `CREATE TABLE articles (
		id TEXT NOT NULL UNIQUE,
		section TEXT,
		num TEXT,
		etat TEXT,
		date_debut DATE,
		date_fin DATE,
		type TEXT,
		nota TEXT,
		bloc_textuel TEXT,
		cid TEXT
	)`},
	{"tetiers", `CREATE TABLE tetiers (
		id TEXT NOT NULL UNIQUE,
		titre_tm TEXT,
		niv INTEGER,
		conteneur_id TEXT
	)`},
	{"textes_versions", `CREATE TABLE textes_versions (
		id TEXT NOT NULL UNIQUE,
		cid TEXT,
		nature TEXT,
		titre TEXT,
		titrefull TEXT,
		etat TEXT,
		num TEXT,
		date_debut DATE,
		date_fin DATE,
		date_publi DATE
	)`},
	{"conteneurs", `CREATE TABLE conteneurs (
		id TEXT NOT NULL UNIQUE,
		titre TEXT,
		etat TEXT,
		nature TEXT,
		num TEXT,
		date_publi DATE
	)`},
}

// Execer runs one statement. *sql.DB, *sqlx.DB and pgxpool all fit behind a one-line closure.
type Execer func(ctx context.Context, statement string) error

// CreateSchema drops and recreates every table.
func CreateSchema(ctx context.Context, exec Execer) error {
	for _, table := range schema {
		if err := exec(ctx, "DROP TABLE IF EXISTS "+table.name); err != nil {
			return fmt.Errorf("dropping %s: %w", table.name, err)
		}

		if err := exec(ctx, table.ddl); err != nil {
			return fmt.Errorf("creating %s: %w", table.name, err)
		}
	}

	return nil
}

// Load inserts data. RootParent is stored as NULL and zero dates as NULL.
// Texts with a container id go to the conteneurs table.
func Load(ctx context.Context, exec Execer, dialect string, data fixture.Dataset) error {
	d := goqu.Dialect(dialect)
	var statements []*goqu.InsertDataset

	for _, r := range data.Adjacency {
		statements = append(statements, d.Insert("sommaires").Rows(goqu.Record{
			"cid":      r.Scope,
			"parent":   nullable(r.Parent),
			"element":  r.Element,
			"debut":    nullableDate(r.ValidityStart),
			"fin":      nullableDate(r.ValidityEnd),
			"etat":     nullable(string(r.State)),
			"position": r.Position,
		}))
	}

	for _, s := range data.Sections {
		statements = append(statements, d.Insert("sections").Rows(goqu.Record{
			"id":          s.ID,
			"titre_ta":    s.Title,
			"commentaire": nullable(s.Comment),
		}))
	}

	for _, a := range data.Articles {
		statements = append(statements, d.Insert("articles").Rows(goqu.Record{
			"id":           a.ID,
			"num":          a.Number,
			"etat":         nullable(string(a.State)),
			"date_debut":   nullableDate(a.ValidityStart),
			"date_fin":     nullableDate(a.ValidityEnd),
			"type":         nullable(a.Type),
			"nota":         nullable(a.Note),
			"bloc_textuel": nullable(a.Body),
		}))
	}

	for _, h := range data.Headers {
		statements = append(statements, d.Insert("tetiers").Rows(goqu.Record{
			"id":           h.ID,
			"titre_tm":     h.Title,
			"niv":          h.Level,
			"conteneur_id": nullable(h.ContainerID),
		}))
	}

	for _, t := range data.Texts {
		statements = append(statements, insertText(d, t))
	}

	for _, statement := range statements {
		query, _, err := statement.ToSQL()
		if err != nil {
			return errors.Join(legisnapshot.ErrBuildingQueryFailed, err)
		}

		if err := exec(ctx, query); err != nil {
			return fmt.Errorf("loading fixture: %w", err)
		}
	}

	return nil
}

func insertText(d goqu.DialectWrapper, t legisnapshot.TextData) *goqu.InsertDataset {
	if legisnapshot.IsContainerID(t.ID) {
		return d.Insert("conteneurs").Rows(goqu.Record{
			"id":         t.ID,
			"titre":      t.Title,
			"etat":       nullable(string(t.State)),
			"nature":     nullable(t.Nature),
			"num":        nullable(t.Number),
			"date_publi": nullableDate(t.PublicationDate),
		})
	}

	return d.Insert("textes_versions").Rows(goqu.Record{
		"id":         t.ID,
		"cid":        nullable(t.Scope),
		"nature":     nullable(t.Nature),
		"titre":      t.Title,
		"titrefull":  nullable(t.FullTitle),
		"etat":       nullable(string(t.State)),
		"num":        nullable(t.Number),
		"date_debut": nullableDate(t.ValidityStart),
		"date_fin":   nullableDate(t.ValidityEnd),
		"date_publi": nullableDate(t.PublicationDate),
	})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}

	return s
}

func nullableDate(d legisnapshot.Date) any {
	if d.IsZero() {
		return nil
	}

	return d.String()
}
