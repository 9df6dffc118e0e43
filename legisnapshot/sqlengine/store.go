package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
	"github.com/legilibre/legi-snapshot-go/legisnapshot/sqlengine/internal/adapters"
)

// Supported SQL dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// DefaultBatchSize is the default maximum number of ids in one IN list.
const DefaultBatchSize = 500

const (
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgSQLExecuted            = "executed sql for: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrAction                = "action"
	logAttrDurationMS            = "duration_ms"
	actionRoots                  = "roots"
	actionChildren               = "children"
	actionLocateRoot             = "locate_root"
	actionValidityDates          = "validity_dates"
	actionFetchSections          = "fetch_sections"
	actionFetchArticles          = "fetch_articles"
	actionFetchHeaders           = "fetch_headers"
	actionFetchTexts             = "fetch_texts"
	actionFetchContainers        = "fetch_containers"
	actionListTexts              = "list_texts"
	actionListContainers         = "list_containers"
	actionParents                = "parents"
	colElement                   = "element"
	colParent                    = "parent"
	colPosition                  = "position"
	colState                     = "etat"
	colStart                     = "debut"
	colEnd                       = "fin"
	colScope                     = "cid"
	colID                        = "id"
	colSectionTitle              = "titre_ta"
	colComment                   = "commentaire"
	colNumber                    = "num"
	colValidityStart             = "date_debut"
	colValidityEnd               = "date_fin"
	colType                      = "type"
	colBody                      = "bloc_textuel"
	colNote                      = "nota"
	colHeaderTitle               = "titre_tm"
	colLevel                     = "niv"
	colContainerID               = "conteneur_id"
	colTitle                     = "titre"
	colFullTitle                 = "titrefull"
	colNature                    = "nature"
	colPublicationDate           = "date_publi"
	castText                     = "CAST(? AS TEXT)"
	aliasSuffix                  = "_text"
)

// SnapshotStore is a legisnapshot.Store over a relational LEGI/KALI database.
//
// Adjacency queries push the validity predicate down into SQL. The Closure Resolver filters every
// returned row again, so the pushdown only saves transfer.
type SnapshotStore struct {
	db               adapters.DBAdapter
	dialectName      string
	tables           TableNames
	batchSize        int
	logger           legisnapshot.Logger
	contextualLogger legisnapshot.ContextualLogger
	metricsCollector legisnapshot.MetricsCollector
	tracingCollector legisnapshot.TracingCollector
}

var _ legisnapshot.Store = SnapshotStore{}

type scanFunc[T any] func(rows adapters.DBRows) (T, error)

// NewSnapshotStoreFromPGXPool creates a new SnapshotStore using a pgx Pool with optional configuration.
func NewSnapshotStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (SnapshotStore, error) {
	if db == nil {
		return SnapshotStore{}, legisnapshot.ErrNilDatabaseConnection
	}

	return newSnapshotStore(adapters.NewPGXAdapter(db), options)
}

// NewSnapshotStoreFromPGXPoolWithReplica creates a new SnapshotStore that sends every query to
// replica. The primary pool is kept for callers sharing the adapter with write paths.
func NewSnapshotStoreFromPGXPoolWithReplica(primary, replica *pgxpool.Pool, options ...Option) (SnapshotStore, error) {
	if primary == nil || replica == nil {
		return SnapshotStore{}, legisnapshot.ErrNilDatabaseConnection
	}

	return newSnapshotStore(adapters.NewPGXAdapterWithReplica(primary, replica), options)
}

// NewSnapshotStoreFromSQLDB creates a new SnapshotStore using a sql.DB with optional configuration.
func NewSnapshotStoreFromSQLDB(db *sql.DB, options ...Option) (SnapshotStore, error) {
	if db == nil {
		return SnapshotStore{}, legisnapshot.ErrNilDatabaseConnection
	}

	return newSnapshotStore(adapters.NewSQLAdapter(db), options)
}

// NewSnapshotStoreFromSQLX creates a new SnapshotStore using a sqlx.DB with optional configuration.
func NewSnapshotStoreFromSQLX(db *sqlx.DB, options ...Option) (SnapshotStore, error) {
	if db == nil {
		return SnapshotStore{}, legisnapshot.ErrNilDatabaseConnection
	}

	return newSnapshotStore(adapters.NewSQLXAdapter(db), options)
}

func newSnapshotStore(db adapters.DBAdapter, options []Option) (SnapshotStore, error) {
	s := SnapshotStore{
		db:          db,
		dialectName: DialectPostgres,
		tables:      DefaultTableNames(),
		batchSize:   DefaultBatchSize,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return SnapshotStore{}, err
		}
	}

	return s, nil
}

// Roots implements legisnapshot.AdjacencyProvider.
func (s SnapshotStore) Roots(
	ctx context.Context,
	scope string,
	date legisnapshot.Date,
) ([]legisnapshot.AdjacencyRecord, error) {
	query := s.adjacencySelect().Where(
		goqu.C(colScope).Eq(scope),
		goqu.Or(goqu.C(colParent).IsNull(), goqu.C(colParent).Eq(legisnapshot.RootParent)),
		validAt(date),
	)

	return collect(ctx, s, actionRoots, []*goqu.SelectDataset{query}, scanAdjacencyRecord)
}

// Children implements legisnapshot.AdjacencyProvider.
// Parent lists longer than the batch size are split over several queries.
func (s SnapshotStore) Children(
	ctx context.Context,
	scope string,
	parents []string,
	date legisnapshot.Date,
) ([]legisnapshot.AdjacencyRecord, error) {
	if len(parents) == 0 {
		return nil, nil
	}

	queries := make([]*goqu.SelectDataset, 0, len(parents)/s.batchSize+1)
	for _, chunk := range chunkIDs(parents, s.batchSize) {
		queries = append(queries, s.adjacencySelect().Where(
			goqu.C(colScope).Eq(scope),
			goqu.C(colParent).In(chunk),
			validAt(date),
		))
	}

	return collect(ctx, s, actionChildren, queries, scanAdjacencyRecord)
}

// Parents implements legisnapshot.ParentProvider.
func (s SnapshotStore) Parents(
	ctx context.Context,
	scope string,
	element string,
	date legisnapshot.Date,
) ([]legisnapshot.AdjacencyRecord, error) {
	query := s.adjacencySelect().
		Where(
			goqu.C(colScope).Eq(scope),
			goqu.C(colElement).Eq(element),
			validAt(date),
		).
		OrderAppend(goqu.C(colParent).Asc())

	return collect(ctx, s, actionParents, []*goqu.SelectDataset{query}, scanAdjacencyRecord)
}

// LocateRoot implements legisnapshot.RootLocator.
// It looks the id up in the scope column first, then the element column, then the parent column.
func (s SnapshotStore) LocateRoot(ctx context.Context, id string) (legisnapshot.RootLocation, error) {
	lookups := []struct {
		match   exp.Expression
		isScope bool
	}{
		{match: goqu.C(colScope).Eq(id), isScope: true},
		{match: goqu.C(colElement).Eq(id)},
		{match: goqu.C(colParent).Eq(id)},
	}

	for _, lookup := range lookups {
		query := s.from(s.tables.Adjacency).Select(goqu.C(colScope)).Where(lookup.match).Limit(1)

		scopes, err := collect(ctx, s, actionLocateRoot, []*goqu.SelectDataset{query}, scanString)
		if err != nil {
			return legisnapshot.RootLocation{}, err
		}

		if len(scopes) > 0 {
			return legisnapshot.RootLocation{ID: id, Scope: scopes[0], IsScope: lookup.isScope}, nil
		}
	}

	return legisnapshot.RootLocation{}, legisnapshot.ErrNotFound
}

// ValidityDates implements legisnapshot.ValidityDateSource.
func (s SnapshotStore) ValidityDates(ctx context.Context, scope string) ([]legisnapshot.Date, error) {
	query := s.from(s.tables.Adjacency).
		Select(castAsText(colStart), castAsText(colEnd)).
		Distinct().
		Where(goqu.C(colScope).Eq(scope))

	pairs, err := collect(ctx, s, actionValidityDates, []*goqu.SelectDataset{query}, scanDatePair)
	if err != nil {
		return nil, err
	}

	dates := make([]legisnapshot.Date, 0, 2*len(pairs))
	for _, pair := range pairs {
		for _, d := range pair {
			if !d.IsZero() {
				dates = append(dates, d)
			}
		}
	}

	return dates, nil
}

// FetchSections implements legisnapshot.TypedElementSource.
func (s SnapshotStore) FetchSections(ctx context.Context, ids []string) ([]legisnapshot.SectionData, error) {
	base := s.from(s.tables.Sections).Select(
		goqu.C(colID),
		coalesceText(colSectionTitle),
		coalesceText(colComment),
	)

	return collect(ctx, s, actionFetchSections, s.byIDs(base, colID, ids), scanSection)
}

// FetchArticles implements legisnapshot.TypedElementSource.
// Bodies and notes are only selected in ContentFull mode.
func (s SnapshotStore) FetchArticles(
	ctx context.Context,
	ids []string,
	mode legisnapshot.ContentMode,
) ([]legisnapshot.ArticleData, error) {
	columns := []any{
		goqu.C(colID),
		coalesceText(colNumber),
		coalesceText(colState),
		castAsText(colValidityStart),
		castAsText(colValidityEnd),
		coalesceText(colType),
	}

	scan := scanArticleHeadline
	if mode == legisnapshot.ContentFull {
		columns = append(columns, coalesceText(colBody), coalesceText(colNote))
		scan = scanArticleFull
	}

	base := s.from(s.tables.Articles).Select(columns...)

	return collect(ctx, s, actionFetchArticles, s.byIDs(base, colID, ids), scan)
}

// FetchHeaders implements legisnapshot.TypedElementSource.
func (s SnapshotStore) FetchHeaders(ctx context.Context, ids []string) ([]legisnapshot.HeaderData, error) {
	base := s.from(s.tables.Headers).Select(
		goqu.C(colID),
		coalesceText(colHeaderTitle),
		castAsText(colLevel),
		coalesceText(colContainerID),
	)

	return collect(ctx, s, actionFetchHeaders, s.byIDs(base, colID, ids), scanHeader)
}

// FetchTexts implements legisnapshot.TypedElementSource.
//
// Container ids are read from the containers table. Other ids are matched against both the id
// and the cid of text versions; when several versions match, the latest publication wins.
func (s SnapshotStore) FetchTexts(ctx context.Context, ids []string) ([]legisnapshot.TextData, error) {
	var containerIDs, textIDs []string
	for _, id := range ids {
		if legisnapshot.IsContainerID(id) {
			containerIDs = append(containerIDs, id)
		} else {
			textIDs = append(textIDs, id)
		}
	}

	var found []legisnapshot.TextData

	if len(containerIDs) > 0 {
		base := s.containerSelect().Order(goqu.C(colPublicationDate).Desc().NullsLast())

		containers, err := collect(ctx, s, actionFetchContainers, s.byIDs(base, colID, containerIDs), scanContainer)
		if err != nil {
			return nil, err
		}
		found = append(found, containers...)
	}

	if len(textIDs) > 0 {
		versions, err := s.fetchTextVersions(ctx, textIDs)
		if err != nil {
			return nil, err
		}
		found = append(found, versions...)
	}

	return firstPerID(found), nil
}

func (s SnapshotStore) fetchTextVersions(ctx context.Context, ids []string) ([]legisnapshot.TextData, error) {
	queries := make([]*goqu.SelectDataset, 0, len(ids)/s.batchSize+1)
	for _, chunk := range chunkIDs(ids, s.batchSize) {
		queries = append(queries, s.textVersionSelect().
			Where(goqu.Or(goqu.C(colID).In(chunk), goqu.C(colScope).In(chunk))).
			Order(goqu.C(colPublicationDate).Desc().NullsLast(), goqu.C(colID).Asc()))
	}

	versions, err := collect(ctx, s, actionFetchTexts, queries, scanTextVersion)
	if err != nil {
		return nil, err
	}

	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	matched := make([]legisnapshot.TextData, 0, len(versions))
	for _, v := range versions {
		if _, ok := requested[v.ID]; ok {
			matched = append(matched, v)
		}

		if _, ok := requested[v.Scope]; ok && v.Scope != v.ID {
			byScope := v
			byScope.ID = v.Scope
			matched = append(matched, byScope)
		}
	}

	return matched, nil
}

// ListTexts implements legisnapshot.TextCatalog.
func (s SnapshotStore) ListTexts(ctx context.Context, nature string) ([]legisnapshot.TextData, error) {
	query := s.textVersionSelect().
		Where(goqu.C(colNature).Eq(nature)).
		Order(goqu.C(colTitle).Asc(), goqu.C(colID).Asc())

	return collect(ctx, s, actionListTexts, []*goqu.SelectDataset{query}, scanTextVersion)
}

// ListContainers implements legisnapshot.ContainerCatalog.
func (s SnapshotStore) ListContainers(
	ctx context.Context,
	nature string,
	states []legisnapshot.LifecycleState,
) ([]legisnapshot.TextData, error) {
	if len(states) == 0 {
		return nil, nil
	}

	stateValues := make([]string, 0, len(states))
	for _, state := range states {
		stateValues = append(stateValues, string(state))
	}

	query := s.containerSelect().
		Where(goqu.C(colState).In(stateValues)).
		Order(goqu.C(colPublicationDate).Desc().NullsLast(), goqu.C(colID).Asc())

	if nature != "" {
		query = query.Where(goqu.C(colNature).Eq(nature))
	}

	return collect(ctx, s, actionListContainers, []*goqu.SelectDataset{query}, scanContainer)
}

func (s SnapshotStore) from(table string) *goqu.SelectDataset {
	return goqu.Dialect(s.dialectName).From(goqu.T(table))
}

func (s SnapshotStore) adjacencySelect() *goqu.SelectDataset {
	return s.from(s.tables.Adjacency).
		Select(
			goqu.C(colElement),
			coalesceText(colParent),
			castAsText(colPosition),
			coalesceText(colState),
			castAsText(colStart),
			castAsText(colEnd),
			goqu.C(colScope),
		).
		Order(goqu.C(colPosition).Asc(), goqu.C(colElement).Asc())
}

func (s SnapshotStore) containerSelect() *goqu.SelectDataset {
	return s.from(s.tables.Containers).Select(
		goqu.C(colID),
		coalesceText(colTitle),
		coalesceText(colState),
		coalesceText(colNature),
		coalesceText(colNumber),
		castAsText(colPublicationDate),
	)
}

func (s SnapshotStore) textVersionSelect() *goqu.SelectDataset {
	return s.from(s.tables.Texts).Select(
		goqu.C(colID),
		coalesceText(colScope),
		coalesceText(colTitle),
		coalesceText(colFullTitle),
		coalesceText(colNature),
		coalesceText(colState),
		coalesceText(colNumber),
		castAsText(colValidityStart),
		castAsText(colValidityEnd),
		castAsText(colPublicationDate),
	)
}

// byIDs returns one query per chunk of ids, or none when ids is empty.
func (s SnapshotStore) byIDs(base *goqu.SelectDataset, column string, ids []string) []*goqu.SelectDataset {
	chunks := chunkIDs(ids, s.batchSize)
	queries := make([]*goqu.SelectDataset, 0, len(chunks))

	for _, chunk := range chunks {
		queries = append(queries, base.Where(goqu.C(column).In(chunk)))
	}

	return queries
}

// validAt is the SQL form of AdjacencyRecord.IsValidAt.
func validAt(date legisnapshot.Date) exp.Expression {
	ref := date.String()

	return goqu.Or(
		goqu.And(goqu.C(colStart).IsNull(), goqu.C(colEnd).IsNull()),
		goqu.And(
			goqu.C(colStart).Lte(ref),
			goqu.Or(
				goqu.C(colEnd).Gte(ref),
				goqu.C(colEnd).Eq(legisnapshot.OpenEnded.String()),
				goqu.C(colState).Eq(string(legisnapshot.StateInForce)),
			),
		),
	)
}

// castAsText and coalesceText alias their result apart from the column name, so that ORDER BY and
// WHERE keep referring to the raw column.
func castAsText(column string) exp.AliasedExpression {
	return goqu.L(castText, goqu.C(column)).As(column + aliasSuffix)
}

func coalesceText(column string) exp.AliasedExpression {
	return goqu.COALESCE(goqu.C(column), "").As(column + aliasSuffix)
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}

	return chunks
}

func firstPerID(texts []legisnapshot.TextData) []legisnapshot.TextData {
	seen := make(map[string]struct{}, len(texts))
	unique := texts[:0]

	for _, t := range texts {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		unique = append(unique, t)
	}

	return unique
}

// collect runs queries in order and scans every row of every result into one slice.
// Zero queries is a successful empty result.
func collect[T any](
	ctx context.Context,
	s SnapshotStore,
	action string,
	queries []*goqu.SelectDataset,
	scan scanFunc[T],
) ([]T, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	ctx, observer := s.startQuery(ctx, action)

	var results []T
	for _, query := range queries {
		sqlQuery, _, buildErr := query.ToSQL()
		if buildErr != nil {
			s.logError(ctx, logMsgBuildSelectQueryFailed, buildErr, logAttrAction, action)
			observer.finishError(phaseBuild)

			return nil, errors.Join(legisnapshot.ErrBuildingQueryFailed, buildErr)
		}

		rows, queryErr := s.executeQuery(ctx, sqlQuery, action)
		if queryErr != nil {
			observer.finishError(phaseQuery)
			return nil, queryErr
		}

		var phase string
		var processErr error
		results, phase, processErr = processQueryResults(ctx, s, rows, results, scan)
		s.closeRows(ctx, rows)

		if processErr != nil {
			observer.finishError(phase)
			return nil, processErr
		}
	}

	observer.finishSuccess(len(results))

	return results, nil
}

// executeQuery runs one SQL query and logs it with its duration.
func (s SnapshotStore) executeQuery(ctx context.Context, sqlQuery, action string) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		return nil, errors.Join(legisnapshot.ErrQueryingFailed, err)
	}

	return rows, nil
}

// closeRows closes rows and logs any error at warn level.
// database/sql already reports the close failure of exhausted rows through Err, which aborts the query.
func (s SnapshotStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, err)
	}
}

// processQueryResults scans every row and appends it to results.
// On failure it also returns the failing phase.
func processQueryResults[T any](
	ctx context.Context,
	s SnapshotStore,
	rows adapters.DBRows,
	results []T,
	scan scanFunc[T],
) ([]T, string, error) {
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			s.logError(ctx, logMsgScanRowFailed, err)
			return nil, phaseScan, errors.Join(legisnapshot.ErrScanningDBRowFailed, err)
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err)
		return nil, phaseQuery, errors.Join(legisnapshot.ErrQueryingFailed, err)
	}

	return results, "", nil
}

func scanString(rows adapters.DBRows) (string, error) {
	var value sql.NullString
	if err := rows.Scan(&value); err != nil {
		return "", err
	}

	return value.String, nil
}

func scanDatePair(rows adapters.DBRows) ([2]legisnapshot.Date, error) {
	var start, end sql.NullString
	if err := rows.Scan(&start, &end); err != nil {
		return [2]legisnapshot.Date{}, err
	}

	startDate, err := columnDate(colStart, start)
	if err != nil {
		return [2]legisnapshot.Date{}, err
	}

	endDate, err := columnDate(colEnd, end)
	if err != nil {
		return [2]legisnapshot.Date{}, err
	}

	return [2]legisnapshot.Date{startDate, endDate}, nil
}

func scanAdjacencyRecord(rows adapters.DBRows) (legisnapshot.AdjacencyRecord, error) {
	var element, parent, position, state, start, end, scope sql.NullString
	if err := rows.Scan(&element, &parent, &position, &state, &start, &end, &scope); err != nil {
		return legisnapshot.AdjacencyRecord{}, err
	}

	record := legisnapshot.AdjacencyRecord{
		Element: element.String,
		Parent:  parent.String,
		State:   legisnapshot.LifecycleState(state.String),
		Scope:   scope.String,
	}

	var err error
	if record.Position, err = columnInt(colPosition, position); err != nil {
		return legisnapshot.AdjacencyRecord{}, err
	}
	if record.ValidityStart, err = columnDate(colStart, start); err != nil {
		return legisnapshot.AdjacencyRecord{}, err
	}
	if record.ValidityEnd, err = columnDate(colEnd, end); err != nil {
		return legisnapshot.AdjacencyRecord{}, err
	}

	return record, nil
}

func scanSection(rows adapters.DBRows) (legisnapshot.SectionData, error) {
	var section legisnapshot.SectionData
	err := rows.Scan(&section.ID, &section.Title, &section.Comment)

	return section, err
}

func scanArticleHeadline(rows adapters.DBRows) (legisnapshot.ArticleData, error) {
	var article legisnapshot.ArticleData
	var state string
	var start, end sql.NullString

	if err := rows.Scan(&article.ID, &article.Number, &state, &start, &end, &article.Type); err != nil {
		return legisnapshot.ArticleData{}, err
	}

	return withArticleDates(article, state, start, end)
}

func scanArticleFull(rows adapters.DBRows) (legisnapshot.ArticleData, error) {
	var article legisnapshot.ArticleData
	var state string
	var start, end sql.NullString

	err := rows.Scan(&article.ID, &article.Number, &state, &start, &end, &article.Type, &article.Body, &article.Note)
	if err != nil {
		return legisnapshot.ArticleData{}, err
	}

	return withArticleDates(article, state, start, end)
}

func withArticleDates(
	article legisnapshot.ArticleData,
	state string,
	start, end sql.NullString,
) (legisnapshot.ArticleData, error) {
	article.State = legisnapshot.LifecycleState(state)

	var err error
	if article.ValidityStart, err = columnDate(colValidityStart, start); err != nil {
		return legisnapshot.ArticleData{}, err
	}
	if article.ValidityEnd, err = columnDate(colValidityEnd, end); err != nil {
		return legisnapshot.ArticleData{}, err
	}

	return article, nil
}

func scanHeader(rows adapters.DBRows) (legisnapshot.HeaderData, error) {
	var header legisnapshot.HeaderData
	var level sql.NullString

	if err := rows.Scan(&header.ID, &header.Title, &level, &header.ContainerID); err != nil {
		return legisnapshot.HeaderData{}, err
	}

	var err error
	header.Level, err = columnInt(colLevel, level)

	return header, err
}

func scanContainer(rows adapters.DBRows) (legisnapshot.TextData, error) {
	var text legisnapshot.TextData
	var state string
	var published sql.NullString

	if err := rows.Scan(&text.ID, &text.Title, &state, &text.Nature, &text.Number, &published); err != nil {
		return legisnapshot.TextData{}, err
	}
	text.State = legisnapshot.LifecycleState(state)

	var err error
	text.PublicationDate, err = columnDate(colPublicationDate, published)

	return text, err
}

func scanTextVersion(rows adapters.DBRows) (legisnapshot.TextData, error) {
	var text legisnapshot.TextData
	var state string
	var start, end, published sql.NullString

	err := rows.Scan(
		&text.ID, &text.Scope, &text.Title, &text.FullTitle, &text.Nature, &state, &text.Number,
		&start, &end, &published,
	)
	if err != nil {
		return legisnapshot.TextData{}, err
	}
	text.State = legisnapshot.LifecycleState(state)

	if text.ValidityStart, err = columnDate(colValidityStart, start); err != nil {
		return legisnapshot.TextData{}, err
	}
	if text.ValidityEnd, err = columnDate(colValidityEnd, end); err != nil {
		return legisnapshot.TextData{}, err
	}
	if text.PublicationDate, err = columnDate(colPublicationDate, published); err != nil {
		return legisnapshot.TextData{}, err
	}

	return text, nil
}

// columnDate parses a date column. NULL and empty values give the zero Date.
func columnDate(column string, value sql.NullString) (legisnapshot.Date, error) {
	if !value.Valid || value.String == "" {
		return legisnapshot.Date{}, nil
	}

	d, err := legisnapshot.ParseDate(withoutTimeOfDay(value.String))
	if err != nil {
		return legisnapshot.Date{}, fmt.Errorf("column %s: malformed date %q", column, value.String)
	}

	return d, nil
}

// withoutTimeOfDay drops the time part some drivers render for date columns,
// as in "2017-01-01T00:00:00Z" or "2017-01-01 00:00:00".
func withoutTimeOfDay(raw string) string {
	const dateLength = len("2006-01-02")

	s := strings.TrimSpace(raw)
	if len(s) > dateLength && (s[dateLength] == 'T' || s[dateLength] == ' ') {
		return s[:dateLength]
	}

	return s
}

// columnInt parses an integer column rendered as text. NULL and empty values give 0.
func columnInt(column string, value sql.NullString) (int, error) {
	if !value.Valid || value.String == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(value.String)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}

	return n, nil
}
