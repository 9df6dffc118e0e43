// Package fakestore is an in-memory legisnapshot.Store for tests.
//
// It returns adjacency rows without any validity pre-filtering, so the engine's own filter is what
// the tests observe, and it counts every call so tests can check round-trip budgets.
package fakestore

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
	"github.com/legilibre/legi-snapshot-go/testutil/fixture"
)

// Method names used as keys of Calls and FailOn.
const (
	MethodRoots          = "Roots"
	MethodChildren       = "Children"
	MethodParents        = "Parents"
	MethodLocateRoot     = "LocateRoot"
	MethodValidityDates  = "ValidityDates"
	MethodFetchSections  = "FetchSections"
	MethodFetchArticles  = "FetchArticles"
	MethodFetchHeaders   = "FetchHeaders"
	MethodFetchTexts     = "FetchTexts"
	MethodListTexts      = "ListTexts"
	MethodListContainers = "ListContainers"
)

// ErrInjected is the error returned by methods listed in FailOn.
var ErrInjected = errors.New("injected store failure")

// Store is an in-memory legisnapshot.Store.
type Store struct {
	data     fixture.Dataset
	mu       sync.Mutex
	calls    map[string]int
	failOn   map[string]error
	articles map[string]legisnapshot.ArticleData
}

// New creates a Store serving data.
func New(data fixture.Dataset) *Store {
	articles := make(map[string]legisnapshot.ArticleData, len(data.Articles))
	for _, a := range data.Articles {
		articles[a.ID] = a
	}

	return &Store{
		data:     data,
		calls:    make(map[string]int),
		failOn:   make(map[string]error),
		articles: articles,
	}
}

// NewScenario creates a Store serving fixture.Scenario().
func NewScenario() *Store {
	return New(fixture.Scenario())
}

// FailOn makes method return err from now on. A nil err uses ErrInjected.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		err = ErrInjected
	}
	s.failOn[method] = err
}

// AddAdjacency appends rows to the adjacency table.
func (s *Store) AddAdjacency(rows ...legisnapshot.AdjacencyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Adjacency = append(s.data.Adjacency, rows...)
}

// Calls returns how many times method was called.
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[method]
}

// ResetCalls clears the call counters.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

func (s *Store) enter(ctx context.Context, method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[method]++

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.failOn[method]
}

// Roots implements legisnapshot.AdjacencyProvider.
func (s *Store) Roots(ctx context.Context, scope string, _ legisnapshot.Date) ([]legisnapshot.AdjacencyRecord, error) {
	if err := s.enter(ctx, MethodRoots); err != nil {
		return nil, err
	}

	return s.rowsWhere(func(r legisnapshot.AdjacencyRecord) bool {
		return r.Scope == scope && r.Parent == legisnapshot.RootParent
	}), nil
}

// Children implements legisnapshot.AdjacencyProvider.
func (s *Store) Children(
	ctx context.Context,
	scope string,
	parents []string,
	_ legisnapshot.Date,
) ([]legisnapshot.AdjacencyRecord, error) {
	if err := s.enter(ctx, MethodChildren); err != nil {
		return nil, err
	}

	return s.rowsWhere(func(r legisnapshot.AdjacencyRecord) bool {
		return r.Scope == scope && slices.Contains(parents, r.Parent)
	}), nil
}

// Parents implements legisnapshot.ParentProvider.
func (s *Store) Parents(
	ctx context.Context,
	scope string,
	element string,
	_ legisnapshot.Date,
) ([]legisnapshot.AdjacencyRecord, error) {
	if err := s.enter(ctx, MethodParents); err != nil {
		return nil, err
	}

	return s.rowsWhere(func(r legisnapshot.AdjacencyRecord) bool {
		return r.Scope == scope && r.Element == element
	}), nil
}

func (s *Store) rowsWhere(match func(legisnapshot.AdjacencyRecord) bool) []legisnapshot.AdjacencyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []legisnapshot.AdjacencyRecord
	for _, r := range s.data.Adjacency {
		if match(r) {
			rows = append(rows, r)
		}
	}

	return rows
}

// LocateRoot implements legisnapshot.RootLocator.
func (s *Store) LocateRoot(ctx context.Context, id string) (legisnapshot.RootLocation, error) {
	if err := s.enter(ctx, MethodLocateRoot); err != nil {
		return legisnapshot.RootLocation{}, err
	}

	if rows := s.rowsWhere(func(r legisnapshot.AdjacencyRecord) bool { return r.Scope == id }); len(rows) > 0 {
		return legisnapshot.RootLocation{ID: id, Scope: id, IsScope: true}, nil
	}

	if rows := s.rowsWhere(func(r legisnapshot.AdjacencyRecord) bool { return r.Element == id }); len(rows) > 0 {
		return legisnapshot.RootLocation{ID: id, Scope: rows[0].Scope}, nil
	}

	if rows := s.rowsWhere(func(r legisnapshot.AdjacencyRecord) bool { return r.Parent == id }); len(rows) > 0 {
		return legisnapshot.RootLocation{ID: id, Scope: rows[0].Scope}, nil
	}

	return legisnapshot.RootLocation{}, legisnapshot.ErrNotFound
}

// ValidityDates implements legisnapshot.ValidityDateSource.
func (s *Store) ValidityDates(ctx context.Context, scope string) ([]legisnapshot.Date, error) {
	if err := s.enter(ctx, MethodValidityDates); err != nil {
		return nil, err
	}

	var dates []legisnapshot.Date
	for _, r := range s.rowsWhere(func(r legisnapshot.AdjacencyRecord) bool { return r.Scope == scope }) {
		dates = append(dates, r.ValidityStart, r.ValidityEnd)
	}

	return dates, nil
}

// FetchSections implements legisnapshot.TypedElementSource.
func (s *Store) FetchSections(ctx context.Context, ids []string) ([]legisnapshot.SectionData, error) {
	if err := s.enter(ctx, MethodFetchSections); err != nil {
		return nil, err
	}

	var found []legisnapshot.SectionData
	for _, section := range s.data.Sections {
		if slices.Contains(ids, section.ID) {
			found = append(found, section)
		}
	}

	return found, nil
}

// FetchArticles implements legisnapshot.TypedElementSource.
func (s *Store) FetchArticles(
	ctx context.Context,
	ids []string,
	mode legisnapshot.ContentMode,
) ([]legisnapshot.ArticleData, error) {
	if err := s.enter(ctx, MethodFetchArticles); err != nil {
		return nil, err
	}

	var found []legisnapshot.ArticleData
	for _, id := range ids {
		article, ok := s.articles[id]
		if !ok {
			continue
		}

		if mode == legisnapshot.ContentHeadlines {
			article.Body, article.Note = "", ""
		}
		found = append(found, article)
	}

	return found, nil
}

// FetchHeaders implements legisnapshot.TypedElementSource.
func (s *Store) FetchHeaders(ctx context.Context, ids []string) ([]legisnapshot.HeaderData, error) {
	if err := s.enter(ctx, MethodFetchHeaders); err != nil {
		return nil, err
	}

	var found []legisnapshot.HeaderData
	for _, header := range s.data.Headers {
		if slices.Contains(ids, header.ID) {
			found = append(found, header)
		}
	}

	return found, nil
}

// FetchTexts implements legisnapshot.TypedElementSource.
func (s *Store) FetchTexts(ctx context.Context, ids []string) ([]legisnapshot.TextData, error) {
	if err := s.enter(ctx, MethodFetchTexts); err != nil {
		return nil, err
	}

	var found []legisnapshot.TextData
	for _, text := range s.data.Texts {
		if slices.Contains(ids, text.ID) {
			found = append(found, text)
		}
	}

	return found, nil
}

// ListTexts implements legisnapshot.TextCatalog.
func (s *Store) ListTexts(ctx context.Context, nature string) ([]legisnapshot.TextData, error) {
	if err := s.enter(ctx, MethodListTexts); err != nil {
		return nil, err
	}

	var found []legisnapshot.TextData
	for _, text := range s.data.Texts {
		if text.Nature == nature && !legisnapshot.IsContainerID(text.ID) {
			found = append(found, text)
		}
	}

	return found, nil
}

// ListContainers implements legisnapshot.ContainerCatalog. Containers keep their dataset order.
func (s *Store) ListContainers(
	ctx context.Context,
	nature string,
	states []legisnapshot.LifecycleState,
) ([]legisnapshot.TextData, error) {
	if err := s.enter(ctx, MethodListContainers); err != nil {
		return nil, err
	}

	var found []legisnapshot.TextData
	for _, text := range s.data.Texts {
		if !legisnapshot.IsContainerID(text.ID) || !slices.Contains(states, text.State) {
			continue
		}

		if nature == "" || text.Nature == nature {
			found = append(found, text)
		}
	}

	return found, nil
}
