package legisnapshot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTextNature is the nature listed by ListTexts when none is given.
const DefaultTextNature = "CODE"

// DefaultContainerStates are the states listed by ListContainers when none is given.
var DefaultContainerStates = []LifecycleState{StateInForce, StateExtended, StateNotExtended}

// Service answers snapshot requests: the structure or full content of a text as it stood on a date,
// and the dates on which that text changed. It holds no request state and is safe for concurrent use.
type Service struct {
	store          Store
	closure        *ClosureResolver
	elements       *ElementResolver
	in             *instrumentation
	structureDepth int
	now            func() time.Time
}

// NewService creates a Service reading from store.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	in := &instrumentation{}
	s := &Service{
		store:          store,
		closure:        &ClosureResolver{provider: store, in: in},
		elements:       &ElementResolver{source: store, in: in},
		in:             in,
		structureDepth: DefaultStructureDepth,
		now:            time.Now,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ParseDate parses a reference date at the service boundary.
// An empty string means today (UTC). Unparsable dates and dates outside
// [MinReferenceDate, MaxReferenceDate] yield ErrInvalidDate.
func (s *Service) ParseDate(raw string) (Date, error) {
	if strings.TrimSpace(raw) == "" {
		return Today(s.now), nil
	}

	date, err := ParseDate(raw)
	if err != nil {
		return Date{}, err
	}

	if err = ValidateReferenceDate(date); err != nil {
		return Date{}, err
	}

	return date, nil
}

// GetStructure returns the navigation tree of rootID on date: ids, numbers and titles without article
// bodies, limited to the configured structure depth. A zero date means today.
// It returns ErrNotFound when rootID matches no adjacency row at any date.
func (s *Service) GetStructure(ctx context.Context, rootID string, date Date) (TreeNode, error) {
	return s.snapshot(ctx, SpanNameStructure, OperationStructure, rootID, date, s.structureDepth, ContentHeadlines)
}

// GetFull returns the complete tree of rootID on date, at unbounded depth and with article bodies.
// A zero date means today. It returns ErrNotFound when rootID matches no adjacency row at any date.
func (s *Service) GetFull(ctx context.Context, rootID string, date Date) (TreeNode, error) {
	return s.snapshot(ctx, SpanNameFull, OperationFull, rootID, date, 0, ContentFull)
}

func (s *Service) snapshot(
	ctx context.Context,
	spanName string,
	operation string,
	rootID string,
	date Date,
	maxDepth int,
	mode ContentMode,
) (TreeNode, error) {
	if date.IsZero() {
		date = Today(s.now)
	}

	observer, ctx := s.in.startRequest(ctx, spanName, operation, uuid.NewString(), rootID, date)

	tree, dangling, err := s.buildSnapshot(ctx, rootID, date, maxDepth, mode)
	if err != nil {
		observer.finishError(err)
		return TreeNode{}, err
	}

	nodeCount := tree.Count()
	observer.finishSuccess(nodeCount, logAttrDate, date.String(), logAttrNodeCount, nodeCount, logAttrDangling, dangling)

	return tree, nil
}

func (s *Service) buildSnapshot(
	ctx context.Context,
	rootID string,
	date Date,
	maxDepth int,
	mode ContentMode,
) (TreeNode, int, error) {
	if err := ValidateReferenceDate(date); err != nil {
		return TreeNode{}, 0, err
	}

	location, err := s.locate(ctx, rootID)
	if err != nil {
		return TreeNode{}, 0, err
	}

	request := ClosureRequest{Scope: location.Scope, Date: date, MaxDepth: maxDepth}
	rootParent := RootParent
	if !location.IsScope {
		request.Start = rootID
		rootParent = rootID
	}

	rows, err := s.closure.Resolve(ctx, request)
	if err != nil {
		return TreeNode{}, 0, err
	}

	ids := make([]string, 0, len(rows)+1)
	ids = append(ids, rootID)
	for _, row := range rows {
		ids = append(ids, row.Element)
	}

	resolution, err := s.elements.Resolve(ctx, ids, mode)
	if err != nil {
		return TreeNode{}, 0, err
	}

	if err = ctx.Err(); err != nil {
		return TreeNode{}, 0, err
	}

	children := assembleTree(JoinResolved(rows, resolution.Elements), rootParent, func(element, parent string) {
		s.in.logDebug(ctx, logMsgCycleSkipped, logAttrElementID, element, logAttrParentID, parent)
	})

	return NewRootNode(resolution.Elements[rootID], children), len(resolution.Dangling), nil
}

func (s *Service) locate(ctx context.Context, id string) (RootLocation, error) {
	if strings.TrimSpace(id) == "" {
		return RootLocation{}, errors.Join(ErrNotFound, errors.New("empty element id"))
	}

	location, err := s.store.LocateRoot(ctx, id)
	if err != nil {
		return RootLocation{}, wrapStoreError(err)
	}

	return location, nil
}

// GetValidityDates returns every distinct validity start and end date recorded for the scope of
// elementID, sorted ascending. It returns ErrNotFound when elementID matches no adjacency row.
func (s *Service) GetValidityDates(ctx context.Context, elementID string) ([]Date, error) {
	observer, ctx := s.in.startRequest(ctx, SpanNameDates, OperationDates, uuid.NewString(), elementID, Date{})

	dates, err := s.validityDates(ctx, elementID)
	if err != nil {
		observer.finishError(err)
		return nil, err
	}

	observer.finishSuccess(-1, logAttrDateCount, len(dates))

	return dates, nil
}

func (s *Service) validityDates(ctx context.Context, elementID string) ([]Date, error) {
	location, err := s.locate(ctx, elementID)
	if err != nil {
		return nil, err
	}

	raw, err := s.store.ValidityDates(ctx, location.Scope)
	if err != nil {
		return nil, wrapStoreError(err)
	}

	return SortedUniqueDates(raw), nil
}

// SortedUniqueDates sorts dates ascending and drops zero and duplicate values.
func SortedUniqueDates(dates []Date) []Date {
	sorted := make([]Date, 0, len(dates))
	for _, d := range dates {
		if !d.IsZero() {
			sorted = append(sorted, d)
		}
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	unique := sorted[:0]
	for i, d := range sorted {
		if i > 0 && d.Equal(sorted[i-1]) {
			continue
		}
		unique = append(unique, d)
	}

	return unique
}

// GetArticle returns one article with its body and note. It returns ErrNotFound when the article
// is not in the articles table.
func (s *Service) GetArticle(ctx context.Context, articleID string) (TypedElement, error) {
	observer, ctx := s.in.startRequest(ctx, SpanNameArticle, OperationArticle, uuid.NewString(), articleID, Date{})

	article, err := s.article(ctx, articleID)
	if err != nil {
		observer.finishError(err)
		return TypedElement{}, err
	}

	observer.finishSuccess(1)

	return article, nil
}

func (s *Service) article(ctx context.Context, articleID string) (TypedElement, error) {
	if ClassifyElementID(articleID) != KindArticle {
		return TypedElement{}, errors.Join(ErrNotFound, fmt.Errorf("%q is not an article id", articleID))
	}

	elements, err := s.elements.fetchKind(ctx, KindArticle, []string{articleID}, ContentFull)
	if err != nil {
		return TypedElement{}, wrapStoreError(err)
	}

	for _, element := range elements {
		if element.ID == articleID {
			return element, nil
		}
	}

	return TypedElement{}, errors.Join(ErrNotFound, fmt.Errorf("article %s", articleID))
}

// ListTexts returns the texts of the given nature (CODE, LOI, DECRET, ...) ordered by title.
// An empty nature lists codes.
func (s *Service) ListTexts(ctx context.Context, nature string) ([]TypedElement, error) {
	if nature == "" {
		nature = DefaultTextNature
	}

	observer, ctx := s.in.startRequest(ctx, SpanNameTexts, OperationTexts, uuid.NewString(), "", Date{})

	rows, err := s.store.ListTexts(ctx, nature)
	if err != nil {
		err = wrapStoreError(err)
		observer.finishError(err)
		return nil, err
	}

	texts := make([]TypedElement, 0, len(rows))
	for _, row := range rows {
		texts = append(texts, NewTextElement(cleanText(row)))
	}

	sort.SliceStable(texts, func(i, j int) bool { return texts[i].Text.Title < texts[j].Text.Title })

	observer.finishSuccess(len(texts), logAttrNature, nature, logAttrTextCount, len(texts))

	return texts, nil
}

// ListContainers returns the collective-agreement containers of the given nature (IDCC, TI, ...) whose
// state is one of states, latest publication first. An empty nature lists every nature and no states
// means DefaultContainerStates.
func (s *Service) ListContainers(ctx context.Context, nature string, states ...LifecycleState) ([]TypedElement, error) {
	if len(states) == 0 {
		states = DefaultContainerStates
	}

	observer, ctx := s.in.startRequest(ctx, SpanNameContainers, OperationContainers, uuid.NewString(), "", Date{})

	rows, err := s.store.ListContainers(ctx, nature, slices.Clone(states))
	if err != nil {
		err = wrapStoreError(err)
		observer.finishError(err)
		return nil, err
	}

	containers := make([]TypedElement, 0, len(rows))
	for _, row := range rows {
		containers = append(containers, NewTextElement(cleanText(row)))
	}

	sort.SliceStable(containers, func(i, j int) bool {
		return publishedLater(containers[i].Text.PublicationDate, containers[j].Text.PublicationDate)
	})

	stateNames := make([]string, 0, len(states))
	for _, state := range states {
		stateNames = append(stateNames, string(state))
	}

	observer.finishSuccess(len(containers),
		logAttrNature, nature, logAttrStates, strings.Join(stateNames, ","), logAttrTextCount, len(containers))

	return containers, nil
}

// publishedLater orders publication dates newest first, missing dates last.
func publishedLater(a, b Date) bool {
	if b.IsZero() {
		return !a.IsZero()
	}

	return a.After(b)
}

// GetParentSections returns the ancestors of elementID on date with headline content, from the enclosing
// text down to the immediate parent. A zero date means today.
// A scope root has no parents, and neither has an element that is not attached on date.
// It returns ErrNotFound when elementID matches no adjacency row at any date.
func (s *Service) GetParentSections(ctx context.Context, elementID string, date Date) ([]TypedElement, error) {
	if date.IsZero() {
		date = Today(s.now)
	}

	observer, ctx := s.in.startRequest(ctx, SpanNameParents, OperationParents, uuid.NewString(), elementID, date)

	parents, err := s.parentSections(ctx, elementID, date)
	if err != nil {
		observer.finishError(err)
		return nil, err
	}

	observer.finishSuccess(-1, logAttrDate, date.String(), logAttrParentCount, len(parents))

	return parents, nil
}

func (s *Service) parentSections(ctx context.Context, elementID string, date Date) ([]TypedElement, error) {
	if err := ValidateReferenceDate(date); err != nil {
		return nil, err
	}

	location, err := s.locate(ctx, elementID)
	if err != nil {
		return nil, err
	}

	parents := []TypedElement{}
	if location.IsScope {
		return parents, nil
	}

	ancestors, err := s.ancestorIDs(ctx, location.Scope, elementID, date)
	if err != nil || len(ancestors) == 0 {
		return parents, err
	}

	resolution, err := s.elements.Resolve(ctx, ancestors, ContentHeadlines)
	if err != nil {
		return nil, err
	}

	for _, id := range ancestors {
		parents = append(parents, resolution.Elements[id])
	}

	return parents, nil
}

// ancestorIDs walks up from element through the rows valid on date, one store round trip per level,
// and returns the chain root first. The walk stops at the root sentinel, where the scope is added,
// at an ancestor not attached on date, or at an ancestor already visited.
func (s *Service) ancestorIDs(ctx context.Context, scope, element string, date Date) ([]string, error) {
	var chain []string
	visited := map[string]bool{element: true}

	for current := element; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := s.store.Parents(ctx, scope, current, date)
		if err != nil {
			return nil, wrapStoreError(err)
		}

		row, attached := firstAttachment(rows, date)
		if !attached {
			break
		}

		if row.Parent == RootParent {
			chain = append(chain, scope)
			break
		}

		if visited[row.Parent] {
			s.in.logDebug(ctx, logMsgCycleSkipped, logAttrElementID, row.Parent, logAttrParentID, current)
			break
		}

		visited[row.Parent] = true
		chain = append(chain, row.Parent)
		current = row.Parent
	}

	slices.Reverse(chain)

	return chain, nil
}

// firstAttachment picks the valid row with the lowest (position, parent) among rows.
func firstAttachment(rows []AdjacencyRecord, date Date) (AdjacencyRecord, bool) {
	var (
		best  AdjacencyRecord
		found bool
	)

	for _, row := range rows {
		if !row.IsValidAt(date) {
			continue
		}

		if !found || row.Position < best.Position || (row.Position == best.Position && row.Parent < best.Parent) {
			best, found = row, true
		}
	}

	return best, found
}
