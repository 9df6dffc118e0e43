package legisnapshot

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Resolution is the outcome of a batch resolution.
type Resolution struct {
	// Elements maps every requested id to its content, or to a stub for dangling ids.
	Elements map[string]TypedElement
	// Dangling lists the ids that had no record in their type table, sorted by id.
	Dangling []DanglingReference
}

// ElementResolver fetches typed content for a set of ids with one store call per Kind present.
type ElementResolver struct {
	source TypedElementSource
	in     *instrumentation
}

// NewElementResolver creates an ElementResolver reading from source.
// Only the observability options (WithLogger, WithContextualLogger, WithMetrics, WithTracing) have an effect.
func NewElementResolver(source TypedElementSource, opts ...ServiceOption) (*ElementResolver, error) {
	in, err := instrumentationFrom(opts)
	if err != nil {
		return nil, err
	}

	return &ElementResolver{source: source, in: in}, nil
}

// ResolveBatch maps every id to its TypedElement. Ids missing from their type table become stubs and are
// reported as dangling references (logged at warn level and counted), never as an error.
// The per-kind fetches run concurrently; the first failure cancels the others and is returned.
func (er *ElementResolver) ResolveBatch(
	ctx context.Context,
	ids []string,
	mode ContentMode,
) (map[string]TypedElement, error) {
	resolution, err := er.Resolve(ctx, ids, mode)
	if err != nil {
		return nil, err
	}

	return resolution.Elements, nil
}

// Resolve is ResolveBatch, also returning the dangling references it found.
func (er *ElementResolver) Resolve(ctx context.Context, ids []string, mode ContentMode) (Resolution, error) {
	grouped := GroupIDsByKind(ids)

	var (
		mu       sync.Mutex
		resolved = make(map[string]TypedElement, len(ids))
	)

	collect := func(elements []TypedElement) {
		mu.Lock()
		defer mu.Unlock()
		for _, element := range elements {
			if _, ok := resolved[element.ID]; !ok {
				resolved[element.ID] = element
			}
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)

	for kind, kindIDs := range grouped {
		if kind == KindUnknown {
			continue
		}

		group.Go(func() error {
			start := time.Now()

			elements, err := er.fetchKind(groupCtx, kind, kindIDs, mode)
			if err != nil {
				return wrapStoreError(err)
			}

			duration := time.Since(start)
			er.in.recordDuration(groupCtx, MetricBatchDuration, duration, map[string]string{
				spanAttrOperation: OperationBatch,
				spanAttrKind:      kind.String(),
			})
			er.in.logDebug(groupCtx, logMsgBatchFetched,
				logAttrKind, kind.String(),
				logAttrIDCount, len(kindIDs),
				logAttrRowCount, len(elements),
				logAttrDurationMS, toMilliseconds(duration),
			)

			collect(elements)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Resolution{}, err
	}

	var dangling []DanglingReference
	for _, kindIDs := range grouped {
		for _, id := range kindIDs {
			if _, ok := resolved[id]; ok {
				continue
			}

			stub := NewStubElement(id)
			resolved[id] = stub
			dangling = append(dangling, DanglingReference{ElementID: id, Kind: stub.Kind})
		}
	}

	sort.Slice(dangling, func(i, j int) bool { return dangling[i].ElementID < dangling[j].ElementID })

	for _, ref := range dangling {
		er.in.logWarn(ctx, logMsgDanglingRef, logAttrElementID, ref.ElementID, logAttrKind, ref.Kind.String())
		er.in.incrementCounter(ctx, MetricDanglingReferences, map[string]string{spanAttrKind: ref.Kind.String()})
	}

	return Resolution{Elements: resolved, Dangling: dangling}, nil
}

// fetchKind issues the single store call for one kind and cleans the returned free-text fields.
func (er *ElementResolver) fetchKind(
	ctx context.Context,
	kind Kind,
	ids []string,
	mode ContentMode,
) ([]TypedElement, error) {
	switch kind {
	case KindSection:
		rows, err := er.source.FetchSections(ctx, ids)
		if err != nil {
			return nil, err
		}
		elements := make([]TypedElement, 0, len(rows))
		for _, row := range rows {
			elements = append(elements, NewSectionElement(cleanSection(row)))
		}
		return elements, nil

	case KindArticle:
		rows, err := er.source.FetchArticles(ctx, ids, mode)
		if err != nil {
			return nil, err
		}
		elements := make([]TypedElement, 0, len(rows))
		for _, row := range rows {
			if mode == ContentHeadlines {
				row.Body, row.Note = "", ""
			}
			elements = append(elements, NewArticleElement(cleanArticle(row)))
		}
		return elements, nil

	case KindHeader:
		rows, err := er.source.FetchHeaders(ctx, ids)
		if err != nil {
			return nil, err
		}
		elements := make([]TypedElement, 0, len(rows))
		for _, row := range rows {
			elements = append(elements, NewHeaderElement(cleanHeader(row)))
		}
		return elements, nil

	case KindText:
		rows, err := er.source.FetchTexts(ctx, ids)
		if err != nil {
			return nil, err
		}
		elements := make([]TypedElement, 0, len(rows))
		for _, row := range rows {
			elements = append(elements, NewTextElement(cleanText(row)))
		}
		return elements, nil

	default:
		return nil, nil
	}
}
