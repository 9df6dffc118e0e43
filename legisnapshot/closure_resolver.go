package legisnapshot

import (
	"context"
)

// ClosureRequest describes one closure computation.
type ClosureRequest struct {
	// Scope is the enclosing text id (cid) all rows must belong to.
	Scope string
	// Date is the reference date rows must be valid on.
	Date Date
	// Start is the element whose descendants are collected. Empty means the scope root.
	Start string
	// MaxDepth caps the number of levels collected below Start. 0 means unbounded.
	MaxDepth int
}

type edgeKey struct {
	element string
	parent  string
}

// ClosureResolver computes the valid descendants of an element with a breadth-first traversal,
// issuing one store round trip per depth level.
type ClosureResolver struct {
	provider AdjacencyProvider
	in       *instrumentation
}

// NewClosureResolver creates a ClosureResolver reading from provider.
// Only the observability options (WithLogger, WithContextualLogger, WithMetrics, WithTracing) have an effect.
func NewClosureResolver(provider AdjacencyProvider, opts ...ServiceOption) (*ClosureResolver, error) {
	in, err := instrumentationFrom(opts)
	if err != nil {
		return nil, err
	}

	return &ClosureResolver{provider: provider, in: in}, nil
}

// Resolve returns every row reachable from req.Start (or from the scope root) that is valid on req.Date,
// in discovery order. Duplicate (element, parent) pairs keep the first row. An empty result is not an error.
func (cr *ClosureResolver) Resolve(ctx context.Context, req ClosureRequest) ([]AdjacencyRecord, error) {
	seenEdges := make(map[edgeKey]struct{})
	expanded := make(map[string]struct{})
	if req.Start != "" {
		expanded[req.Start] = struct{}{}
	}

	var closure []AdjacencyRecord

	for level := 1; req.MaxDepth == 0 || level <= req.MaxDepth; level++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			rows []AdjacencyRecord
			err  error
		)

		switch {
		case level == 1 && req.Start == "":
			rows, err = cr.provider.Roots(ctx, req.Scope, req.Date)
		case level == 1:
			rows, err = cr.provider.Children(ctx, req.Scope, []string{req.Start}, req.Date)
		default:
			frontier := cr.frontier(closure, expanded)
			if len(frontier) == 0 {
				return closure, nil
			}
			rows, err = cr.provider.Children(ctx, req.Scope, frontier, req.Date)
		}

		if err != nil {
			return nil, wrapStoreError(err)
		}

		added := 0
		for _, row := range rows {
			if !row.IsValidAt(req.Date) {
				continue
			}

			key := edgeKey{element: row.Element, parent: row.Parent}
			if _, dup := seenEdges[key]; dup {
				cr.in.logDebug(ctx, logMsgDuplicateDropped,
					logAttrElementID, row.Element, logAttrParentID, row.Parent, logAttrScope, req.Scope)
				continue
			}

			seenEdges[key] = struct{}{}
			closure = append(closure, row)
			added++
		}

		cr.in.logDebug(ctx, logMsgClosureLevel, logAttrScope, req.Scope, logAttrLevel, level, logAttrRowCount, added)

		if added == 0 {
			return closure, nil
		}
	}

	return closure, nil
}

// frontier returns the container elements of closure not expanded yet and marks them as expanded.
func (cr *ClosureResolver) frontier(closure []AdjacencyRecord, expanded map[string]struct{}) []string {
	var next []string
	for _, row := range closure {
		if !ClassifyElementID(row.Element).CanHaveChildren() {
			continue
		}

		if _, done := expanded[row.Element]; done {
			continue
		}

		expanded[row.Element] = struct{}{}
		next = append(next, row.Element)
	}

	return next
}
