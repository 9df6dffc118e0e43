// Package legisnapshot reconstructs legal texts (codes, statutes, decrees, collective agreements)
// as they stood on an arbitrary reference date.
//
// The source of truth is a flat, append-only adjacency table where every row links an element to
// its parent with a sibling position, a lifecycle state and a validity interval. Element content
// lives in separate type tables; the kind of an element is encoded in its id.
//
// The package is split into the same stages a request goes through:
//
//   - Validity Filter: AdjacencyRecord.IsValidAt decides which rows are in force on a date
//   - Closure Resolver: ClosureResolver walks the parent -> child relation breadth-first,
//     one store round trip per depth level, restricted to valid rows
//   - Element Resolver: ElementResolver fetches typed content with one batch per Kind,
//     turning ids missing from their type table into stub elements
//   - Tree Assembler: AssembleTree nests the flat rows ordered by position
//   - Snapshot Service: Service orchestrates the stages behind GetStructure, GetFull
//     and GetValidityDates
//
// Storage is injected through the Store interface; see the sqlengine sub-package for the
// relational implementation and resultcache for an optional memoizing layer.
//
// Usage example:
//
//	store, _ := sqlengine.NewSnapshotStoreFromPGXPool(pool)
//	service, _ := legisnapshot.NewService(store, legisnapshot.WithLogger(slog.Default()))
//
//	date, _ := service.ParseDate("2017-01-01")
//	tree, err := service.GetFull(ctx, "LEGISCTA000006198560", date)
//	if errors.Is(err, legisnapshot.ErrNotFound) {
//		// the element never existed
//	}
package legisnapshot
