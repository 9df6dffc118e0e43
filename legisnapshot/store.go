package legisnapshot

import (
	"context"
)

// ContentMode selects how much article content the Element Resolver loads.
type ContentMode uint8

const (
	// ContentHeadlines loads ids, numbers and titles only.
	ContentHeadlines ContentMode = iota
	// ContentFull also loads article bodies and notes.
	ContentFull
)

// String returns "headlines" or "full".
func (m ContentMode) String() string {
	if m == ContentFull {
		return "full"
	}

	return "headlines"
}

// AdjacencyProvider reads the flat element/parent table.
//
// Implementations may pre-filter on validity; the Closure Resolver filters every returned row again.
// Rows whose parent is the root sentinel must be returned with Parent == RootParent.
type AdjacencyProvider interface {
	// Roots returns the rows of scope attached to the root sentinel.
	Roots(ctx context.Context, scope string, date Date) ([]AdjacencyRecord, error)

	// Children returns the rows of scope whose parent is one of parents.
	Children(ctx context.Context, scope string, parents []string, date Date) ([]AdjacencyRecord, error)
}

// TypedElementSource fetches typed content in batches, one call per kind.
// Ids missing from the type table are simply absent from the result.
type TypedElementSource interface {
	FetchSections(ctx context.Context, ids []string) ([]SectionData, error)
	FetchArticles(ctx context.Context, ids []string, mode ContentMode) ([]ArticleData, error)
	FetchHeaders(ctx context.Context, ids []string) ([]HeaderData, error)
	FetchTexts(ctx context.Context, ids []string) ([]TextData, error)
}

// RootLocation is where a requested id lives in the adjacency table.
type RootLocation struct {
	// ID is the requested id.
	ID string
	// Scope is the enclosing text id (cid).
	Scope string
	// IsScope is true when ID is itself the scope, its top-level rows hang off the root sentinel.
	IsScope bool
}

// RootLocator finds the scope of an arbitrary element id.
type RootLocator interface {
	// LocateRoot returns ErrNotFound when id matches no adjacency row at any date.
	LocateRoot(ctx context.Context, id string) (RootLocation, error)
}

// ValidityDateSource lists the validity boundaries recorded for a scope.
type ValidityDateSource interface {
	// ValidityDates returns every non-null start and end date of the scope's rows, in any order.
	ValidityDates(ctx context.Context, scope string) ([]Date, error)
}

// TextCatalog lists the texts of a given nature.
type TextCatalog interface {
	ListTexts(ctx context.Context, nature string) ([]TextData, error)
}

// ContainerCatalog lists collective-agreement containers (conteneurs).
type ContainerCatalog interface {
	// ListContainers returns the containers in one of states, of the given nature unless nature is
	// empty, latest publication first.
	ListContainers(ctx context.Context, nature string, states []LifecycleState) ([]TextData, error)
}

// ParentProvider reads the rows that attach an element to its parents.
type ParentProvider interface {
	// Parents returns the rows of scope whose element is element.
	Parents(ctx context.Context, scope string, element string, date Date) ([]AdjacencyRecord, error)
}

// Store is everything the Snapshot Service needs from the backing store.
type Store interface {
	AdjacencyProvider
	ParentProvider
	TypedElementSource
	RootLocator
	ValidityDateSource
	TextCatalog
	ContainerCatalog
}
