package legisnapshot

// RootParent is the canonical parent value of the top-level rows of a scope.
// Stores that persist the root as NULL must normalize it to RootParent.
const RootParent = ""

// LifecycleState is the lifecycle state (etat) of an adjacency row or article.
type LifecycleState string

// Lifecycle states found in the upstream archives.
const (
	StateInForce         LifecycleState = "VIGUEUR"
	StateInForceDeferred LifecycleState = "VIGUEUR_DIFF"
	StateExtended        LifecycleState = "VIGUEUR_ETEN"
	StateNotExtended     LifecycleState = "VIGUEUR_NON_ETEN"
	StateRepealed        LifecycleState = "ABROGE"
	StateRepealedDefer   LifecycleState = "ABROGE_DIFF"
	StateModified        LifecycleState = "MODIFIE"
	StateModifiedVoid    LifecycleState = "MODIFIE_MORT_NE"
	StateTransferred     LifecycleState = "TRANSFERE"
	StateExpired         LifecycleState = "PERIME"
	StateCancelled       LifecycleState = "ANNULE"
	StateDisjoined       LifecycleState = "DISJOINT"
)

// AdjacencyRecord is one row of the flat element/parent table.
type AdjacencyRecord struct {
	Element       string
	Parent        string
	Position      int
	State         LifecycleState
	ValidityStart Date
	ValidityEnd   Date
	Scope         string
}

// IsStructuralLink reports whether the row carries no validity interval at all.
// Such rows attach texts to the headers of a collective-agreement container and hold at any date.
func (r AdjacencyRecord) IsStructuralLink() bool {
	return r.ValidityStart.IsZero() && r.ValidityEnd.IsZero()
}

// IsValidAt reports whether the row is in force on ref.
//
// A row is valid when it started on or before ref and either ends on or after ref, ends on the
// OpenEnded sentinel, or is in the VIGUEUR state. The VIGUEUR disjunct is a known looseness of the
// temporal model: it can mask stale end dates, but it is what the published data relies on.
func (r AdjacencyRecord) IsValidAt(ref Date) bool {
	if r.ValidityStart.IsZero() {
		return r.ValidityEnd.IsZero()
	}

	if r.ValidityStart.After(ref) {
		return false
	}

	if r.State == StateInForce {
		return true
	}

	if r.ValidityEnd.IsZero() {
		return false
	}

	return !r.ValidityEnd.Before(ref) || r.ValidityEnd.Equal(OpenEnded)
}

// FilterValid returns the rows of records valid on ref, in their original order.
func FilterValid(records []AdjacencyRecord, ref Date) []AdjacencyRecord {
	valid := make([]AdjacencyRecord, 0, len(records))
	for _, r := range records {
		if r.IsValidAt(ref) {
			valid = append(valid, r)
		}
	}

	return valid
}
