package legisnapshot

// Kind is the semantic classification of an element id.
type Kind uint8

const (
	// KindUnknown is assigned to ids that match no known convention.
	KindUnknown Kind = iota
	// KindText is a top-level text or container (LEGITEXT..., JORFTEXT..., KALICONT...).
	KindText
	// KindSection is a structural section (LEGISCTA...).
	KindSection
	// KindArticle is an article, always a leaf (LEGIARTI...).
	KindArticle
	// KindHeader is a titled grouping inside a container (KALITM...).
	KindHeader
)

var kindNames = [...]string{
	KindUnknown: "unknown",
	KindText:    "text",
	KindSection: "section",
	KindArticle: "article",
	KindHeader:  "header",
}

// String returns the lower-case kind name used in the JSON output.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return kindNames[KindUnknown]
}

// CanHaveChildren reports whether nodes of this kind carry a children collection.
func (k Kind) CanHaveChildren() bool {
	switch k {
	case KindText, KindSection, KindHeader:
		return true
	default:
		return false
	}
}

// Element ids look like LEGIARTI000006901754: a four-letter base (LEGI, JORF, KALI, CNIL, ...)
// followed by a four-letter type code. Header ids are generated as KALITM<n>-<i>.
const (
	typeCodeStart  = 4
	typeCodeEnd    = 8
	headerCodeEnd  = 6
	typeSection    = "SCTA"
	typeArticle    = "ARTI"
	typeText       = "TEXT"
	typeContainer  = "CONT"
	typeHeaderCode = "TM"
)

// ClassifyElementID derives the Kind of an element from its id.
func ClassifyElementID(id string) Kind {
	if len(id) >= headerCodeEnd && id[typeCodeStart:headerCodeEnd] == typeHeaderCode {
		return KindHeader
	}

	if len(id) < typeCodeEnd {
		return KindUnknown
	}

	switch id[typeCodeStart:typeCodeEnd] {
	case typeSection:
		return KindSection
	case typeArticle:
		return KindArticle
	case typeText, typeContainer:
		return KindText
	default:
		return KindUnknown
	}
}

// IsContainerID reports whether id designates a container (KALICONT...) rather than a text version.
func IsContainerID(id string) bool {
	return len(id) >= typeCodeEnd && id[typeCodeStart:typeCodeEnd] == typeContainer
}

// GroupIDsByKind partitions ids by Kind, keeping the first-seen order and dropping duplicates.
func GroupIDsByKind(ids []string) map[Kind][]string {
	grouped := make(map[Kind][]string)
	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		kind := ClassifyElementID(id)
		grouped[kind] = append(grouped[kind], id)
	}

	return grouped
}
