package legisnapshot

import (
	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// SectionData is the content of a section (sections table).
type SectionData struct {
	ID      string `json:"id"`
	Title   string `json:"titre"`
	Comment string `json:"commentaire,omitempty"`
}

// ArticleData is the content of an article (articles table).
// Body and Note are only filled in ContentFull mode.
type ArticleData struct {
	ID            string         `json:"id"`
	Number        string         `json:"num"`
	Title         string         `json:"titre"`
	State         LifecycleState `json:"etat,omitempty"`
	ValidityStart Date           `json:"date_debut"`
	ValidityEnd   Date           `json:"date_fin"`
	Type          string         `json:"type,omitempty"`
	Body          string         `json:"texte,omitempty"`
	Note          string         `json:"nota,omitempty"`
}

// HeaderData is the content of a container header (tetiers table).
type HeaderData struct {
	ID          string `json:"id"`
	Title       string `json:"titre"`
	Level       int    `json:"niv"`
	ContainerID string `json:"conteneur_id,omitempty"`
}

// TextData is the metadata of a text version or a container.
type TextData struct {
	ID              string         `json:"id"`
	Scope           string         `json:"cid,omitempty"`
	Title           string         `json:"titre"`
	FullTitle       string         `json:"titrefull,omitempty"`
	Nature          string         `json:"nature,omitempty"`
	State           LifecycleState `json:"etat,omitempty"`
	Number          string         `json:"num,omitempty"`
	ValidityStart   Date           `json:"date_debut"`
	ValidityEnd     Date           `json:"date_fin"`
	PublicationDate Date           `json:"date_publi"`
}

// TypedElement is the resolved content of an element, tagged by Kind.
// Exactly one of the variant pointers is set, unless Stub is true.
type TypedElement struct {
	Kind    Kind
	ID      string
	Stub    bool
	Section *SectionData
	Article *ArticleData
	Header  *HeaderData
	Text    *TextData
}

type stubData struct {
	ID string `json:"id"`
}

// NewStubElement returns the placeholder used for an id missing from its type table.
func NewStubElement(id string) TypedElement {
	return TypedElement{Kind: ClassifyElementID(id), ID: id, Stub: true}
}

// NewSectionElement wraps SectionData.
func NewSectionElement(data SectionData) TypedElement {
	return TypedElement{Kind: KindSection, ID: data.ID, Section: &data}
}

// NewArticleElement wraps ArticleData.
func NewArticleElement(data ArticleData) TypedElement {
	return TypedElement{Kind: KindArticle, ID: data.ID, Article: &data}
}

// NewHeaderElement wraps HeaderData.
func NewHeaderElement(data HeaderData) TypedElement {
	return TypedElement{Kind: KindHeader, ID: data.ID, Header: &data}
}

// NewTextElement wraps TextData.
func NewTextElement(data TextData) TypedElement {
	return TypedElement{Kind: KindText, ID: data.ID, Text: &data}
}

// Title returns the display title of the element, whatever its kind.
func (e TypedElement) Title() string {
	switch {
	case e.Section != nil:
		return e.Section.Title
	case e.Article != nil:
		return e.Article.Title
	case e.Header != nil:
		return e.Header.Title
	case e.Text != nil:
		return e.Text.Title
	default:
		return ""
	}
}

func (e TypedElement) payload() any {
	switch {
	case e.Stub:
		return stubData{ID: e.ID}
	case e.Section != nil:
		return e.Section
	case e.Article != nil:
		return e.Article
	case e.Header != nil:
		return e.Header
	case e.Text != nil:
		return e.Text
	default:
		return stubData{ID: e.ID}
	}
}

// MarshalJSON encodes the active variant only. A stub encodes as {"id": ...}.
func (e TypedElement) MarshalJSON() ([]byte, error) {
	return jsonAPI.Marshal(e.payload())
}
