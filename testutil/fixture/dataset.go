// Package fixture holds the scenario data shared by the in-memory and SQLite test stores.
//
// The dataset mirrors excerpts of the LEGI and KALI archives:
//
//   - Code du travail: section LEGISCTA000006198560 holds a superseded and a current version of
//     article L2232-13, a duplicated adjacency row, siblings out of position order and one row
//     whose article is missing from the articles table.
//   - Code de l'environnement: section LEGISCTA000030730058 holds R2151-1, valid from 2015-06-14
//     to 2016-10-23.
//   - A collective-agreement container with headers and undated text links, next to an extended
//     and a repealed container that only appear in container listings.
package fixture

import (
	"github.com/legilibre/legi-snapshot-go/legisnapshot"
)

// Scope and element ids of the dataset.
const (
	CodeTravailID         = "LEGITEXT000006072050"
	PartieLegislativeID   = "LEGISCTA000006132321"
	PartieReglementaireID = "LEGISCTA000006132322"
	NegociationSectionID  = "LEGISCTA000006198560"
	ArticleL2232_12ID     = "LEGIARTI000006901754"
	ArticleL2232_13OldID  = "LEGIARTI000006901755"
	ArticleL2232_13NewID  = "LEGIARTI000033024090"
	ArticleL2232_14ID     = "LEGIARTI000006901756"
	DanglingArticleID     = "LEGIARTI000099999999"

	CodeEnvironnementID = "LEGITEXT000006074220"
	DispositionsID      = "LEGISCTA000030730058"
	ArticleR2151_1ID    = "LEGIARTI000030730068"
	ArticleR2151_2ID    = "LEGIARTI000030730070"

	ConventionID       = "KALICONT000005635384"
	TextesDeBaseID     = "KALITM1-1"
	TextesAttachesID   = "KALITM1-2"
	ConventionTextID   = "KALITEXT000005677408"
	AvenantTextID      = "KALITEXT000005678000"
	WithdrawnAvenantID = "KALITEXT000005679999"
	ImmobilierID       = "KALICONT000005635221"
	DenouncedID        = "KALICONT000005635100"
	UnknownElementID   = "LEGISCTA000000000000"
)

// Dataset is a complete store content: adjacency rows and the four type tables.
type Dataset struct {
	Adjacency []legisnapshot.AdjacencyRecord
	Sections  []legisnapshot.SectionData
	Articles  []legisnapshot.ArticleData
	Headers   []legisnapshot.HeaderData
	Texts     []legisnapshot.TextData
}

var (
	d20080501 = legisnapshot.MustParseDate("2008-05-01")
	d20160810 = legisnapshot.MustParseDate("2016-08-10")
	d20150614 = legisnapshot.MustParseDate("2015-06-14")
	d20161023 = legisnapshot.MustParseDate("2016-10-23")
	d20100101 = legisnapshot.MustParseDate("2010-01-01")
	open      = legisnapshot.OpenEnded
)

func row(
	scope, parent, element string,
	position int,
	state legisnapshot.LifecycleState,
	start, end legisnapshot.Date,
) legisnapshot.AdjacencyRecord {
	return legisnapshot.AdjacencyRecord{
		Element:       element,
		Parent:        parent,
		Position:      position,
		State:         state,
		ValidityStart: start,
		ValidityEnd:   end,
		Scope:         scope,
	}
}

// Scenario returns a fresh copy of the dataset.
func Scenario() Dataset {
	const (
		root    = legisnapshot.RootParent
		inForce = legisnapshot.StateInForce
	)

	return Dataset{
		Adjacency: []legisnapshot.AdjacencyRecord{
			// Code du travail
			row(CodeTravailID, root, PartieLegislativeID, 1, inForce, d20080501, open),
			row(CodeTravailID, root, PartieReglementaireID, 2, inForce, d20080501, open),
			row(CodeTravailID, PartieLegislativeID, NegociationSectionID, 1, inForce, d20080501, open),
			row(CodeTravailID, NegociationSectionID, ArticleL2232_14ID, 3, inForce, d20080501, open),
			row(CodeTravailID, NegociationSectionID, ArticleL2232_13OldID, 2, legisnapshot.StateModified, d20080501, d20160810),
			row(CodeTravailID, NegociationSectionID, ArticleL2232_12ID, 1, inForce, d20080501, open),
			row(CodeTravailID, NegociationSectionID, ArticleL2232_13NewID, 2, inForce, d20160810, open),
			row(CodeTravailID, NegociationSectionID, ArticleL2232_13NewID, 2, inForce, d20160810, open),
			row(CodeTravailID, NegociationSectionID, DanglingArticleID, 4, inForce, d20080501, open),

			// Code de l'environnement
			row(CodeEnvironnementID, root, DispositionsID, 1, inForce, d20150614, open),
			row(CodeEnvironnementID, DispositionsID, ArticleR2151_1ID, 1, legisnapshot.StateModified, d20150614, d20161023),
			row(CodeEnvironnementID, DispositionsID, ArticleR2151_2ID, 2, inForce, d20150614, open),

			// Collective agreement container
			row(ConventionID, root, TextesDeBaseID, 1, "", legisnapshot.Date{}, legisnapshot.Date{}),
			row(ConventionID, root, TextesAttachesID, 2, "", legisnapshot.Date{}, legisnapshot.Date{}),
			row(ConventionID, TextesDeBaseID, ConventionTextID, 1, "", legisnapshot.Date{}, legisnapshot.Date{}),
			row(ConventionID, TextesAttachesID, AvenantTextID, 1, "", legisnapshot.Date{}, legisnapshot.Date{}),
			row(ConventionID, TextesAttachesID, WithdrawnAvenantID, 2, "", legisnapshot.Date{}, d20100101),
		},
		Sections: []legisnapshot.SectionData{
			{ID: PartieLegislativeID, Title: "Partie législative"},
			{ID: PartieReglementaireID, Title: "Partie réglementaire"},
			{ID: NegociationSectionID, Title: "Section 1 : Négociation&#13;\n   de branche", Comment: "  "},
			{ID: DispositionsID, Title: "Section 1 : Dispositions générales"},
		},
		Articles: []legisnapshot.ArticleData{
			{
				ID: ArticleL2232_12ID, Number: "L2232-12", State: inForce,
				ValidityStart: d20080501, ValidityEnd: open,
				Body: "<p>La validité d'un accord d'entreprise est subordonnée à sa signature.</p>",
			},
			{
				ID: ArticleL2232_13OldID, Number: "L2232-13", State: legisnapshot.StateModified,
				ValidityStart: d20080501, ValidityEnd: d20160810,
				Body: "<p>Ancienne rédaction.</p>",
			},
			{
				ID: ArticleL2232_13NewID, Number: "L2232-13", State: inForce,
				ValidityStart: d20160810, ValidityEnd: open,
				Body: "<br/><p>Nouvelle rédaction.&#13;</p><p></p>",
				Note: "Conformément à l'article 21 de la loi n° 2016-1088.&#13;",
			},
			{
				ID: ArticleL2232_14ID, Number: "L2232-14", State: inForce,
				ValidityStart: d20080501, ValidityEnd: open,
				Body: "<p>Dispositions applicables.</p>",
			},
			{
				ID: ArticleR2151_1ID, Number: "R2151-1", State: legisnapshot.StateModified,
				ValidityStart: d20150614, ValidityEnd: d20161023,
				Body: "<p>Les dispositions du présent chapitre.</p>",
			},
			{
				ID: ArticleR2151_2ID, Number: "R2151-2", State: inForce,
				ValidityStart: d20150614, ValidityEnd: open,
				Body: "<p>Le ministre chargé de l'environnement.</p>",
			},
		},
		Headers: []legisnapshot.HeaderData{
			{ID: TextesDeBaseID, Title: "Textes de base", Level: 1, ContainerID: ConventionID},
			{ID: TextesAttachesID, Title: "Textes attachés", Level: 1, ContainerID: ConventionID},
		},
		Texts: []legisnapshot.TextData{
			{
				ID: CodeTravailID, Scope: CodeTravailID, Title: "Code du travail", FullTitle: "Code du travail",
				Nature: "CODE", State: inForce, ValidityStart: d20080501, ValidityEnd: open,
			},
			{
				ID: CodeEnvironnementID, Scope: CodeEnvironnementID, Title: "Code de l'environnement",
				FullTitle: "Code de l'environnement", Nature: "CODE", State: inForce,
				ValidityStart: d20150614, ValidityEnd: open,
			},
			{
				ID: ConventionID, Title: "Convention collective nationale des bureaux d'études techniques",
				Nature: "IDCC", State: inForce, Number: "1486",
			},
			{
				ID: ImmobilierID, Title: "Convention collective nationale de l'immobilier",
				Nature: "IDCC", State: legisnapshot.StateExtended, Number: "1527",
				PublicationDate: legisnapshot.MustParseDate("1988-08-31"),
			},
			{
				ID: DenouncedID, Title: "Convention collective nationale des industries du jouet",
				Nature: "IDCC", State: legisnapshot.StateRepealed, Number: "1607",
				PublicationDate: legisnapshot.MustParseDate("1992-04-10"),
			},
			{
				ID: ConventionTextID, Scope: ConventionTextID,
				Title: "Convention collective nationale du 15 décembre 1987", Nature: "IDCC", State: inForce,
				ValidityStart: legisnapshot.MustParseDate("1988-01-01"), ValidityEnd: open,
				PublicationDate: legisnapshot.MustParseDate("1988-02-10"),
			},
			{
				ID: AvenantTextID, Scope: AvenantTextID, Title: "Avenant n° 46 du 5 juillet 2012",
				Nature: "IDCC", State: inForce,
				ValidityStart: legisnapshot.MustParseDate("2012-07-05"), ValidityEnd: open,
			},
		},
	}
}
