package sqlengine_test

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
	"github.com/legilibre/legi-snapshot-go/legisnapshot/sqlengine"
	"github.com/legilibre/legi-snapshot-go/testutil/dbfixture"
	"github.com/legilibre/legi-snapshot-go/testutil/fixture"
)

func sortedElements(rows []legisnapshot.AdjacencyRecord) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Element)
	}
	slices.Sort(ids)

	return ids
}

func sortedIDs(ids ...string) []string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	return sorted
}

func Test_Roots_NormalizesTheRootSentinel(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)

	// act
	rows, err := store.Roots(context.Background(), fixture.CodeTravailID, legisnapshot.MustParseDate("2017-01-01"))

	// assert
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, legisnapshot.RootParent, r.Parent)
		assert.Equal(t, fixture.CodeTravailID, r.Scope)
		assert.Equal(t, legisnapshot.StateInForce, r.State)
		assert.Equal(t, legisnapshot.OpenEnded, r.ValidityEnd)
	}
	assert.Equal(t, sortedIDs(fixture.PartieLegislativeID, fixture.PartieReglementaireID), sortedElements(rows))
}

func Test_Roots_EmptyStringParentIsARootToo(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	require.NoError(t, wrapper.Exec(context.Background(),
		`INSERT INTO sommaires (cid, parent, element, debut, fin, etat, position)
		 VALUES ('LEGITEXT000006072050', '', 'LEGISCTA000006132323', '2008-05-01', '2999-01-01', 'VIGUEUR', 3)`))
	store := wrapper.NewStore(t)

	// act
	rows, err := store.Roots(context.Background(), fixture.CodeTravailID, legisnapshot.MustParseDate("2017-01-01"))

	// assert
	require.NoError(t, err)
	assert.Equal(t,
		sortedIDs(fixture.PartieLegislativeID, fixture.PartieReglementaireID, "LEGISCTA000006132323"),
		sortedElements(rows),
	)
}

func Test_Children_PushesTheValidityPredicateDown(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)
	parents := []string{fixture.NegociationSectionID}

	// act
	rows2017, err2017 := store.Children(context.Background(), fixture.CodeTravailID, parents, legisnapshot.MustParseDate("2017-01-01"))
	rows2010, err2010 := store.Children(context.Background(), fixture.CodeTravailID, parents, legisnapshot.MustParseDate("2010-01-01"))

	// assert
	require.NoError(t, err2017)
	require.NoError(t, err2010)
	assert.Equal(t, sortedIDs(
		fixture.ArticleL2232_12ID,
		fixture.ArticleL2232_13NewID,
		fixture.ArticleL2232_13NewID,
		fixture.ArticleL2232_14ID,
		fixture.DanglingArticleID,
	), sortedElements(rows2017), "duplicates are left to the closure resolver")
	assert.Equal(t, sortedIDs(
		fixture.ArticleL2232_12ID,
		fixture.ArticleL2232_13OldID,
		fixture.ArticleL2232_14ID,
		fixture.DanglingArticleID,
	), sortedElements(rows2010))
}

func Test_Children_RowsAgreeWithTheInMemoryPredicate(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)
	data := fixture.Scenario()

	for day := legisnapshot.MustParseDate("2007-06-01").Time(); day.Year() < 2019; day = day.AddDate(0, 2, 0) {
		ref := legisnapshot.DateOf(day)

		for _, parent := range []string{fixture.NegociationSectionID, fixture.DispositionsID, fixture.TextesAttachesID} {
			var expected []legisnapshot.AdjacencyRecord
			var scope string
			for _, r := range data.Adjacency {
				if r.Parent == parent {
					scope = r.Scope
					if r.IsValidAt(ref) {
						expected = append(expected, r)
					}
				}
			}

			// act
			rows, err := store.Children(context.Background(), scope, []string{parent}, ref)

			// assert
			require.NoError(t, err)
			assert.Equal(t, sortedElements(expected), sortedElements(rows), "children of %s at %s", parent, ref)
		}
	}
}

func Test_Children_SplitsLargeParentLists(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t, sqlengine.WithBatchSize(1))

	// act
	rows, err := store.Children(
		context.Background(),
		fixture.ConventionID,
		[]string{fixture.TextesDeBaseID, fixture.TextesAttachesID, "KALITM1-9"},
		legisnapshot.MustParseDate("2017-01-01"),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, sortedIDs(fixture.ConventionTextID, fixture.AvenantTextID), sortedElements(rows))
}

func Test_Children_EmptyParentListRunsNoQuery(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)

	// act
	rows, err := store.Children(context.Background(), fixture.CodeTravailID, nil, legisnapshot.MustParseDate("2017-01-01"))

	// assert
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func Test_LocateRoot(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	require.NoError(t, wrapper.Exec(context.Background(),
		`INSERT INTO sommaires (cid, parent, element, position)
		 VALUES ('LEGITEXT000006074220', 'LEGISCTA000030730777', 'LEGIARTI000030730777', 1)`))
	store := wrapper.NewStore(t)

	testCases := []struct {
		name     string
		id       string
		expected legisnapshot.RootLocation
	}{
		{
			name:     "scope",
			id:       fixture.CodeTravailID,
			expected: legisnapshot.RootLocation{ID: fixture.CodeTravailID, Scope: fixture.CodeTravailID, IsScope: true},
		},
		{
			name:     "element",
			id:       fixture.NegociationSectionID,
			expected: legisnapshot.RootLocation{ID: fixture.NegociationSectionID, Scope: fixture.CodeTravailID},
		},
		{
			name:     "container header",
			id:       fixture.TextesDeBaseID,
			expected: legisnapshot.RootLocation{ID: fixture.TextesDeBaseID, Scope: fixture.ConventionID},
		},
		{
			name:     "parent only",
			id:       "LEGISCTA000030730777",
			expected: legisnapshot.RootLocation{ID: "LEGISCTA000030730777", Scope: fixture.CodeEnvironnementID},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			location, err := store.LocateRoot(context.Background(), tc.id)

			// assert
			require.NoError(t, err)
			assert.Equal(t, tc.expected, location)
		})
	}
}

func Test_LocateRoot_UnknownID(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)

	// act
	_, err := store.LocateRoot(context.Background(), fixture.UnknownElementID)

	// assert
	assert.ErrorIs(t, err, legisnapshot.ErrNotFound)
}

func Test_ValidityDates(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)

	// act
	dates, err := store.ValidityDates(context.Background(), fixture.CodeEnvironnementID)
	undated, errUndated := store.ValidityDates(context.Background(), fixture.ConventionID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []legisnapshot.Date{
		legisnapshot.MustParseDate("2015-06-14"),
		legisnapshot.MustParseDate("2016-10-23"),
		legisnapshot.OpenEnded,
	}, legisnapshot.SortedUniqueDates(dates))

	require.NoError(t, errUndated)
	assert.Equal(t, []legisnapshot.Date{legisnapshot.MustParseDate("2010-01-01")}, undated)
}

func Test_FetchArticles_ContentModes(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)
	ids := []string{fixture.ArticleL2232_13NewID, fixture.DanglingArticleID}

	// act
	headlines, errHeadlines := store.FetchArticles(context.Background(), ids, legisnapshot.ContentHeadlines)
	full, errFull := store.FetchArticles(context.Background(), ids, legisnapshot.ContentFull)

	// assert
	require.NoError(t, errHeadlines)
	require.NoError(t, errFull)
	require.Len(t, headlines, 1, "missing ids are simply absent")
	require.Len(t, full, 1)

	assert.Equal(t, "L2232-13", headlines[0].Number)
	assert.Equal(t, legisnapshot.StateInForce, headlines[0].State)
	assert.Equal(t, legisnapshot.MustParseDate("2016-08-10"), headlines[0].ValidityStart)
	assert.Equal(t, legisnapshot.OpenEnded, headlines[0].ValidityEnd)
	assert.Empty(t, headlines[0].Body)
	assert.Empty(t, headlines[0].Note)

	assert.Equal(t, "<br/><p>Nouvelle rédaction.&#13;</p><p></p>", full[0].Body, "the store returns raw markup")
	assert.Equal(t, "Conformément à l'article 21 de la loi n° 2016-1088.&#13;", full[0].Note)
}

func Test_FetchArticles_SplitsLargeIDLists(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t, sqlengine.WithBatchSize(2))

	// act
	articles, err := store.FetchArticles(context.Background(), []string{
		fixture.ArticleL2232_12ID,
		fixture.ArticleL2232_13OldID,
		fixture.ArticleL2232_13NewID,
		fixture.ArticleL2232_14ID,
		fixture.ArticleR2151_1ID,
	}, legisnapshot.ContentHeadlines)

	// assert
	require.NoError(t, err)
	assert.Len(t, articles, 5)
}

func Test_FetchSectionsAndHeaders(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)

	// act
	sections, errSections := store.FetchSections(context.Background(), []string{fixture.DispositionsID})
	headers, errHeaders := store.FetchHeaders(context.Background(), []string{fixture.TextesDeBaseID, fixture.TextesAttachesID})
	none, errNone := store.FetchSections(context.Background(), nil)

	// assert
	require.NoError(t, errSections)
	require.NoError(t, errHeaders)
	require.NoError(t, errNone)

	assert.Equal(t, []legisnapshot.SectionData{
		{ID: fixture.DispositionsID, Title: "Section 1 : Dispositions générales"},
	}, sections)

	require.Len(t, headers, 2)
	for _, h := range headers {
		assert.Equal(t, 1, h.Level)
		assert.Equal(t, fixture.ConventionID, h.ContainerID)
	}

	assert.Empty(t, none)
}

func Test_FetchTexts_VersionsAndContainers(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)

	// act
	texts, err := store.FetchTexts(context.Background(), []string{
		fixture.CodeTravailID,
		fixture.ConventionID,
		fixture.WithdrawnAvenantID,
	})

	// assert
	require.NoError(t, err)
	require.Len(t, texts, 2)

	byID := map[string]legisnapshot.TextData{}
	for _, text := range texts {
		byID[text.ID] = text
	}

	assert.Equal(t, "Code du travail", byID[fixture.CodeTravailID].Title)
	assert.Equal(t, "CODE", byID[fixture.CodeTravailID].Nature)
	assert.Equal(t, legisnapshot.MustParseDate("2008-05-01"), byID[fixture.CodeTravailID].ValidityStart)

	assert.Equal(t, "1486", byID[fixture.ConventionID].Number)
	assert.Equal(t, "IDCC", byID[fixture.ConventionID].Nature)
	assert.Empty(t, byID[fixture.ConventionID].Scope)
}

func Test_FetchTexts_MatchesByScopeAndPrefersTheLatestPublication(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	require.NoError(t, wrapper.Exec(context.Background(),
		`INSERT INTO textes_versions (id, cid, nature, titre, date_publi)
		 VALUES ('LEGITEXT000006072051', 'LEGITEXT000006072099', 'CODE', 'Code du travail (2)', '2012-01-01'),
		        ('LEGITEXT000006072052', 'LEGITEXT000006072099', 'CODE', 'Code du travail (1)', '2009-01-01')`))
	store := wrapper.NewStore(t)

	// act
	texts, err := store.FetchTexts(context.Background(), []string{"LEGITEXT000006072099"})

	// assert
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Equal(t, "LEGITEXT000006072099", texts[0].ID)
	assert.Equal(t, "Code du travail (2)", texts[0].Title)
}

func Test_ListTexts(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)

	// act
	codes, err := store.ListTexts(context.Background(), "CODE")
	agreements, errAgreements := store.ListTexts(context.Background(), "IDCC")

	// assert
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "Code de l'environnement", codes[0].Title)
	assert.Equal(t, "Code du travail", codes[1].Title)

	require.NoError(t, errAgreements)
	assert.Len(t, agreements, 2, "containers are not listed with text versions")
}

func Test_ListContainers(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)

	// act
	inForce, err := store.ListContainers(context.Background(), "IDCC", legisnapshot.DefaultContainerStates)
	repealed, errRepealed := store.ListContainers(context.Background(), "", []legisnapshot.LifecycleState{
		legisnapshot.StateRepealed,
		legisnapshot.StateExtended,
	})
	none, errNone := store.ListContainers(context.Background(), "IDCC", nil)
	otherNature, errOtherNature := store.ListContainers(context.Background(), "CODE", legisnapshot.DefaultContainerStates)

	// assert
	require.NoError(t, err)
	require.Len(t, inForce, 2)
	assert.Equal(t, fixture.ImmobilierID, inForce[0].ID)
	assert.Equal(t, "1527", inForce[0].Number)
	assert.Equal(t, legisnapshot.StateExtended, inForce[0].State)
	assert.Equal(t, "1988-08-31", inForce[0].PublicationDate.String())
	assert.Equal(t, fixture.ConventionID, inForce[1].ID, "containers without publication date come last")
	assert.True(t, inForce[1].PublicationDate.IsZero())

	require.NoError(t, errRepealed)
	require.Len(t, repealed, 2)
	assert.Equal(t, fixture.DenouncedID, repealed[0].ID)
	assert.Equal(t, fixture.ImmobilierID, repealed[1].ID)

	require.NoError(t, errNone)
	assert.Empty(t, none)

	require.NoError(t, errOtherNature)
	assert.Empty(t, otherNature)
}

func Test_Parents(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	store := wrapper.NewStore(t)
	d2017 := legisnapshot.MustParseDate("2017-01-01")

	// act
	article, err := store.Parents(context.Background(), fixture.CodeTravailID, fixture.ArticleL2232_13NewID, d2017)
	section, errSection := store.Parents(context.Background(), fixture.CodeTravailID, fixture.PartieLegislativeID, d2017)
	detached, errDetached := store.Parents(context.Background(), fixture.CodeEnvironnementID, fixture.ArticleR2151_1ID, d2017)

	// assert
	require.NoError(t, err)
	require.Len(t, article, 2, "duplicate rows are returned as stored")
	for _, row := range article {
		assert.Equal(t, fixture.NegociationSectionID, row.Parent)
	}

	require.NoError(t, errSection)
	require.Len(t, section, 1)
	assert.Equal(t, legisnapshot.RootParent, section[0].Parent)

	require.NoError(t, errDetached)
	assert.Empty(t, detached)
}

func Test_CustomTableNames(t *testing.T) {
	// setup
	wrapper := dbfixture.CreateWrapperWithScenario(t)
	require.NoError(t, wrapper.Exec(context.Background(), `DROP TABLE IF EXISTS legi_sommaires`))
	require.NoError(t, wrapper.Exec(context.Background(), `CREATE TABLE legi_sommaires AS SELECT * FROM sommaires`))
	require.NoError(t, wrapper.Exec(context.Background(), `DELETE FROM sommaires`))
	tables := sqlengine.DefaultTableNames()
	tables.Adjacency = "legi_sommaires"
	store := wrapper.NewStore(t, sqlengine.WithTableNames(tables))

	// act
	rows, err := store.Roots(context.Background(), fixture.CodeTravailID, legisnapshot.MustParseDate("2017-01-01"))

	// assert
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
