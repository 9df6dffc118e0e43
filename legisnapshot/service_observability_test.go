package legisnapshot_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
	"github.com/legilibre/legi-snapshot-go/testutil/fakestore"
	"github.com/legilibre/legi-snapshot-go/testutil/fixture"
	. "github.com/legilibre/legi-snapshot-go/testutil/helper" //nolint:revive
)

func Test_Observability_Service_WithLogger_LogsCompletionAndDanglingReferences(t *testing.T) {
	// setup
	testHandler := NewLogHandlerSpy(false)
	service := givenService(t, fakestore.NewScenario(), legisnapshot.WithLogger(slog.New(testHandler)))

	// act
	_, err := service.GetFull(context.Background(), fixture.NegociationSectionID, legisnapshot.MustParseDate("2017-01-01"))

	// assert
	require.NoError(t, err)
	assert.True(t,
		testHandler.HasInfoLogWithMessage("legisnapshot operation: full").
			WithDurationMS().
			WithNodeCount().
			WithAttrValue("root_id", fixture.NegociationSectionID).
			WithAttr("request_id").
			Assert(), "should log completion with duration, node count, root id and request id",
	)
	assert.True(t,
		testHandler.HasWarnLogWithMessage("dangling reference: element missing from its type table").
			WithAttrValue("element_id", fixture.DanglingArticleID).
			WithAttrValue("kind", "article").
			Assert(), "should warn about the dangling article",
	)
	assert.Equal(t, 1, testHandler.CountLogs(slog.LevelWarn, "dangling reference: element missing from its type table"))
	assert.True(t, testHandler.HasDebugLog("duplicate adjacency row dropped"))
	assert.True(t, testHandler.HasDebugLogWithMessage("typed elements fetched").WithDurationMS().Assert())
}

func Test_Observability_Service_WithLogger_NotFoundIsNotAnErrorLog(t *testing.T) {
	// setup
	testHandler := NewLogHandlerSpy(false)
	service := givenService(t, fakestore.NewScenario(), legisnapshot.WithLogger(slog.New(testHandler)))

	// act
	_, err := service.GetStructure(context.Background(), fixture.UnknownElementID, legisnapshot.MustParseDate("2017-01-01"))

	// assert
	assert.ErrorIs(t, err, legisnapshot.ErrNotFound)
	assert.True(t, testHandler.HasInfoLogWithMessage("legisnapshot operation failed: structure").Assert())
	assert.False(t, testHandler.HasErrorLog("legisnapshot operation failed: structure"))
}

func Test_Observability_Service_WithLogger_StoreFailureIsAnErrorLog(t *testing.T) {
	// setup
	testHandler := NewLogHandlerSpy(false)
	store := fakestore.NewScenario()
	store.FailOn(fakestore.MethodFetchArticles, nil)
	service := givenService(t, store, legisnapshot.WithLogger(slog.New(testHandler)))

	// act
	_, err := service.GetFull(context.Background(), fixture.NegociationSectionID, legisnapshot.MustParseDate("2017-01-01"))

	// assert
	assert.ErrorIs(t, err, legisnapshot.ErrStoreFailed)
	assert.True(t,
		testHandler.HasErrorLogWithMessage("legisnapshot operation failed: full").
			WithAttr("error").
			WithDurationMS().
			Assert(),
	)
}

func Test_Observability_Service_WithContextualLogger_IsPreferred(t *testing.T) {
	// setup
	plainHandler := NewLogHandlerSpy(false)
	contextualHandler := NewLogHandlerSpy(false)
	service := givenService(t, fakestore.NewScenario(),
		legisnapshot.WithLogger(slog.New(plainHandler)),
		legisnapshot.WithContextualLogger(slog.New(contextualHandler)),
	)

	// act
	_, err := service.GetValidityDates(context.Background(), fixture.ArticleR2151_1ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, plainHandler.GetRecordCount())
	assert.True(t,
		contextualHandler.HasInfoLogWithMessage("legisnapshot operation: validity_dates").
			WithAttrValue("date_count", "3").
			Assert(),
	)
}

func Test_Observability_Service_WithMetrics(t *testing.T) {
	// setup
	metrics := NewMetricsCollectorSpy(true)
	service := givenService(t, fakestore.NewScenario(), legisnapshot.WithMetrics(metrics))

	// act
	tree, err := service.GetFull(context.Background(), fixture.NegociationSectionID, legisnapshot.MustParseDate("2017-01-01"))
	_, errNotFound := service.GetFull(context.Background(), fixture.UnknownElementID, legisnapshot.MustParseDate("2017-01-01"))

	// assert
	require.NoError(t, err)
	assert.ErrorIs(t, errNotFound, legisnapshot.ErrNotFound)

	assert.True(t, metrics.HasDurationRecordWithLabels(legisnapshot.MetricRequestDuration, map[string]string{
		"operation": legisnapshot.OperationFull,
		"status":    legisnapshot.StatusSuccess,
	}))
	assert.True(t, metrics.HasValueRecord(legisnapshot.MetricNodesAssembled, float64(tree.Count()), map[string]string{
		"operation": legisnapshot.OperationFull,
	}))
	assert.Equal(t, 1, metrics.CountCounterRecords(legisnapshot.MetricDanglingReferences, map[string]string{
		"kind": "article",
	}))
	assert.True(t, metrics.HasDurationRecordWithLabels(legisnapshot.MetricBatchDuration, map[string]string{
		"kind": "section",
	}))
	assert.True(t, metrics.HasCounterRecordWithLabels(legisnapshot.MetricRequestErrors, map[string]string{
		"operation":  legisnapshot.OperationFull,
		"error_type": legisnapshot.ErrorTypeNotFound,
	}))
	assert.Positive(t, metrics.GetContextualCallCount(), "context-aware methods are used when available")
}

func Test_Observability_Service_WithTracing(t *testing.T) {
	// setup
	tracing := NewTracingCollectorSpy(true)
	service := givenService(t, fakestore.NewScenario(), legisnapshot.WithTracing(tracing))

	// act
	_, err := service.GetStructure(context.Background(), fixture.CodeTravailID, legisnapshot.MustParseDate("2017-01-01"))
	_, errArticle := service.GetArticle(context.Background(), fixture.DanglingArticleID)

	// assert
	require.NoError(t, err)
	assert.ErrorIs(t, errArticle, legisnapshot.ErrNotFound)
	require.Equal(t, 2, tracing.GetSpanRecordCount())

	structure, found := tracing.FindSpan(legisnapshot.SpanNameStructure)
	require.True(t, found)
	assert.True(t, structure.Finished)
	assert.Equal(t, legisnapshot.StatusSuccess, structure.Status)
	assert.Equal(t, fixture.CodeTravailID, structure.StartAttributes["root_id"])
	assert.Equal(t, "2017-01-01", structure.StartAttributes["reference_date"])
	assert.NotEmpty(t, structure.StartAttributes["request_id"])
	assert.Equal(t, "3", structure.SpanContext.GetAttributes()["node_count"])

	article, found := tracing.FindSpan(legisnapshot.SpanNameArticle)
	require.True(t, found)
	assert.Equal(t, legisnapshot.StatusError, article.Status)
	assert.Equal(t, legisnapshot.ErrorTypeNotFound, article.EndAttributes["error_type"])
}

func Test_Observability_ClosureResolver_WithLogger_LogsDroppedDuplicates(t *testing.T) {
	// setup
	testHandler := NewLogHandlerSpy(false)
	resolver, err := legisnapshot.NewClosureResolver(fakestore.NewScenario(), legisnapshot.WithLogger(slog.New(testHandler)))
	require.NoError(t, err)

	// act
	_, err = resolver.Resolve(context.Background(), legisnapshot.ClosureRequest{
		Scope: fixture.CodeTravailID,
		Date:  legisnapshot.MustParseDate("2017-01-01"),
		Start: fixture.NegociationSectionID,
	})

	// assert
	require.NoError(t, err)
	assert.True(t, testHandler.HasDebugLog("duplicate adjacency row dropped"))
}

func Test_Observability_ElementResolver_WithMetrics_CountsDanglingReferences(t *testing.T) {
	// setup
	testHandler := NewLogHandlerSpy(false)
	metrics := NewMetricsCollectorSpy(true)
	resolver, err := legisnapshot.NewElementResolver(fakestore.NewScenario(),
		legisnapshot.WithLogger(slog.New(testHandler)),
		legisnapshot.WithMetrics(metrics),
	)
	require.NoError(t, err)

	// act
	_, err = resolver.ResolveBatch(context.Background(), []string{fixture.DanglingArticleID}, legisnapshot.ContentHeadlines)

	// assert
	require.NoError(t, err)
	assert.True(t, testHandler.HasWarnLog("dangling reference: element missing from its type table"))
	assert.True(t, metrics.HasCounterRecordWithLabels(legisnapshot.MetricDanglingReferences, map[string]string{
		"kind": "article",
	}))
}

func Test_Observability_Resolvers_RejectInvalidOptions(t *testing.T) {
	_, errClosure := legisnapshot.NewClosureResolver(fakestore.NewScenario(), legisnapshot.WithStructureDepth(-1))
	_, errElements := legisnapshot.NewElementResolver(fakestore.NewScenario(), legisnapshot.WithClock(nil))

	assert.ErrorIs(t, errClosure, legisnapshot.ErrInvalidStructureDepth)
	assert.Error(t, errElements)
}

func Test_Observability_Service_WithLogger_LogsElementsNotExpandedAgain(t *testing.T) {
	// setup
	const subsectionID = "LEGISCTA000030730059"
	testHandler := NewLogHandlerSpy(false)
	store := fakestore.NewScenario()
	service := givenService(t, store, legisnapshot.WithLogger(slog.New(testHandler)))
	since := legisnapshot.MustParseDate("2015-06-14")

	// arrange
	store.AddAdjacency(
		legisnapshot.AdjacencyRecord{
			Scope: fixture.CodeEnvironnementID, Parent: fixture.DispositionsID, Element: subsectionID, Position: 3,
			State: legisnapshot.StateInForce, ValidityStart: since, ValidityEnd: legisnapshot.OpenEnded,
		},
		legisnapshot.AdjacencyRecord{
			Scope: fixture.CodeEnvironnementID, Parent: subsectionID, Element: fixture.DispositionsID, Position: 1,
			State: legisnapshot.StateInForce, ValidityStart: since, ValidityEnd: legisnapshot.OpenEnded,
		},
	)

	// act
	tree, err := service.GetFull(context.Background(), fixture.CodeEnvironnementID, legisnapshot.MustParseDate("2016-01-01"))

	// assert
	require.NoError(t, err)
	repeated := tree.Find(fixture.DispositionsID)
	require.Len(t, repeated, 2)
	assert.Empty(t, repeated[1].Children)
	assert.True(t,
		testHandler.HasDebugLogWithMessage("element already on the current path, not expanded again").
			WithAttrValue("element_id", fixture.DispositionsID).
			WithAttrValue("parent_id", subsectionID).
			Assert(),
	)
}
