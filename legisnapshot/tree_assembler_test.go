package legisnapshot_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
)

func resolvedRow(parent, element string, position int) legisnapshot.ResolvedRow {
	var data legisnapshot.TypedElement

	switch legisnapshot.ClassifyElementID(element) {
	case legisnapshot.KindArticle:
		data = legisnapshot.NewArticleElement(legisnapshot.ArticleData{ID: element, Number: element[len(element)-2:]})
	case legisnapshot.KindSection:
		data = legisnapshot.NewSectionElement(legisnapshot.SectionData{ID: element, Title: "Section " + element[len(element)-2:]})
	default:
		data = legisnapshot.NewStubElement(element)
	}

	return legisnapshot.ResolvedRow{
		Record:  legisnapshot.AdjacencyRecord{Parent: parent, Element: element, Position: position},
		Element: data,
	}
}

func idsOf(nodes []legisnapshot.TreeNode) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.Data.ID)
	}

	return ids
}

func Test_AssembleTree_OrdersSiblingsByNumericPosition(t *testing.T) {
	// arrange
	rows := []legisnapshot.ResolvedRow{
		resolvedRow("", "LEGISCTA000000000010", 10),
		resolvedRow("", "LEGISCTA000000000002", 2),
		resolvedRow("LEGISCTA000000000002", "LEGIARTI000000000003", 3),
		resolvedRow("LEGISCTA000000000002", "LEGIARTI000000000001", 1),
		resolvedRow("", "LEGISCTA000000000009", 9),
	}

	// act
	tree := legisnapshot.AssembleTree(rows, legisnapshot.RootParent)

	// assert
	assert.Equal(t, []string{"LEGISCTA000000000002", "LEGISCTA000000000009", "LEGISCTA000000000010"}, idsOf(tree))
	assert.Equal(t, []string{"LEGIARTI000000000001", "LEGIARTI000000000003"}, idsOf(tree[0].Children))
}

func Test_AssembleTree_EqualPositionsKeepDiscoveryOrder(t *testing.T) {
	// arrange
	rows := []legisnapshot.ResolvedRow{
		resolvedRow("", "LEGIARTI000000000020", 1),
		resolvedRow("", "LEGIARTI000000000010", 1),
		resolvedRow("", "LEGIARTI000000000030", 0),
	}

	// act
	tree := legisnapshot.AssembleTree(rows, legisnapshot.RootParent)

	// assert
	assert.Equal(t, []string{"LEGIARTI000000000030", "LEGIARTI000000000020", "LEGIARTI000000000010"}, idsOf(tree))
}

func Test_AssembleTree_LeafInvariant(t *testing.T) {
	// arrange
	rows := []legisnapshot.ResolvedRow{
		resolvedRow("", "LEGISCTA000000000001", 1),
		resolvedRow("LEGISCTA000000000001", "LEGIARTI000000000001", 1),
		resolvedRow("LEGISCTA000000000001", "LEGISCTA000000000002", 2),
	}

	// act
	tree := legisnapshot.AssembleTree(rows, legisnapshot.RootParent)

	// assert
	require.Len(t, tree, 1)
	tree[0].Walk(func(node legisnapshot.TreeNode, _ int) bool {
		if node.Kind == legisnapshot.KindArticle {
			assert.Nil(t, node.Children, "article %s must not carry children", node.Data.ID)
		} else {
			assert.NotNil(t, node.Children, "%s must carry a children collection", node.Data.ID)
		}
		return true
	})
}

func Test_AssembleTree_CycleIsNotExpandedTwice(t *testing.T) {
	// arrange
	rows := []legisnapshot.ResolvedRow{
		resolvedRow("", "LEGISCTA000000000001", 1),
		resolvedRow("LEGISCTA000000000001", "LEGISCTA000000000002", 1),
		resolvedRow("LEGISCTA000000000002", "LEGISCTA000000000001", 1),
	}

	// act
	tree := legisnapshot.AssembleTree(rows, legisnapshot.RootParent)

	// assert
	require.Len(t, tree, 1)
	assert.Equal(t, 3, legisnapshot.NewRootNode(legisnapshot.NewStubElement("LEGITEXT000000000001"), tree).Count()-1)
	inner := tree[0].Children[0].Children[0]
	assert.Equal(t, "LEGISCTA000000000001", inner.Data.ID)
	assert.Empty(t, inner.Children)
	assert.NotNil(t, inner.Children)
}

func Test_AssembleTree_UnknownParentIsIgnored(t *testing.T) {
	// arrange
	rows := []legisnapshot.ResolvedRow{
		resolvedRow("LEGISCTA000000000099", "LEGIARTI000000000001", 1),
	}

	// act
	tree := legisnapshot.AssembleTree(rows, legisnapshot.RootParent)

	// assert
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

func Test_TreeNode_JSONShape(t *testing.T) {
	// arrange
	children := legisnapshot.AssembleTree([]legisnapshot.ResolvedRow{
		resolvedRow("LEGISCTA000030730058", "LEGIARTI000030730068", 1),
		resolvedRow("LEGISCTA000030730058", "LEGISCTA000030730099", 2),
		resolvedRow("LEGISCTA000030730058", "LEGIARTI000099999999", 3),
	}, "LEGISCTA000030730058")
	children[2].Data = legisnapshot.NewStubElement("LEGIARTI000099999999")
	root := legisnapshot.NewRootNode(
		legisnapshot.NewSectionElement(legisnapshot.SectionData{ID: "LEGISCTA000030730058", Title: "Section 1"}),
		children,
	)

	// act
	encoded, err := json.Marshal(root)

	// assert
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "section",
		"data": {"id": "LEGISCTA000030730058", "titre": "Section 1"},
		"children": [
			{
				"kind": "article",
				"data": {"id": "LEGIARTI000030730068", "num": "68", "titre": "", "date_debut": null, "date_fin": null}
			},
			{
				"kind": "section",
				"data": {"id": "LEGISCTA000030730099", "titre": "Section 99"},
				"children": []
			},
			{
				"kind": "article",
				"data": {"id": "LEGIARTI000099999999"}
			}
		]
	}`, string(encoded))
}

func Test_TreeNode_FindAndArticles(t *testing.T) {
	// arrange
	children := legisnapshot.AssembleTree([]legisnapshot.ResolvedRow{
		resolvedRow("", "LEGISCTA000000000001", 1),
		resolvedRow("LEGISCTA000000000001", "LEGIARTI000000000012", 2),
		resolvedRow("LEGISCTA000000000001", "LEGIARTI000000000011", 1),
	}, legisnapshot.RootParent)
	root := legisnapshot.NewRootNode(legisnapshot.NewStubElement("LEGITEXT000000000001"), children)

	// act
	found := root.Find("LEGIARTI000000000012")
	articles := root.Articles()

	// assert
	assert.Len(t, found, 1)
	require.Len(t, articles, 2)
	assert.Equal(t, "11", articles[0].Number)
	assert.Equal(t, "12", articles[1].Number)
	assert.Equal(t, 4, root.Count())
}
