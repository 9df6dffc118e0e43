package legisnapshot

import (
	"sort"
)

// ResolvedRow is an adjacency row joined with the content of its element.
type ResolvedRow struct {
	Record  AdjacencyRecord
	Element TypedElement
}

// JoinResolved pairs each row with its resolved element. Rows whose element is absent from elements
// get a stub.
func JoinResolved(rows []AdjacencyRecord, elements map[string]TypedElement) []ResolvedRow {
	joined := make([]ResolvedRow, 0, len(rows))
	for _, row := range rows {
		element, ok := elements[row.Element]
		if !ok {
			element = NewStubElement(row.Element)
		}
		joined = append(joined, ResolvedRow{Record: row, Element: element})
	}

	return joined
}

// AssembleTree nests rows under rootParent, ordering siblings by numeric position.
// Equal positions keep their input order. Articles are leaves; other kinds always get a non-nil children slice.
// An element already present on the current ancestry path is emitted as a node but not expanded again.
func AssembleTree(rows []ResolvedRow, rootParent string) []TreeNode {
	return assembleTree(rows, rootParent, nil)
}

// assembleTree is AssembleTree, calling skipped for every element left unexpanded because it is
// already on the current path.
func assembleTree(rows []ResolvedRow, rootParent string, skipped func(element, parent string)) []TreeNode {
	byParent := make(map[string][]ResolvedRow)
	for _, row := range rows {
		byParent[row.Record.Parent] = append(byParent[row.Record.Parent], row)
	}

	for parent := range byParent {
		siblings := byParent[parent]
		sort.SliceStable(siblings, func(i, j int) bool {
			return siblings[i].Record.Position < siblings[j].Record.Position
		})
	}

	onPath := make(map[string]bool)
	if rootParent != RootParent {
		onPath[rootParent] = true
	}

	return assembleChildren(byParent, rootParent, onPath, skipped)
}

func assembleChildren(
	byParent map[string][]ResolvedRow,
	parent string,
	onPath map[string]bool,
	skipped func(element, parent string),
) []TreeNode {
	siblings := byParent[parent]
	nodes := make([]TreeNode, 0, len(siblings))

	for _, row := range siblings {
		kind := ClassifyElementID(row.Record.Element)
		node := TreeNode{Kind: kind, Data: row.Element}

		if kind.CanHaveChildren() {
			if onPath[row.Record.Element] {
				node.Children = []TreeNode{}
				if skipped != nil {
					skipped(row.Record.Element, parent)
				}
			} else {
				onPath[row.Record.Element] = true
				node.Children = assembleChildren(byParent, row.Record.Element, onPath, skipped)
				delete(onPath, row.Record.Element)
			}
		}

		nodes = append(nodes, node)
	}

	return nodes
}

// NewRootNode wraps the requested element and its assembled children into the root of a snapshot.
func NewRootNode(root TypedElement, children []TreeNode) TreeNode {
	kind := ClassifyElementID(root.ID)
	node := TreeNode{Kind: kind, Data: root}

	if kind.CanHaveChildren() {
		if children == nil {
			children = []TreeNode{}
		}
		node.Children = children
	}

	return node
}
