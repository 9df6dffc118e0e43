package legisnapshot

// TreeNode is one node of an assembled snapshot.
// Children is nil for articles and never nil for the other kinds.
type TreeNode struct {
	Kind     Kind
	Data     TypedElement
	Children []TreeNode
}

type containerNodeJSON struct {
	Kind     string       `json:"kind"`
	Data     TypedElement `json:"data"`
	Children []TreeNode   `json:"children"`
}

type leafNodeJSON struct {
	Kind string       `json:"kind"`
	Data TypedElement `json:"data"`
}

// MarshalJSON encodes {"kind", "data", "children"}; the children key is absent on leaf kinds.
func (n TreeNode) MarshalJSON() ([]byte, error) {
	if !n.Kind.CanHaveChildren() {
		return jsonAPI.Marshal(leafNodeJSON{Kind: n.Kind.String(), Data: n.Data})
	}

	children := n.Children
	if children == nil {
		children = []TreeNode{}
	}

	return jsonAPI.Marshal(containerNodeJSON{Kind: n.Kind.String(), Data: n.Data, Children: children})
}

// Count returns the number of nodes in the subtree rooted at n, n included.
func (n TreeNode) Count() int {
	count := 1
	for _, child := range n.Children {
		count += child.Count()
	}

	return count
}

// Walk calls visit for n and every descendant in depth-first pre-order.
// Returning false from visit stops the descent below that node.
func (n TreeNode) Walk(visit func(node TreeNode, depth int) bool) {
	n.walk(visit, 0)
}

func (n TreeNode) walk(visit func(node TreeNode, depth int) bool, depth int) {
	if !visit(n, depth) {
		return
	}

	for _, child := range n.Children {
		child.walk(visit, depth+1)
	}
}

// Find returns every node of the subtree whose element id is id.
func (n TreeNode) Find(id string) []TreeNode {
	var found []TreeNode
	n.Walk(func(node TreeNode, _ int) bool {
		if node.Data.ID == id {
			found = append(found, node)
		}
		return true
	})

	return found
}

// Articles returns every article node of the subtree in document order.
func (n TreeNode) Articles() []ArticleData {
	var articles []ArticleData
	n.Walk(func(node TreeNode, _ int) bool {
		if node.Kind == KindArticle && node.Data.Article != nil {
			articles = append(articles, *node.Data.Article)
		}
		return true
	})

	return articles
}
