package plan

import (
	"fmt"

	"github.com/emicklei/dot"
)

// Dot renders the plan tree as a Graphviz digraph, one node per operator
// with its estimated cardinality and cost in the label.
func Dot(root *Node) string {
	g := dot.NewGraph(dot.Directed)
	seq := 0
	addDotNode(g, root, &seq)
	return g.String()
}

func addDotNode(g *dot.Graph, node *Node, seq *int) dot.Node {
	id := fmt.Sprintf("n%d", *seq)
	*seq++

	var rows int64
	if node.Stats != nil {
		rows = node.Stats.TupleCount
	}
	dn := g.Node(id)
	dn.Attr("label", fmt.Sprintf("%s\nrows=%d cost=%.1f", node.Label(), rows, node.Cost))
	dn.Attr("shape", "box")

	for _, child := range node.Children() {
		cn := addDotNode(g, child, seq)
		g.Edge(dn, cn)
	}
	return dn
}
