package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Explain renders the plan as an EXPLAIN-style table: one row per operator
// with its estimated output cardinality, page count and cumulative cost.
func Explain(w io.Writer, root *Node) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Operator", "Est. Rows", "Est. Pages", "Est. Cost"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	appendExplainRows(table, root, 0)
	table.Render()
}

func appendExplainRows(table *tablewriter.Table, node *Node, depth int) {
	if node == nil {
		return
	}

	var rows, pages int64
	if node.Stats != nil {
		rows = node.Stats.TupleCount
		pages = node.Stats.PageCount
	}

	table.Append([]string{
		strings.Repeat("  ", depth) + node.Label(),
		fmt.Sprintf("%d", rows),
		fmt.Sprintf("%d", pages),
		fmt.Sprintf("%.1f", node.Cost),
	})

	for _, child := range node.Children() {
		appendExplainRows(table, child, depth+1)
	}
}
