package plan

import (
	"fmt"

	"github.com/leengari/mini-optimizer/internal/stats"
)

// Kind tags the operator variants of a plan node. The set is closed:
// cost estimation and statistics derivation dispatch exhaustively on it,
// so adding a join kind is a localized, compiler-checked change.
type Kind int

const (
	KindSeqScan Kind = iota
	KindIndexScan
	KindSelect
	KindProject
	KindSort
	KindBlockNestedLoopJoin
	KindIndexNestedLoopJoin
	KindSortMergeJoin
	KindCrossProduct
)

func (k Kind) String() string {
	switch k {
	case KindSeqScan:
		return "SEQ_SCAN"
	case KindIndexScan:
		return "INDEX_SCAN"
	case KindSelect:
		return "SELECT"
	case KindProject:
		return "PROJECT"
	case KindSort:
		return "SORT"
	case KindBlockNestedLoopJoin:
		return "BLOCK_NL_JOIN"
	case KindIndexNestedLoopJoin:
		return "INDEX_NL_JOIN"
	case KindSortMergeJoin:
		return "SORT_MERGE_JOIN"
	case KindCrossProduct:
		return "CROSS_PRODUCT"
	}
	return "UNKNOWN"
}

// IsJoin reports whether the kind is one of the binary join variants
func (k Kind) IsJoin() bool {
	switch k {
	case KindBlockNestedLoopJoin, KindIndexNestedLoopJoin, KindSortMergeJoin, KindCrossProduct:
		return true
	}
	return false
}

// Predicate is a single-column comparison parameter of a select node
type Predicate struct {
	Column string
	Op     stats.Op
	Value  interface{}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %v", p.Column, p.Op, p.Value)
}

// Node is one operator of the physical plan: a tagged variant holding 0-2
// children, kind-specific parameters, and the cached output statistics and
// estimated I/O cost computed at construction. Nodes are immutable once
// built; subtrees are shared by reference between memoized plans.
type Node struct {
	Kind Kind

	// Base-scan parameters (leaves only)
	Table string
	Alias string

	// Select parameters
	Pred *Predicate

	// Join parameters: alias-qualified key columns
	LeftKey  string
	RightKey string

	// Sort / project parameters
	SortKey string
	Cols    []string

	Left  *Node
	Right *Node

	// Stats is the estimated output of this operator; Cost the cumulative
	// estimated I/O (page reads) of producing it
	Stats *stats.Table
	Cost  float64
}

// Children returns the child nodes for tree walking
func (n *Node) Children() []*Node {
	switch {
	case n.Left != nil && n.Right != nil:
		return []*Node{n.Left, n.Right}
	case n.Left != nil:
		return []*Node{n.Left}
	}
	return nil
}

// NodeType returns the kind identifier (for debugging/logging)
func (n *Node) NodeType() string {
	return n.Kind.String()
}

// Label returns a one-line description of the node with its parameters
func (n *Node) Label() string {
	switch n.Kind {
	case KindSeqScan, KindIndexScan:
		if n.Alias != "" && n.Alias != n.Table {
			return fmt.Sprintf("%s %s AS %s", n.NodeType(), n.Table, n.Alias)
		}
		return fmt.Sprintf("%s %s", n.NodeType(), n.Table)
	case KindSelect:
		return fmt.Sprintf("%s %s", n.NodeType(), n.Pred)
	case KindSort:
		return fmt.Sprintf("%s BY %s", n.NodeType(), n.SortKey)
	case KindProject:
		return fmt.Sprintf("%s %v", n.NodeType(), n.Cols)
	case KindCrossProduct:
		return n.NodeType()
	}
	if n.Kind.IsJoin() {
		return fmt.Sprintf("%s ON %s = %s", n.NodeType(), n.LeftKey, n.RightKey)
	}
	return n.NodeType()
}
