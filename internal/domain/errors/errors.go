package errors

import (
	"fmt"
	"strings"
)

// SchemaError reports a query declaration that does not match the catalog:
// an unknown table or alias, an unknown column, or a predicate value whose
// type does not match the column type. It is raised at plan-construction
// time, before any cost estimation runs.
type SchemaError struct {
	Table  string      // table or alias name (may be empty)
	Column string      // column name (empty if table-level)
	Value  interface{} // offending value (may be nil)
	Kind   string      // "unknown_table", "unknown_column", "type_mismatch", "duplicate_alias"
	Reason string      // human-readable explanation (optional)
}

func (e *SchemaError) Error() string {
	var parts []string

	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("schema error on %s.%s", e.Table, e.Column))
	} else {
		parts = append(parts, fmt.Sprintf("schema error on %s", e.Table))
	}

	if e.Kind != "" {
		parts = append(parts, fmt.Sprintf("(%s)", e.Kind))
	}

	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

func NewUnknownTable(name string) *SchemaError {
	return &SchemaError{
		Table:  name,
		Kind:   "unknown_table",
		Reason: "table is not declared in the catalog",
	}
}

func NewUnknownColumn(table, column string) *SchemaError {
	return &SchemaError{
		Table:  table,
		Column: column,
		Kind:   "unknown_column",
		Reason: "column does not exist on this relation",
	}
}

func NewTypeMismatch(table, column string, value interface{}, expectedType string) *SchemaError {
	return &SchemaError{
		Table:  table,
		Column: column,
		Value:  value,
		Kind:   "type_mismatch",
		Reason: fmt.Sprintf("expected type %s", expectedType),
	}
}

func NewDuplicateAlias(alias string) *SchemaError {
	return &SchemaError{
		Table:  alias,
		Kind:   "duplicate_alias",
		Reason: "alias already bound to a relation",
	}
}

// OptimizerInternalError reports a broken invariant inside the join-order
// search: some relation subset ended up without a computed best plan. This
// is a logic fault, not a recoverable input problem.
type OptimizerInternalError struct {
	Reason string
}

func (e *OptimizerInternalError) Error() string {
	return fmt.Sprintf("optimizer internal error: %s", e.Reason)
}

func NewOptimizerInternal(format string, args ...interface{}) *OptimizerInternalError {
	return &OptimizerInternalError{Reason: fmt.Sprintf(format, args...)}
}
