package data

import (
	"encoding/json"
)

// Row represents a single table row
// Key = column name, Value = cell value
type Row struct {
	Data map[string]interface{}
}

// NewRow creates a new Row with the given data
func NewRow(data map[string]interface{}) Row {
	return Row{Data: data}
}

// Copy creates a deep copy of the row to prevent mutation
func (r Row) Copy() Row {
	copied := make(map[string]interface{}, len(r.Data))
	for k, v := range r.Data {
		copied[k] = v
	}
	return Row{Data: copied}
}

// Value returns the cell value for a column and whether it is present.
// A stored nil is reported as present (it counts as a NULL, not a miss).
func (r Row) Value(column string) (interface{}, bool) {
	v, ok := r.Data[column]
	return v, ok
}

// UnmarshalJSON implements json.Unmarshaler interface
// This allows Row to be unmarshaled from JSON as a map
func (r *Row) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	r.Data = m
	return nil
}

// MarshalJSON implements json.Marshaler interface
// This allows Row to be marshaled to JSON as a map
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Data)
}

// EncodedSize returns the JSON-encoded size of the row in bytes.
// The catalog uses it to estimate average row width.
func (r Row) EncodedSize() int {
	b, err := json.Marshal(r.Data)
	if err != nil {
		return 0
	}
	return len(b)
}
