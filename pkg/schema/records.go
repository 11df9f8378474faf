// Package schema defines the table and column metadata records the search
// engine indexes. Records are produced by an external metadata collaborator
// (snapshot loader, database introspection, etc) and are immutable once
// handed to the index builder.
package schema

// TableRecord describes one table of the target schema.
type TableRecord struct {
	Schema  string `json:"schema"`
	Name    string `json:"name"`
	Remarks string `json:"remarks,omitempty"`
}

// Key returns the session-unique identity of the table.
func (t TableRecord) Key() string {
	return t.Schema + "." + t.Name
}

// ColumnRecord describes one column of one table.
type ColumnRecord struct {
	Schema   string `json:"schema"`
	Table    string `json:"table"`
	Name     string `json:"name"`
	TypeName string `json:"typename"`
	Length   *int   `json:"length,omitempty"`
	Scale    *int   `json:"scale,omitempty"`
	Nullable bool   `json:"nullable"`
	Remarks  string `json:"remarks,omitempty"`
}

// Key returns the session-unique identity of the column.
func (c ColumnRecord) Key() string {
	return c.Schema + "." + c.Table + "." + c.Name
}
