// Package records provides the tabular data model consumed and produced by
// the reconciliation pipeline. A Record is one immutable row with named
// columns; a Schema maps the report's source column names onto the semantic
// fields the pipeline understands.
package records

// Record is one immutable tabular row. Column order is preserved so that
// exported output keeps the source report's layout.
type Record struct {
	columns []string
	values  map[string]string
}

// New creates a Record from an ordered column list and a value map.
// Columns missing from values read as empty strings.
func New(columns []string, values map[string]string) Record {
	cols := make([]string, len(columns))
	copy(cols, columns)

	vals := make(map[string]string, len(values))
	for _, c := range cols {
		vals[c] = values[c]
	}
	return Record{columns: cols, values: vals}
}

// Columns returns the ordered column names.
func (r Record) Columns() []string {
	cols := make([]string, len(r.columns))
	copy(cols, r.columns)
	return cols
}

// Get returns the value of the named column, or "" if absent.
func (r Record) Get(column string) string {
	return r.values[column]
}

// Has reports whether the record carries the named column.
func (r Record) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// With returns a copy of the record with the column set to value.
// A column the record does not yet carry is appended.
func (r Record) With(column, value string) Record {
	cols := r.columns
	if !r.Has(column) {
		cols = make([]string, 0, len(r.columns)+1)
		cols = append(cols, r.columns...)
		cols = append(cols, column)
	} else {
		cols = r.Columns()
	}

	vals := make(map[string]string, len(r.values)+1)
	for k, v := range r.values {
		vals[k] = v
	}
	vals[column] = value
	return Record{columns: cols, values: vals}
}

// Values returns a copy of the column/value map.
func (r Record) Values() map[string]string {
	vals := make(map[string]string, len(r.values))
	for k, v := range r.values {
		vals[k] = v
	}
	return vals
}
