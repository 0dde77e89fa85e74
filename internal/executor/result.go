package executor

// Result holds a fully materialized result set. Columns preserves the
// order the backend reported; Rows index cell values by column name.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// Len returns the number of rows.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}
