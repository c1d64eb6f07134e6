package model

// Table is an export-ready tabular result: display column captions and
// string cell values, handed to the export layer as-is.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}
