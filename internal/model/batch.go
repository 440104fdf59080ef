package model

// Row is one output row keyed by field name. Values are strings or
// decimal.Decimal; absent keys render as empty cells.
type Row map[string]any

// Table is the rows of one category with their declared field order.
type Table struct {
	Fields []string
	Rows   []Row
}

// ImportBatch is the output of one run, partitioned by category.
type ImportBatch struct {
	Tag    string
	Tables map[Category]*Table
}

// NewImportBatch returns an empty batch with a table per category.
func NewImportBatch(tag string, fields map[Category][]string) *ImportBatch {
	b := &ImportBatch{Tag: tag, Tables: make(map[Category]*Table, len(Categories))}
	for _, c := range Categories {
		b.Tables[c] = &Table{Fields: fields[c]}
	}
	return b
}

// Append adds a row to the category's table.
func (b *ImportBatch) Append(c Category, row Row) {
	t, ok := b.Tables[c]
	if !ok {
		t = &Table{}
		b.Tables[c] = t
	}
	t.Rows = append(t.Rows, row)
}

// Rows returns the rows of a category.
func (b *ImportBatch) Rows(c Category) []Row {
	if t, ok := b.Tables[c]; ok {
		return t.Rows
	}
	return nil
}
