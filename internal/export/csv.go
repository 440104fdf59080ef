package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yaknet/monkeysync/internal/fieldspec"
	"github.com/yaknet/monkeysync/internal/id"
	"github.com/yaknet/monkeysync/internal/model"
)

// WriteTable writes a table as CSV, header first. The header is written
// even when the table has no rows.
func WriteTable(w io.Writer, t *model.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Fields); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	spec := fieldspec.FieldSpec{Fields: t.Fields}
	for i, row := range t.Rows {
		if err := cw.Write(spec.Render(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// File is one written category file.
type File struct {
	Category model.Category
	Path     string
	Rows     int
}

// WriteBatch writes one CSV per category into dir and returns the files
// in category order.
func WriteBatch(dir, prefix string, b *model.ImportBatch) ([]File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	files := make([]File, 0, len(model.Categories))
	for _, c := range model.Categories {
		t, ok := b.Tables[c]
		if !ok {
			continue
		}
		path := filepath.Join(dir, id.FileName(prefix, string(c), b.Tag))
		if err := writeFile(path, t); err != nil {
			return files, err
		}
		files = append(files, File{Category: c, Path: path, Rows: len(t.Rows)})
	}
	return files, nil
}

func writeFile(path string, t *model.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteTable(f, t); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
