package importer

import (
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaknet/monkeysync/internal/model"
)

// Parser converts an exported transaction file into RawTransactions.
type Parser interface {
	Parse(r io.Reader) ([]model.RawTransaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// ForFile picks a parser from the file extension.
func (r *Registry) ForFile(name string) Parser {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return r.Get(FormatStripeCSV)
	case ".json":
		return r.Get(FormatStripeJSON)
	}
	return nil
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&StripeCSVParser{})
	r.Register(&StripeJSONParser{})
	return r
}

// ParseFile opens path and parses it with the parser for its extension.
func (r *Registry) ParseFile(path string) ([]model.RawTransaction, error) {
	p := r.ForFile(path)
	if p == nil {
		return nil, fmt.Errorf("no parser for %s", filepath.Base(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	txns, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return txns, nil
}

// ImportDir is the subdirectory for exported files awaiting import.
const ImportDir = "imports"

// processedDir is the subdirectory for imported files.
const processedDir = "imports/processed"

// Scan returns importable files in <root>/imports/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, ImportDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".json":
		default:
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from imports/ to imports/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, ImportDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// Seq yields txns in order as a transaction source.
func Seq(txns []model.RawTransaction) iter.Seq2[model.RawTransaction, error] {
	return func(yield func(model.RawTransaction, error) bool) {
		for _, txn := range txns {
			if !yield(txn, nil) {
				return
			}
		}
	}
}
