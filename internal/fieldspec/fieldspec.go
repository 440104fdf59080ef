// Package fieldspec declares the shape of every output row.
package fieldspec

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/yaknet/monkeysync/internal/model"
)

// Columns written by row generators rather than by paths or constants.
const (
	FieldDate      = "Date"
	FieldAmount    = "Amount"
	FieldDonor     = "Donor"
	FieldCustomer  = "Customer"
	FieldItem      = "Item"
	FieldClass     = "Class"
	FieldMemo      = "Memo"
	FieldFirstName = "First Name"
	FieldLastName  = "Last Name"
	FieldImport    = "Import"
)

//go:embed fieldspecs.yaml
var defaultSpecs []byte

// computed lists the columns each category's generator writes.
var computed = map[model.Category][]string{
	model.CategoryTransfer:     {FieldAmount},
	model.CategoryDonation:     {FieldDonor},
	model.CategorySale:         {FieldCustomer, FieldItem, FieldClass, FieldMemo},
	model.CategoryRelationship: {FieldFirstName, FieldLastName},
	model.CategoryFee:          {FieldDate, FieldAmount},
}

// FieldSpec is the column order, path map and constants of one category.
type FieldSpec struct {
	Fields    []string          `yaml:"fields"`
	Paths     map[string]string `yaml:"paths,omitempty"`
	Constants map[string]string `yaml:"constants,omitempty"`
}

// Has reports whether field is declared.
func (s FieldSpec) Has(field string) bool {
	return slices.Contains(s.Fields, field)
}

// Render returns the row's values in field order. Absent fields are
// empty and decimals are fixed to two places.
func (s FieldSpec) Render(row model.Row) []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = FormatValue(row[f])
	}
	return out
}

// FormatValue renders a single cell.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return x.StringFixed(2)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Set holds one FieldSpec per category. It is not modified after loading.
type Set map[model.Category]FieldSpec

// Fields returns the field order of every category.
func (s Set) Fields() map[model.Category][]string {
	out := make(map[model.Category][]string, len(s))
	for c, spec := range s {
		out[c] = spec.Fields
	}
	return out
}

// Default returns the built-in specs.
func Default() Set {
	s, err := Parse(defaultSpecs)
	if err != nil {
		panic("fieldspec: invalid built-in specs: " + err.Error())
	}
	return s
}

// DefaultYAML returns the built-in specs as YAML.
func DefaultYAML() []byte {
	return slices.Clone(defaultSpecs)
}

// Load reads specs from path, or returns Default when path is empty.
func Load(path string) (Set, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading field specs: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates YAML specs.
func Parse(data []byte) (Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing field specs: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that every category is present, that paths and
// constants only name declared fields and never the same one, and that
// generator-written fields are declared.
func (s Set) Validate() error {
	for _, c := range model.Categories {
		spec, ok := s[c]
		if !ok {
			return fmt.Errorf("missing field spec for %s", c)
		}
		if len(spec.Fields) == 0 {
			return fmt.Errorf("%s: no fields declared", c)
		}
		seen := map[string]bool{}
		for _, f := range spec.Fields {
			if seen[f] {
				return fmt.Errorf("%s: field %q declared twice", c, f)
			}
			seen[f] = true
		}
		for f := range spec.Paths {
			if !seen[f] {
				return fmt.Errorf("%s: path for undeclared field %q", c, f)
			}
			if _, dup := spec.Constants[f]; dup {
				return fmt.Errorf("%s: field %q has both a path and a constant", c, f)
			}
		}
		for f := range spec.Constants {
			if !seen[f] {
				return fmt.Errorf("%s: constant for undeclared field %q", c, f)
			}
		}
		for _, f := range computed[c] {
			if !seen[f] {
				return fmt.Errorf("%s: required field %q not declared", c, f)
			}
		}
	}
	for c := range s {
		if _, err := model.ParseCategory(string(c)); err != nil {
			return err
		}
	}
	return nil
}
