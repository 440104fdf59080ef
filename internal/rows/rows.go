// Package rows maps classified records onto output rows.
package rows

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yaknet/monkeysync/internal/classify"
	"github.com/yaknet/monkeysync/internal/counterparty"
	"github.com/yaknet/monkeysync/internal/fieldspec"
	"github.com/yaknet/monkeysync/internal/model"
	"github.com/yaknet/monkeysync/internal/tree"
)

// ErrMissingIdentifier is returned when a donation or sale has neither an
// email nor a name to identify its counterparty.
var ErrMissingIdentifier = errors.New("missing counterparty identifier")

// SaleLabels are the fixed item and class assigned to sales.
type SaleLabels struct {
	Item  string
	Class string
}

// Generator builds rows from field specs.
type Generator struct {
	Specs     fieldspec.Set
	Sale      SaleLabels
	Tag       string
	Extractor counterparty.Extractor
}

// New returns a Generator reading counterparties from billing details.
func New(specs fieldspec.Set, sale SaleLabels, tag string) *Generator {
	return &Generator{Specs: specs, Sale: sale, Tag: tag, Extractor: counterparty.BillingDetails}
}

// Generate builds the row for a classified record.
func (g *Generator) Generate(res classify.Result, rec model.Record) (model.Row, error) {
	spec, ok := g.Specs[res.Category]
	if !ok {
		return nil, fmt.Errorf("no field spec for %s", res.Category)
	}
	row := g.base(spec, rec)

	switch res.Category {
	case model.CategoryTransfer:
		if amt, ok := row[fieldspec.FieldAmount].(decimal.Decimal); ok {
			row[fieldspec.FieldAmount] = amt.Neg()
		}
	case model.CategoryDonation:
		id, err := g.identifier(rec)
		if err != nil {
			return nil, err
		}
		row[fieldspec.FieldDonor] = id
	case model.CategorySale:
		id, err := g.identifier(rec)
		if err != nil {
			return nil, err
		}
		row[fieldspec.FieldCustomer] = id
		switch res.Rule {
		case classify.RuleInvoice:
			row[fieldspec.FieldMemo] = rec.String(model.FieldDescription)
			g.labelSale(row)
		case classify.RuleChargeFor:
			g.labelSale(row)
		}
	}
	return row, nil
}

// Relationship builds the row for a counterparty to be created.
func (g *Generator) Relationship(c model.Counterparty) model.Row {
	spec := g.Specs[model.CategoryRelationship]
	row := g.base(spec, c.Attributes())
	first, last := c.FirstLast()
	if first != "" {
		row[fieldspec.FieldFirstName] = first
	}
	if last != "" {
		row[fieldspec.FieldLastName] = last
	}
	return row
}

// Fee builds an aggregate fee row.
func (g *Generator) Fee(date string, amount decimal.Decimal) model.Row {
	spec := g.Specs[model.CategoryFee]
	row := g.base(spec, map[string]any{
		model.FieldDate:   date,
		model.FieldAmount: amount,
	})
	row[fieldspec.FieldDate] = date
	row[fieldspec.FieldAmount] = amount
	return row
}

// base applies paths, then constants, then the batch tag.
func (g *Generator) base(spec fieldspec.FieldSpec, src map[string]any) model.Row {
	row := model.Row{}
	for field, path := range spec.Paths {
		if v, ok := tree.Get(src, path); ok && v != nil {
			row[field] = v
		}
	}
	for field, v := range spec.Constants {
		row[field] = v
	}
	if g.Tag != "" && spec.Has(fieldspec.FieldImport) {
		row[fieldspec.FieldImport] = g.Tag
	}
	return row
}

func (g *Generator) labelSale(row model.Row) {
	if g.Sale.Item != "" {
		row[fieldspec.FieldItem] = g.Sale.Item
	}
	if g.Sale.Class != "" {
		row[fieldspec.FieldClass] = g.Sale.Class
	}
}

func (g *Generator) identifier(rec model.Record) (string, error) {
	c := g.Extractor.Extract(rec)
	if id := c.Identifier(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s", ErrMissingIdentifier, describe(rec))
}

func describe(rec model.Record) string {
	if id := rec.String(model.FieldID); id != "" {
		return id
	}
	return fmt.Sprintf("%q", rec.String(model.FieldDescription))
}
