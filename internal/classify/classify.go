// Package classify assigns transactions to output categories.
package classify

import (
	"strings"

	"github.com/yaknet/monkeysync/internal/model"
)

// MatchKind selects how a rule's pattern is compared.
type MatchKind int

const (
	Contains MatchKind = iota
	Prefix
)

// Rule names. Row generators key sale post-processing off these.
const (
	RulePayout    = "payout"
	RuleDonation  = "donation"
	RuleInvoice   = "invoice"
	RuleChargeFor = "charge_for"
)

// Rule maps a case-sensitive pattern to a category.
type Rule struct {
	Name     string
	Kind     MatchKind
	Pattern  string
	Category model.Category
}

// Match reports whether text satisfies the rule.
func (r Rule) Match(text string) bool {
	switch r.Kind {
	case Prefix:
		return strings.HasPrefix(text, r.Pattern)
	default:
		return strings.Contains(text, r.Pattern)
	}
}

// Rules is the ordered rule table; the first match wins.
var Rules = []Rule{
	{Name: RulePayout, Kind: Contains, Pattern: "PAYOUT", Category: model.CategoryTransfer},
	{Name: RuleDonation, Kind: Prefix, Pattern: "Donation by", Category: model.CategoryDonation},
	{Name: RuleInvoice, Kind: Prefix, Pattern: "Invoice", Category: model.CategorySale},
	{Name: RuleChargeFor, Kind: Prefix, Pattern: "Charge for", Category: model.CategorySale},
}

// Result is the outcome of classifying one record.
type Result struct {
	Category model.Category
	Rule     string // empty for unknown
	Text     string // the text the rules were evaluated against
}

// Classify evaluates Rules against the record's description, or its type
// when the description is empty.
func Classify(rec model.Record) Result {
	text := rec.String(model.FieldDescription)
	if text == "" {
		text = rec.String(model.FieldType)
	}
	for _, r := range Rules {
		if r.Match(text) {
			return Result{Category: r.Category, Rule: r.Name, Text: text}
		}
	}
	return Result{Category: model.CategoryUnknown, Text: text}
}
