// Package fees totals processor fees per calendar month.
package fees

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yaknet/monkeysync/internal/model"
)

// SettlementDay is the day of month aggregate fee rows are dated.
const SettlementDay = 28

// Bucket is the fee total of one month.
type Bucket struct {
	Month  string // YYYY-MM
	Date   string // YYYY-MM-28
	Amount decimal.Decimal
}

// Aggregator accumulates fees by month.
type Aggregator struct {
	totals map[string]decimal.Decimal
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{totals: map[string]decimal.Decimal{}}
}

// Add accumulates the record's fee into its creation month. Records with
// no fee, a zero fee, or no usable date add nothing.
func (a *Aggregator) Add(rec model.Record) {
	fee, ok := rec[model.FieldFee].(decimal.Decimal)
	if !ok || fee.IsZero() {
		return
	}
	month := monthOf(rec.String(model.FieldCreated))
	if month == "" {
		month = monthOf(rec.String(model.FieldDate))
	}
	if month == "" {
		return
	}
	a.totals[month] = a.totals[month].Add(fee)
}

// Buckets returns the monthly totals in ascending month order.
func (a *Aggregator) Buckets() []Bucket {
	months := make([]string, 0, len(a.totals))
	for m := range a.totals {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]Bucket, 0, len(months))
	for _, m := range months {
		out = append(out, Bucket{
			Month:  m,
			Date:   fmt.Sprintf("%s-%02d", m, SettlementDay),
			Amount: a.totals[m],
		})
	}
	return out
}

// monthOf returns the YYYY-MM prefix of an ISO-8601 date or date-time.
func monthOf(s string) string {
	if len(s) < 7 || s[4] != '-' {
		return ""
	}
	return s[:7]
}
