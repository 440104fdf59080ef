package stripe

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/yaknet/monkeysync/internal/model"
)

// Dashboard export column names used by the payout report.
const (
	ColType         = "Type"
	ColTransfer     = "Transfer"
	ColTransferDate = "Transfer Date (UTC)"
	ColCreated      = "Created (UTC)"
	ColAmount       = "Amount"
	ColFee          = "Fee"
	ColNet          = "Net"
	ColDescription  = "Description"
)

// TypePayout is the export Type of a payout row.
const TypePayout = "payout"

// ErrBadPayout is returned when a transfer group does not hold exactly
// one payout row.
var ErrBadPayout = errors.New("bad payout")

// Payout is one transfer to the bank with the charges it settled.
type Payout struct {
	Transfer string
	Date     string
	Payout   model.RawTransaction
	Charges  []model.RawTransaction
}

// GroupPayouts groups export rows by transfer and returns the payouts
// newest first. Rows without a transfer are still pending and skipped.
func GroupPayouts(rows []model.RawTransaction) ([]Payout, error) {
	groups := make(map[string]*Payout)
	var order []string
	counts := make(map[string]int)

	for _, row := range rows {
		transfer := row.String(ColTransfer)
		if transfer == "" {
			continue
		}
		p, ok := groups[transfer]
		if !ok {
			p = &Payout{Transfer: transfer}
			groups[transfer] = p
			order = append(order, transfer)
		}
		if row.String(ColType) == TypePayout {
			counts[transfer]++
			p.Payout = row
			p.Date = row.String(ColTransferDate)
			continue
		}
		p.Charges = append(p.Charges, row)
	}

	payouts := make([]Payout, 0, len(order))
	for _, transfer := range order {
		if n := counts[transfer]; n != 1 {
			return nil, fmt.Errorf("%w: transfer %s has %d payout rows", ErrBadPayout, transfer, n)
		}
		payouts = append(payouts, *groups[transfer])
	}

	sort.SliceStable(payouts, func(i, j int) bool {
		return payouts[i].Date > payouts[j].Date
	})
	return payouts, nil
}

// WriteReport prints each payout followed by its indented charges.
func WriteReport(w io.Writer, payouts []Payout) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range payouts {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t\t\t\n", p.Date, p.Transfer, p.Payout.String(ColAmount)); err != nil {
			return fmt.Errorf("writing payout report: %w", err)
		}
		for _, c := range p.Charges {
			if _, err := fmt.Fprintf(tw, "\t%s\t%s\t%s\t%s\t%s\n",
				c.String(ColCreated), c.String(ColAmount), c.String(ColFee), c.String(ColNet), c.String(ColDescription)); err != nil {
				return fmt.Errorf("writing payout report: %w", err)
			}
		}
	}
	return tw.Flush()
}
