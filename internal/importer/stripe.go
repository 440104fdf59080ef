package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yaknet/monkeysync/internal/model"
)

// Parser formats.
const (
	FormatStripeCSV  = "stripe-csv"
	FormatStripeJSON = "stripe-json"
)

// StripeCSVParser parses Stripe dashboard balance exports. Each row
// becomes a RawTransaction keyed by column header; empty cells are
// dropped so they read as absent.
type StripeCSVParser struct{}

// Format returns the parser name.
func (p *StripeCSVParser) Format() string { return FormatStripeCSV }

// Parse reads a dashboard CSV export.
func (p *StripeCSVParser) Parse(r io.Reader) ([]model.RawTransaction, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading stripe CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	if !hasColumn(header, "id") {
		return nil, fmt.Errorf("reading stripe CSV: missing id column")
	}

	txns := make([]model.RawTransaction, 0, len(records)-1)
	for _, rec := range records[1:] {
		txn := make(model.RawTransaction, len(header))
		for i, col := range header {
			if v := strings.TrimSpace(rec[i]); v != "" {
				txn[col] = v
			}
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

// StripeJSONParser parses saved balance transaction listings: either a
// bare JSON array or a Stripe list object with a data array.
type StripeJSONParser struct{}

// Format returns the parser name.
func (p *StripeJSONParser) Format() string { return FormatStripeJSON }

// Parse reads a JSON dump. Numbers keep their exact text.
func (p *StripeJSONParser) Parse(r io.Reader) ([]model.RawTransaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading stripe JSON: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var txns []model.RawTransaction
	if data[0] == '[' {
		if err := dec.Decode(&txns); err != nil {
			return nil, fmt.Errorf("decoding stripe JSON: %w", err)
		}
		return txns, nil
	}

	var list struct {
		Data []model.RawTransaction `json:"data"`
	}
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding stripe JSON: %w", err)
	}
	return list.Data, nil
}
