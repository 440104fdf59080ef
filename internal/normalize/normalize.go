// Package normalize converts raw processor transactions into records with
// major-unit decimal amounts and ISO-8601 dates.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yaknet/monkeysync/internal/model"
	"github.com/yaknet/monkeysync/internal/tree"
)

// ErrInvalidAmount is returned when a monetary field cannot be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

// aliases maps dashboard-export headers onto processor field names.
var aliases = map[string]string{
	"ID":                 model.FieldID,
	"Type":               model.FieldType,
	"Source":             model.FieldSource,
	"Amount":             model.FieldAmount,
	"Total":              model.FieldTotal,
	"Fee":                model.FieldFee,
	"Net":                model.FieldNet,
	"Description":        model.FieldDescription,
	"Created (UTC)":      model.FieldCreated,
	"Available On (UTC)": model.FieldAvailableOn,
	"Transfer":           model.FieldTransfer,
	"Customer Email":     model.FieldEmail,
}

var (
	timeFields  = []string{model.FieldCreated, model.FieldAvailableOn}
	moneyFields = []string{model.FieldAmount, model.FieldTotal, model.FieldFee, model.FieldNet}
)

// Normalize returns a normalized copy of t. t is not modified.
func Normalize(t model.RawTransaction) (model.Record, error) {
	rec := model.Record(tree.CloneMap(t))
	if rec == nil {
		rec = model.Record{}
	}

	for from, to := range aliases {
		v, ok := rec[from]
		if !ok {
			continue
		}
		delete(rec, from)
		if _, exists := rec[to]; !exists {
			rec[to] = v
		}
	}

	for _, k := range timeFields {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		ts, err := Timestamp(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		rec[k] = ts
	}

	if created := rec.String(model.FieldCreated); created != "" {
		rec[model.FieldDate] = Date(created)
	} else if date := rec.String(model.FieldDate); date != "" {
		rec[model.FieldDate] = Date(date)
	}

	for _, k := range moneyFields {
		v, ok := rec[k]
		if !ok {
			continue
		}
		if v == nil || v == "" {
			delete(rec, k)
			continue
		}
		d, err := Amount(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		rec[k] = d
	}

	if _, ok := rec[model.FieldTotal]; !ok {
		if amt, ok := rec[model.FieldAmount]; ok {
			rec[model.FieldTotal] = amt
		}
	}

	if rec.String(model.FieldEmail) == "" {
		if email := EmailFromDescription(rec.String(model.FieldDescription)); email != "" {
			rec[model.FieldEmail] = email
		}
	}

	return rec, nil
}

// Amount converts a monetary value to major units.
// Integers are minor units; strings are major units and may carry
// thousands separators; decimals are returned unchanged.
func Amount(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case int:
		return decimal.New(int64(n), -2), nil
	case int32:
		return decimal.New(int64(n), -2), nil
	case int64:
		return decimal.New(n, -2), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, fmt.Errorf("%w: fractional minor units %v", ErrInvalidAmount, n)
		}
		return decimal.New(int64(n), -2), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, n.String())
		}
		return decimal.New(i, -2), nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, n)
		}
		return d, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}
}

// Timestamp converts unix seconds to an RFC3339 UTC string. Strings pass
// through unchanged.
func Timestamp(v any) (string, error) {
	var sec int64
	switch n := v.(type) {
	case string:
		return n, nil
	case int:
		sec = int64(n)
	case int64:
		sec = n
	case float64:
		sec = int64(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return "", fmt.Errorf("invalid timestamp %q: %w", n.String(), err)
		}
		sec = i
	default:
		return "", fmt.Errorf("unsupported timestamp type %T", v)
	}
	return time.Unix(sec, 0).UTC().Format(time.RFC3339), nil
}

// Date truncates an ISO-8601 date-time to its date part.
func Date(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// EmailFromDescription returns the last whitespace-delimited token of desc
// when it contains '@', or "".
func EmailFromDescription(desc string) string {
	tokens := strings.Fields(desc)
	if len(tokens) == 0 {
		return ""
	}
	last := tokens[len(tokens)-1]
	if strings.Contains(last, "@") {
		return last
	}
	return ""
}
