package stripe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	stripego "github.com/stripe/stripe-go/v76"
)

// DefaultWindow selects the previous calendar month.
const DefaultWindow = "now-1M/M:now-1M/M"

// Window bounds a listing by creation time. A zero bound is open.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseWindow parses "start:end" where each side is a date-math
// expression. Either side may be empty. The start rounds down and the
// end rounds up, so "now-1M/M:now-1M/M" covers all of last month.
// Timestamps may contain colons; the first split where both sides parse
// wins.
func ParseWindow(expr string, now time.Time) (Window, error) {
	var lastErr error
	for i := 0; i < len(expr); i++ {
		if expr[i] != ':' {
			continue
		}
		w, err := parseBounds(expr[:i], expr[i+1:], now)
		if err == nil {
			return w, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return Window{}, fmt.Errorf("invalid window %q: expected start:end", expr)
	}
	return Window{}, lastErr
}

func parseBounds(start, end string, now time.Time) (Window, error) {
	var w Window
	var err error
	if start = strings.TrimSpace(start); start != "" {
		if w.Start, err = ParseMath(start, now, false); err != nil {
			return Window{}, fmt.Errorf("window start: %w", err)
		}
	}
	if end = strings.TrimSpace(end); end != "" {
		if w.End, err = ParseMath(end, now, true); err != nil {
			return Window{}, fmt.Errorf("window end: %w", err)
		}
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		return Window{}, fmt.Errorf("window %s:%s ends before it starts", start, end)
	}
	return w, nil
}

// Range returns the created filter for list calls, or nil when both
// bounds are open.
func (w Window) Range() *stripego.RangeQueryParams {
	if w.Start.IsZero() && w.End.IsZero() {
		return nil
	}
	r := &stripego.RangeQueryParams{}
	if !w.Start.IsZero() {
		r.GreaterThanOrEqual = w.Start.Unix()
	}
	if !w.End.IsZero() {
		r.LesserThanOrEqual = w.End.Unix()
	}
	return r
}

// String renders the window for logs.
func (w Window) String() string {
	f := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.Format(time.RFC3339)
	}
	return f(w.Start) + " .. " + f(w.End)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseMath evaluates a date-math expression in UTC.
//
//	now-1M/M         start of last month
//	now/d            start of today (end of today when roundUp)
//	2024-03-01||+1w  one week after March 1st
//
// Units are y, M, w, d, h, m and s. A bare date used with roundUp
// covers the whole day.
func ParseMath(expr string, now time.Time, roundUp bool) (time.Time, error) {
	var t time.Time
	var ops string
	switch {
	case strings.HasPrefix(expr, "now"):
		t = now.UTC()
		ops = expr[len("now"):]
	default:
		anchor, rest, hasOps := strings.Cut(expr, "||")
		parsed, layout, err := parseDate(anchor)
		if err != nil {
			return time.Time{}, err
		}
		t = parsed
		ops = rest
		if !hasOps && layout == "2006-01-02" && roundUp {
			ops = "/d"
		}
	}

	for ops != "" {
		op := ops[0]
		ops = ops[1:]
		switch op {
		case '+', '-':
			i := 0
			for i < len(ops) && ops[i] >= '0' && ops[i] <= '9' {
				i++
			}
			n := 1
			if i > 0 {
				var err error
				if n, err = strconv.Atoi(ops[:i]); err != nil {
					return time.Time{}, fmt.Errorf("invalid offset in %q: %w", expr, err)
				}
			}
			if i >= len(ops) {
				return time.Time{}, fmt.Errorf("missing unit in %q", expr)
			}
			if op == '-' {
				n = -n
			}
			var err error
			if t, err = shift(t, n, ops[i]); err != nil {
				return time.Time{}, fmt.Errorf("%q: %w", expr, err)
			}
			ops = ops[i+1:]
		case '/':
			if ops == "" {
				return time.Time{}, fmt.Errorf("missing rounding unit in %q", expr)
			}
			var err error
			if t, err = round(t, ops[0], roundUp); err != nil {
				return time.Time{}, fmt.Errorf("%q: %w", expr, err)
			}
			ops = ops[1:]
		default:
			return time.Time{}, fmt.Errorf("unexpected %q in %q", op, expr)
		}
	}
	return t, nil
}

func parseDate(s string) (time.Time, string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("invalid date %q", s)
}

func shift(t time.Time, n int, unit byte) (time.Time, error) {
	switch unit {
	case 'y':
		return addMonths(t, 12*n), nil
	case 'M':
		return addMonths(t, n), nil
	case 'w':
		return t.AddDate(0, 0, 7*n), nil
	case 'd':
		return t.AddDate(0, 0, n), nil
	case 'h':
		return t.Add(time.Duration(n) * time.Hour), nil
	case 'm':
		return t.Add(time.Duration(n) * time.Minute), nil
	case 's':
		return t.Add(time.Duration(n) * time.Second), nil
	}
	return time.Time{}, fmt.Errorf("unknown unit %q", unit)
}

// addMonths moves t by n calendar months, clamping the day to the length
// of the target month: Mar 31 - 1M is the last day of February.
func addMonths(t time.Time, n int) time.Time {
	y, mo, d := t.Date()
	first := time.Date(y, mo+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// round truncates t to the start of unit, or to the last instant of the
// unit when up is set.
func round(t time.Time, unit byte, up bool) (time.Time, error) {
	y, mo, d := t.Date()
	var start, next time.Time
	switch unit {
	case 'y':
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		next = start.AddDate(1, 0, 0)
	case 'M':
		start = time.Date(y, mo, 1, 0, 0, 0, 0, time.UTC)
		next = start.AddDate(0, 1, 0)
	case 'w':
		offset := (int(t.Weekday()) + 6) % 7 // weeks start on Monday
		start = time.Date(y, mo, d-offset, 0, 0, 0, 0, time.UTC)
		next = start.AddDate(0, 0, 7)
	case 'd':
		start = time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		next = start.AddDate(0, 0, 1)
	case 'h':
		start = t.Truncate(time.Hour)
		next = start.Add(time.Hour)
	case 'm':
		start = t.Truncate(time.Minute)
		next = start.Add(time.Minute)
	case 's':
		start = t.Truncate(time.Second)
		next = start.Add(time.Second)
	default:
		return time.Time{}, fmt.Errorf("unknown unit %q", unit)
	}
	if up {
		return next.Add(-time.Nanosecond), nil
	}
	return start, nil
}
