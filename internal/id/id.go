package id

import (
	"fmt"
	"strings"
	"time"
)

// TagFormat is the layout of batch tags, always in UTC.
const TagFormat = "2006-01-02T15:04:05"

// FormatBatchTag returns a batch tag like "2024-04-01T09:30:00".
func FormatBatchTag(t time.Time) string {
	return t.UTC().Format(TagFormat)
}

// ParseBatchTag parses a tag produced by FormatBatchTag.
func ParseBatchTag(tag string) (time.Time, error) {
	t, err := time.Parse(TagFormat, tag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid batch tag %q: %w", tag, err)
	}
	return t, nil
}

// FileName returns "<prefix>-<category>-<tag>.csv" with characters
// outside [A-Za-z0-9._-] in each part replaced by '-'.
// "stripe", "sale", "2024-04-01T09:30:00" -> "stripe-sale-2024-04-01T09-30-00.csv"
func FileName(prefix, category, tag string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, category, tag} {
		if p = sanitize(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-") + ".csv"
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		}
		return '-'
	}, strings.TrimSpace(s))
}

// SheetTitle returns the spreadsheet tab name for a category batch.
func SheetTitle(category, tag string) string {
	return category + " " + tag
}
