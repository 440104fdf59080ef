package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBatchTag(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, time.April, 1, 9, 30, 0, 0, time.UTC), "2024-04-01T09:30:00"},
		{time.Date(2024, time.April, 1, 9, 30, 0, 999, time.UTC), "2024-04-01T09:30:00"},
		{time.Date(2024, time.April, 1, 2, 0, 0, 0, time.FixedZone("EST", -5*3600)), "2024-04-01T07:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBatchTag(tt.in))
	}
}

func TestParseBatchTag(t *testing.T) {
	got, err := ParseBatchTag("2024-04-01T09:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.April, 1, 9, 30, 0, 0, time.UTC), got)

	round, err := ParseBatchTag(FormatBatchTag(got))
	require.NoError(t, err)
	assert.Equal(t, got, round)
}

func TestParseBatchTag_Invalid(t *testing.T) {
	for _, tag := range []string{"", "2024-04-01", "april", "2024-13-01T00:00:00"} {
		_, err := ParseBatchTag(tag)
		assert.Error(t, err, "tag %q", tag)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		prefix, category, tag string
		want                  string
	}{
		{"stripe", "sale", "2024-04-01T09:30:00", "stripe-sale-2024-04-01T09-30-00.csv"},
		{"", "fee", "2024-04-01T09:30:00", "fee-2024-04-01T09-30-00.csv"},
		{"my org", "donation", "run 1/2", "my-org-donation-run-1-2.csv"},
		{"stripe", "unknown", "v1.2_b", "stripe-unknown-v1.2_b.csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.prefix, tt.category, tt.tag))
	}
}

func TestSheetTitle(t *testing.T) {
	assert.Equal(t, "sale 2024-04-01T09:30:00", SheetTitle("sale", "2024-04-01T09:30:00"))
}
