package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaknet/monkeysync/internal/model"
)

func rec(created, fee string) model.Record {
	r := model.Record{model.FieldCreated: created}
	if fee != "" {
		r[model.FieldFee] = decimal.RequireFromString(fee)
	}
	return r
}

func TestAggregator_BucketsByMonth(t *testing.T) {
	a := NewAggregator()
	a.Add(rec("2024-04-01T09:00:00Z", "0.80"))
	a.Add(rec("2024-03-05T10:15:00Z", "1.50"))
	a.Add(rec("2024-03-20T14:02:00Z", "2.25"))

	got := a.Buckets()
	require.Len(t, got, 2)

	assert.Equal(t, "2024-03", got[0].Month)
	assert.Equal(t, "2024-03-28", got[0].Date)
	assert.Equal(t, "3.75", got[0].Amount.StringFixed(2))

	assert.Equal(t, "2024-04", got[1].Month)
	assert.Equal(t, "2024-04-28", got[1].Date)
	assert.Equal(t, "0.80", got[1].Amount.StringFixed(2))
}

func TestAggregator_SortedAcrossYears(t *testing.T) {
	a := NewAggregator()
	a.Add(rec("2025-01-02T00:00:00Z", "1"))
	a.Add(rec("2024-12-30T00:00:00Z", "1"))
	a.Add(rec("2024-02-10T00:00:00Z", "1"))

	var months []string
	for _, b := range a.Buckets() {
		months = append(months, b.Month)
	}
	assert.Equal(t, []string{"2024-02", "2024-12", "2025-01"}, months)
}

func TestAggregator_SkipsEmpty(t *testing.T) {
	a := NewAggregator()
	a.Add(rec("2024-03-05T10:15:00Z", ""))
	a.Add(rec("2024-03-05T10:15:00Z", "0.00"))
	a.Add(rec("", "1.00"))
	a.Add(rec("bogus", "1.00"))
	assert.Empty(t, a.Buckets())
}

func TestAggregator_DateFallback(t *testing.T) {
	a := NewAggregator()
	a.Add(model.Record{model.FieldDate: "2024-03-05", model.FieldFee: decimal.RequireFromString("0.30")})
	got := a.Buckets()
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-28", got[0].Date)
}

func TestAggregator_ExactDecimalSum(t *testing.T) {
	a := NewAggregator()
	for range 10 {
		a.Add(rec("2024-03-05T10:15:00Z", "0.10"))
	}
	got := a.Buckets()
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(1)))
}
