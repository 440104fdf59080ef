package stripe

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaknet/monkeysync/internal/model"
)

func exportRow(typ, transfer, date, amount, desc string) model.RawTransaction {
	row := model.RawTransaction{
		ColType:        typ,
		ColAmount:      amount,
		ColDescription: desc,
		ColCreated:     date + " 10:00",
	}
	if transfer != "" {
		row[ColTransfer] = transfer
		row[ColTransferDate] = date
	}
	return row
}

func TestGroupPayouts(t *testing.T) {
	rows := []model.RawTransaction{
		exportRow("charge", "po_1", "2024-03-07", "25.00", "Donation by Ada"),
		exportRow("payout", "po_1", "2024-03-07", "-25.00", "STRIPE PAYOUT"),
		exportRow("charge", "po_2", "2024-03-14", "40.00", "Invoice 7"),
		exportRow("charge", "po_2", "2024-03-14", "10.00", "Charge for mug"),
		exportRow("payout", "po_2", "2024-03-14", "-50.00", "STRIPE PAYOUT"),
		exportRow("charge", "", "2024-03-20", "5.00", "pending"),
	}

	payouts, err := GroupPayouts(rows)
	require.NoError(t, err)
	require.Len(t, payouts, 2)

	assert.Equal(t, "po_2", payouts[0].Transfer)
	assert.Equal(t, "2024-03-14", payouts[0].Date)
	assert.Len(t, payouts[0].Charges, 2)
	assert.Equal(t, "-50.00", payouts[0].Payout.String(ColAmount))

	assert.Equal(t, "po_1", payouts[1].Transfer)
	assert.Len(t, payouts[1].Charges, 1)
}

func TestGroupPayouts_BadPayout(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := GroupPayouts([]model.RawTransaction{
			exportRow("charge", "po_1", "2024-03-07", "25.00", "Donation"),
		})
		assert.ErrorIs(t, err, ErrBadPayout)
	})
	t.Run("duplicate", func(t *testing.T) {
		_, err := GroupPayouts([]model.RawTransaction{
			exportRow("payout", "po_1", "2024-03-07", "-25.00", "STRIPE PAYOUT"),
			exportRow("payout", "po_1", "2024-03-07", "-25.00", "STRIPE PAYOUT"),
		})
		assert.ErrorIs(t, err, ErrBadPayout)
		assert.ErrorContains(t, err, "2 payout rows")
	})
}

func TestWriteReport(t *testing.T) {
	payouts, err := GroupPayouts([]model.RawTransaction{
		exportRow("charge", "po_1", "2024-03-07", "25.00", "Donation by Ada"),
		exportRow("payout", "po_1", "2024-03-07", "-25.00", "STRIPE PAYOUT"),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, payouts))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "2024-03-07"))
	assert.Contains(t, lines[0], "po_1")
	assert.Contains(t, lines[0], "-25.00")
	assert.True(t, strings.HasPrefix(lines[1], " "))
	assert.Contains(t, lines[1], "Donation by Ada")
}
