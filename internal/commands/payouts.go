package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaknet/monkeysync/internal/importer"
	"github.com/yaknet/monkeysync/internal/stripe"
)

func newPayoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "payouts <export.csv>",
		Short: "Show the charges settled by each payout in a Stripe export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening export: %w", err)
			}
			defer f.Close()

			rows, err := (&importer.StripeCSVParser{}).Parse(f)
			if err != nil {
				return err
			}
			payouts, err := stripe.GroupPayouts(rows)
			if err != nil {
				return err
			}
			return stripe.WriteReport(cmd.OutOrStdout(), payouts)
		},
	}
}
