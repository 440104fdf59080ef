package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yaknet/monkeysync/internal/runlog"
)

func newRunsCommand(a *app) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List reconcile runs from the run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := runlog.Read(a.root())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tCATEGORY\tROWS\tCREATED\tDETAILS")
			for _, e := range entries {
				if tag != "" && e.Tag != tag {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", e.Tag, e.Category, e.Rows, e.Created, e.Details)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "only show this batch")
	return cmd
}
