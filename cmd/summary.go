package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"promette/internal/bootstrap"
	correspondenceuc "promette/internal/usecase/correspondence"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print per-area correspondence counts",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *correspondenceuc.Service) error {
		asOf, _ := cmd.Flags().GetString("as-of")
		positionID, _ := cmd.Flags().GetUint64("position")

		rows, err := svc.SummaryByArea(cmd.Context(), correspondenceuc.SummaryInput{
			AsOf:       asOf,
			PositionID: positionID,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "AREA\tTOTAL\tRESOLVED\tDERIVED\tPENDING")
		for _, row := range rows {
			pending := row.Total - row.Resolved - row.Derived
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", row.Scope, row.Total, row.Resolved, row.Derived, pending)
		}
		return w.Flush()
	}),
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().String("as-of", "", "Count only correspondence received on or before this date (YYYY-MM-DD)")
	summaryCmd.Flags().Uint64("position", 0, "Limit counts to correspondence currently assigned to this position")
}
