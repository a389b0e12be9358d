package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Boluski2/lendsqr-admin/internal/listing"
	"github.com/Boluski2/lendsqr-admin/internal/service"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the users summary cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := newRepository(cfg.Generator)
		query := service.NewQueryService(repo, service.Latency{})

		stats, err := query.ComputeStats(cmd.Context())
		if err != nil {
			return err
		}
		records, err := query.ListAll(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if statsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "USERS\t%d\n", stats.TotalUsers)
		fmt.Fprintf(tw, "ACTIVE USERS\t%d\n", stats.ActiveUsers)
		fmt.Fprintf(tw, "USERS WITH LOANS\t%d\n", stats.UsersWithLoans)
		fmt.Fprintf(tw, "USERS WITH SAVINGS\t%d\n", stats.UsersWithSavings)
		fmt.Fprintf(tw, "ORGANIZATIONS\t%d\n", len(listing.Organizations(records)))
		return tw.Flush()
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print as JSON")
}
