package cli

import (
	"fmt"
	"text/tabwriter"

	"exam-runner/internal/config"
	"github.com/spf13/cobra"
)

// NewHistoryCmd groups the local-ledger utilities.
func NewHistoryCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or reset the local completion history",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print all local completion records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			records := buildLedger(cfg).Dump()
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no local history")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EMAIL\tNAME\tGRADE\tSCORE\tDATE")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
					rec.Email, rec.Name, rec.Grade, rec.Score, rec.Total,
					rec.Date.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Erase all local completion records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			buildLedger(cfg).Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "local history cleared")
			return nil
		},
	})

	return cmd
}
