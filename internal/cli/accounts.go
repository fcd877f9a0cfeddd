package cli

import (
	"fmt"
	"github.com/spf13/cobra"
	"text/tabwriter"
	"tradesync/internal/report"
	"tradesync/internal/risk"
	"tradesync/internal/store"
)

func newAccountsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List prop-firm accounts with their current figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := a.store.RefreshAccounts(cmd.Context(), a.now())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tFIRM\tPHASE\tBALANCE\tDAILY P&L\tTOTAL P&L\tDAILY DD%\tTOTAL DD%\tTARGET%\tDAYS\tSTATUS")
			for _, acct := range accounts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
					acct.Name, acct.PropFirm, acct.Phase,
					report.Fixed2(acct.CurrentBalance()),
					report.Fixed2(acct.DailyPnL),
					report.Fixed2(acct.TotalPnL),
					report.Fixed2(acct.Metrics.DailyDrawdownPct),
					report.Fixed2(acct.Metrics.TotalDrawdownPct),
					report.Fixed2(acct.Metrics.ProfitProgressPct),
					acct.TradingDays,
					risk.AccountStatus(acct.Metrics))
			}
			return tw.Flush()
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the preset accounts and strategies that do not exist yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.cfg.Presets.Path
			}
			if file == "" {
				return fmt.Errorf("no presets file: set presets.path or --file")
			}
			presets, err := store.LoadPresets(file)
			if err != nil {
				return err
			}
			n, err := a.store.Seed(cmd.Context(), presets)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d records from %s\n", n, file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "presets YAML file (default presets.path)")
	return cmd
}
