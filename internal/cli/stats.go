package cli

import (
	"fmt"
	"github.com/spf13/cobra"
	"text/tabwriter"
	"tradesync/internal/journal"
	"tradesync/internal/report"
	"tradesync/internal/stats"
)

func newStatsCmd(a *app) *cobra.Command {
	var (
		account string
		since   string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the performance summary of the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := stats.TimeframeStart(a.now(), since)
			if err != nil {
				return err
			}
			trades, err := a.store.ListTrades(cmd.Context())
			if err != nil {
				return err
			}
			if account != "" {
				acct, err := a.account(cmd.Context(), account, nil)
				if err != nil {
					return err
				}
				if acct == nil {
					acct = &journal.Account{Name: account}
				}
				var own []journal.Trade
				for _, t := range trades {
					if stats.BelongsTo(t, *acct) {
						own = append(own, t)
					}
				}
				trades = own
			}
			trades = stats.Chronological(stats.Window(trades, start))

			s := stats.Aggregate(trades)
			days := stats.DailySummary(stats.Daily(trades))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Trades\t%d (%d won, %d lost)\n", s.TotalTrades, s.WinningTrades, s.LosingTrades)
			fmt.Fprintf(tw, "Total P&L\t%s\n", report.Fixed2(s.TotalPnL))
			fmt.Fprintf(tw, "Win rate\t%s%%\n", report.Fixed2(s.WinRate))
			fmt.Fprintf(tw, "Profit factor\t%s\n", factor(s.ProfitFactor))
			fmt.Fprintf(tw, "Average R\t%s\n", report.Fixed2(s.AverageRMultiple))
			fmt.Fprintf(tw, "Expectancy\t%s\n", report.Fixed2(s.Expectancy))
			fmt.Fprintf(tw, "Best / worst trade\t%s / %s\n", report.Fixed2(s.BestTrade), report.Fixed2(s.WorstTrade))
			fmt.Fprintf(tw, "Longest streaks\t%d wins / %d losses\n", s.MaxWinStreak, s.MaxLossStreak)
			fmt.Fprintf(tw, "Volatility\t%s\n", report.Fixed2(s.Volatility))
			fmt.Fprintf(tw, "Trading days\t%d (%d profitable)\n", days.TradingDays, days.ProfitableDays)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "account ID or name")
	cmd.Flags().StringVar(&since, "since", "all", "timeframe: 7d, 30d, 90d, 1y or all")
	return cmd
}

func factor(f float64) string {
	if v, ok := stats.Number(f).(string); ok {
		return v
	}
	return report.Fixed2(f)
}
