package cli

import (
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"maps"
	"slices"
	"strings"
	"tradesync/internal/journal"
	"tradesync/internal/report"
)

// validateFields maps each flag to the record key it fills.
var validateFields = []struct {
	flag, key, usage string
}{
	{"instrument", "instrument", "instrument, e.g. EURUSD"},
	{"direction", "direction", "long or short"},
	{"entry", "entry_price", "entry price"},
	{"exit", "exit_price", "exit price"},
	{"size", "size", "position size"},
	{"fees", "fees", "fees paid"},
	{"risk", "risk_amount", "amount at risk"},
	{"stop", "stop_loss", "stop-loss price"},
	{"take-profit", "take_profit", "take-profit price"},
	{"account", "account", "account ID or name"},
	{"entry-time", "entry_datetime", "entry time, RFC 3339 or YYYY-MM-DD HH:MM"},
	{"exit-time", "exit_datetime", "exit time"},
	{"date", "date", "trade day, YYYY-MM-DD (default today)"},
}

func newValidateCmd(a *app) *cobra.Command {
	values := make([]string, len(validateFields))

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a trade against the risk rules without logging it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := journal.RawTrade{}
			for i, f := range validateFields {
				if cmd.Flags().Changed(f.flag) {
					raw[f.key] = values[i]
				}
			}
			if !raw.Has("date") && !raw.Has("entry_datetime") {
				raw["date"] = a.now().Format(journal.DateLayout)
			}
			t, err := journal.Parse(raw)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			trades, err := a.store.ListTrades(ctx)
			if err != nil {
				return err
			}
			acct, err := a.account(ctx, t.Account, trades)
			if err != nil {
				return err
			}
			res := a.validator().Validate(t, acct)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s\n", res.Status)
			fmt.Fprintf(out, "Risk: %s%%\n", report.Fixed2(res.RiskPercent))
			fmt.Fprintf(out, "P&L: %s  R: %s\n", report.Fixed2(t.PnL), report.Fixed2(t.RMultiple))
			if acct == nil {
				fmt.Fprintf(out, "Account %q is unknown; capital rules were not checked\n", t.Account)
			}
			for _, field := range slices.Sorted(maps.Keys(res.Errors)) {
				fmt.Fprintf(out, "error: %s: %s\n", field, res.Errors[field])
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if res.Blocked() {
				return errors.New("trade is blocked by the risk rules")
			}
			return nil
		},
	}
	for i, f := range validateFields {
		cmd.Flags().StringVar(&values[i], f.flag, "", f.usage)
	}
	return cmd
}

func errorList(errs map[string]string) string {
	parts := make([]string, 0, len(errs))
	for _, field := range slices.Sorted(maps.Keys(errs)) {
		parts = append(parts, field+": "+errs[field])
	}
	return strings.Join(parts, "; ")
}
