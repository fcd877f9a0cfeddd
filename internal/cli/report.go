package cli

import (
	"fmt"
	"github.com/spf13/cobra"
	"io"
	"os"
	"text/tabwriter"
	"time"
	"tradesync/internal/journal"
	"tradesync/internal/report"
)

// filterFlags are the selection and ordering flags shared by report and export.
type filterFlags struct {
	account    string
	instrument string
	strategy   string
	direction  string
	emotion    string
	quick      string
	from       string
	to         string
	search     string
	sort       string
	desc       bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.account, "account", "", "only trades of this account")
	fs.StringVar(&f.instrument, "instrument", "", "only trades of this instrument")
	fs.StringVar(&f.strategy, "strategy", "", "only trades tagged with this strategy")
	fs.StringVar(&f.direction, "direction", "", "long or short")
	fs.StringVar(&f.emotion, "emotion", "", "only trades with this pre-trade emotion")
	fs.StringVar(&f.quick, "quick", "all", "quick filter: all, winning, losing, today, thisWeek")
	fs.StringVar(&f.from, "from", "", "first day, YYYY-MM-DD")
	fs.StringVar(&f.to, "to", "", "last day, YYYY-MM-DD")
	fs.StringVar(&f.search, "search", "", "text to look for in instrument, strategy, notes and tags")
	fs.StringVar(&f.sort, "sort", "date", "sort field (date, instrument, pnl, rMultiple, ...)")
	fs.BoolVar(&f.desc, "desc", false, "sort descending")
}

func (f *filterFlags) build(now func() time.Time) (report.Filter, report.Sort, error) {
	filter := report.Filter{
		Account:    f.account,
		Instrument: f.instrument,
		Strategy:   f.strategy,
		Emotion:    f.emotion,
		Search:     f.search,
		Now:        now,
	}
	if f.direction != "" {
		filter.Direction = journal.ParseDirection(f.direction)
		if !filter.Direction.Valid() {
			return filter, report.Sort{}, fmt.Errorf("unknown direction %q", f.direction)
		}
	}
	quick, ok := report.ParseQuick(f.quick)
	if !ok {
		return filter, report.Sort{}, fmt.Errorf("unknown quick filter %q", f.quick)
	}
	filter.Quick = quick

	var err error
	for _, d := range []struct {
		flag string
		val  string
		dst  *time.Time
	}{{"from", f.from, &filter.DateFrom}, {"to", f.to, &filter.DateTo}} {
		if d.val == "" {
			continue
		}
		if *d.dst, err = time.Parse(journal.DateLayout, d.val); err != nil {
			return filter, report.Sort{}, fmt.Errorf("bad --%s: %w", d.flag, err)
		}
	}

	if !report.ValidSortField(f.sort) {
		return filter, report.Sort{}, fmt.Errorf("unknown sort field %q", f.sort)
	}
	return filter, report.Sort{Field: f.sort, Desc: f.desc}, nil
}

func newReportCmd(a *app) *cobra.Command {
	var (
		ff       filterFlags
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List trades with filters, sorting and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, sort, err := ff.build(a.now)
			if err != nil {
				return err
			}
			if pageSize == 0 {
				pageSize = a.cfg.Reports.PageSize
			}
			trades, err := a.store.ListTrades(cmd.Context())
			if err != nil {
				return err
			}

			res := report.FilterSortPage(trades, filter, sort, report.Page{Size: pageSize, Index: page})
			writeTrades(cmd.OutOrStdout(), res.Items)
			fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d, %d trades\n", res.Page, res.TotalPages, res.TotalCount)
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "trades per page, -1 for all (default reports.page_size)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		ff  filterFlags
		out string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the selected trades as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, sort, err := ff.build(a.now)
			if err != nil {
				return err
			}
			trades, err := a.store.ListTrades(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("could not create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			selected := report.Order(report.Apply(trades, filter), sort)
			if err := report.WriteCSV(w, selected); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d trades to %s\n", len(selected), out)
			}
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func writeTrades(w io.Writer, trades []journal.Trade) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tINSTRUMENT\tDIR\tENTRY\tEXIT\tSIZE\tP&L\tR\tSTRATEGY")
	for _, t := range trades {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%g\t%g\t%s\t%s\t%s\n",
			t.Day(), t.Instrument, t.Direction, t.EntryPrice, t.ExitPrice, t.Size,
			report.Fixed2(t.PnL), report.Fixed2(t.RMultiple), t.StrategyTag)
	}
	tw.Flush()
}
