package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"tradesync/internal/journal"
)

func newImportCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import trades from a JSON or YAML file",
		Long: `Import reads a list of trade records from a JSON or YAML file, checks every one
against the risk rules and stores the ones that pass. Records that are malformed or
blocked by a risk rule are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raws, err := readRawTrades(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			existing, err := a.store.ListTrades(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			v := a.validator()
			var accepted []journal.Trade
			skipped := 0
			for i, raw := range raws {
				t, err := journal.Parse(raw)
				if err != nil {
					fmt.Fprintf(out, "#%d: skipped: %v\n", i+1, err)
					skipped++
					continue
				}
				// earlier records of the same file count toward the daily budget
				acct, err := a.account(ctx, t.Account, slices.Concat(existing, accepted))
				if err != nil {
					return err
				}
				res := v.Validate(t, acct)
				if res.Blocked() {
					fmt.Fprintf(out, "#%d %s %s: blocked: %s\n", i+1, t.Day(), t.Instrument, errorList(res.Errors))
					skipped++
					continue
				}
				for _, w := range res.Warnings {
					fmt.Fprintf(out, "#%d %s %s: warning: %s\n", i+1, t.Day(), t.Instrument, w)
				}
				accepted = append(accepted, t)
			}

			if dryRun {
				fmt.Fprintf(out, "Dry run: %d trades would be imported, %d skipped\n", len(accepted), skipped)
				return nil
			}
			if len(accepted) > 0 {
				if _, err := a.store.CreateTrades(ctx, accepted); err != nil {
					return err
				}
				if _, err := a.store.RefreshAccounts(ctx, a.now()); err != nil {
					return err
				}
			}
			a.log.Info("Imported trades", zap.String("file", args[0]), zap.Int("count", len(accepted)))
			fmt.Fprintf(out, "Imported %d trades, %d skipped\n", len(accepted), skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "check the records without storing them")
	return cmd
}

// readRawTrades decodes a file holding either a list of trade records or an object
// with a "trades" list. The format follows the extension; JSON is the default.
func readRawTrades(path string) ([]journal.RawTrade, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	var records []map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		var doc yaml.Node
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", path, err)
		}
		var wrapped struct {
			Trades []map[string]any `yaml:"trades"`
		}
		if err := doc.Decode(&records); err != nil {
			if err := doc.Decode(&wrapped); err != nil {
				return nil, fmt.Errorf("could not parse %s: %w", path, err)
			}
			records = wrapped.Trades
		}
	default:
		b = bytes.TrimSpace(b)
		if len(b) > 0 && b[0] == '{' {
			var wrapped struct {
				Trades []map[string]any `json:"trades"`
			}
			if err := decodeJSON(b, &wrapped); err != nil {
				return nil, fmt.Errorf("could not parse %s: %w", path, err)
			}
			records = wrapped.Trades
		} else if err := decodeJSON(b, &records); err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", path, err)
		}
	}

	raws := make([]journal.RawTrade, len(records))
	for i, r := range records {
		raws[i] = journal.RawTrade(r)
	}
	return raws, nil
}

func decodeJSON(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}
