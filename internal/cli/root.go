// Package cli implements the journal command line: reports, imports, validation and
// the API server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"time"
	"tradesync/internal/config"
	"tradesync/internal/database"
	"tradesync/internal/journal"
	"tradesync/internal/logger"
	"tradesync/internal/risk"
	"tradesync/internal/stats"
	"tradesync/internal/store"
)

// app is the state shared by every subcommand. It is opened before a subcommand runs
// and closed after.
type app struct {
	configDir string
	dsn       string
	logLevel  string

	cfg   config.Config
	log   *zap.Logger
	db    *gorm.DB
	store *store.Store
	now   func() time.Time
}

func (a *app) open() error {
	cfg, err := config.LoadConfig(a.configDir)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if a.dsn != "" {
		cfg.Database.DSN = a.dsn
	}
	if a.logLevel != "" {
		cfg.Logger.Level = a.logLevel
	}
	a.cfg = cfg

	if a.log, err = logger.New(cfg.Logger); err != nil {
		return fmt.Errorf("could not initialize logger: %w", err)
	}
	if a.db, err = database.NewDatabase(cfg.Database.DSN); err != nil {
		return err
	}
	a.store = store.New(a.db, a.log.Named("store"))
	return nil
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) validator() *risk.Validator {
	return risk.NewValidator(risk.Thresholds{
		MaxRiskPct:          a.cfg.Risk.MaxRiskPct,
		WarnRiskPct:         a.cfg.Risk.WarnRiskPct,
		DailyBudgetFraction: a.cfg.Risk.DailyBudgetFraction,
		MinRMultiple:        a.cfg.Risk.MinRMultiple,
	})
}

// account returns the referenced account with its figures as of now computed from
// trades, or nil when ref names no stored account.
func (a *app) account(ctx context.Context, ref string, trades []journal.Trade) (*journal.Account, error) {
	if ref == "" {
		return nil, nil
	}
	acct, err := a.store.FindAccount(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	acct = stats.AccountMetrics(acct, trades, a.now())
	return &acct, nil
}

// NewRootCmd builds the journal command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{now: time.Now})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal metrics and risk engine",
		Long: `journal keeps a trading journal of prop-firm accounts and computes P&L,
R-multiples, risk checks and performance reports from it.

Examples:
  journal import trades.json --dry-run
  journal report --quick thisWeek --sort pnl --desc
  journal stats --since 30d --account "FTMO 100k"
  journal serve`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVarP(&a.configDir, "config", "c", "./configs", "directory holding config.yml")
	root.PersistentFlags().StringVar(&a.dsn, "db", "", "SQLite database path (overrides database.dsn)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides logger.level)")

	root.AddCommand(
		newStatsCmd(a),
		newReportCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newValidateCmd(a),
		newAccountsCmd(a),
		newSeedCmd(a),
		newServeCmd(a),
	)
	return root
}
