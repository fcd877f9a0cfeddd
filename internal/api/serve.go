package api

import (
	"context"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"time"
	"tradesync/internal/config"
	"tradesync/internal/events"
	"tradesync/internal/quotes"
	"tradesync/internal/risk"
	"tradesync/internal/store"
)

// shutdownTimeout bounds how long in-flight requests may take once ctx is cancelled.
const shutdownTimeout = 10 * time.Second

// Serve wires the store, validator, quote poller and websocket hub behind the API
// server and blocks until ctx is cancelled.
func Serve(ctx context.Context, cfg config.Config, log *zap.Logger, db *gorm.DB) error {
	st := store.New(db, log.Named("store"))
	validator := risk.NewValidator(risk.Thresholds{
		MaxRiskPct:          cfg.Risk.MaxRiskPct,
		WarnRiskPct:         cfg.Risk.WarnRiskPct,
		DailyBudgetFraction: cfg.Risk.DailyBudgetFraction,
		MinRMultiple:        cfg.Risk.MinRMultiple,
	})

	bus := events.NewBus()
	hub := events.NewHub(log, cfg.Server.AllowedOrigin)
	hub.Attach(bus)
	go hub.Run(ctx)

	quoteClient := quotes.NewClient(&cfg.Quotes, log.Named("quotes"))
	if quoteClient.Configured() {
		poller := quotes.NewPoller(quoteClient, bus, cfg.Quotes.Instruments, cfg.Quotes.PollInterval, log)
		go poller.Run(ctx)
	}

	handler := NewAPIHandler(log, st, validator, quoteClient, bus, cfg.Reports.PageSize)
	server := NewAPIServer(cfg.Server, handler.Routes(hub), log)
	server.Start()

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Stop(stopCtx)
}
