package api

import (
	"go.uber.org/zap"
	"net/http"
	"time"
	"tradesync/internal/events"
	"tradesync/internal/quotes"
	"tradesync/internal/report"
	"tradesync/internal/risk"
	"tradesync/internal/store"
)

// recentTrades is how many trades a strategy report lists.
const recentTrades = 5

// APIHandler holds dependencies for the API endpoints. Every request loads its own
// snapshot from the store before computing anything.
type APIHandler struct {
	log       *zap.Logger
	store     *store.Store
	validator *risk.Validator
	quotes    quotes.ClientInterface
	bus       *events.Bus
	pageSize  int
	now       func() time.Time
}

// NewAPIHandler creates a new APIHandler. quotes and bus may be nil.
func NewAPIHandler(log *zap.Logger, st *store.Store, validator *risk.Validator, q quotes.ClientInterface, bus *events.Bus, pageSize int) *APIHandler {
	if validator == nil {
		validator = risk.NewValidator(risk.DefaultThresholds)
	}
	if pageSize <= 0 {
		pageSize = report.DefaultPageSize
	}
	return &APIHandler{
		log:       log.Named("api"),
		store:     st,
		validator: validator,
		quotes:    q,
		bus:       bus,
		pageSize:  pageSize,
		now:       time.Now,
	}
}

// Routes registers every endpoint. ws, when not nil, is mounted at /ws.
func (h *APIHandler) Routes(ws http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.HealthHandler)

	mux.HandleFunc("GET /api/trades", h.ListTradesHandler)
	mux.HandleFunc("POST /api/trades", h.CreateTradeHandler)
	mux.HandleFunc("POST /api/trades/validate", h.ValidateTradeHandler)
	mux.HandleFunc("GET /api/trades/{id}", h.GetTradeHandler)
	mux.HandleFunc("PUT /api/trades/{id}", h.ReplaceTradeHandler)
	mux.HandleFunc("DELETE /api/trades/{id}", h.DeleteTradeHandler)
	mux.HandleFunc("GET /api/export.csv", h.ExportHandler)

	mux.HandleFunc("GET /api/statistics", h.StatisticsHandler)
	mux.HandleFunc("GET /api/analytics", h.AnalyticsHandler)
	mux.HandleFunc("GET /api/calendar", h.CalendarHandler)

	mux.HandleFunc("GET /api/accounts", h.ListAccountsHandler)
	mux.HandleFunc("POST /api/accounts", h.CreateAccountHandler)
	mux.HandleFunc("GET /api/accounts/{id}", h.GetAccountHandler)

	mux.HandleFunc("GET /api/strategies", h.ListStrategiesHandler)
	mux.HandleFunc("POST /api/strategies", h.CreateStrategyHandler)
	mux.HandleFunc("PUT /api/strategies/{id}", h.UpdateStrategyHandler)
	mux.HandleFunc("DELETE /api/strategies/{id}", h.DeleteStrategyHandler)

	mux.HandleFunc("GET /api/weekly-bias", h.ListBiasHandler)
	mux.HandleFunc("POST /api/weekly-bias", h.SaveBiasHandler)
	mux.HandleFunc("DELETE /api/weekly-bias/{id}", h.DeleteBiasHandler)

	mux.HandleFunc("GET /api/notes", h.ListNotesHandler)
	mux.HandleFunc("POST /api/notes", h.SaveNoteHandler)

	mux.HandleFunc("GET /api/live-price/{instrument}", h.LivePriceHandler)

	if ws != nil {
		mux.Handle("GET /ws", ws)
	}
	return mux
}

// HealthHandler reports that the server is up.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
