package api

import (
	"context"
	"errors"
	"go.uber.org/zap"
	"net/http"
	"strconv"
	"tradesync/internal/events"
	"tradesync/internal/journal"
	"tradesync/internal/report"
	"tradesync/internal/risk"
	"tradesync/internal/stats"
	"tradesync/internal/store"
)

type tradeListResponse struct {
	report.Result
	Summary     stats.Summary        `json:"summary"`
	QuickCounts map[report.Quick]int `json:"quick_counts"`
	Facets      report.Facets        `json:"facets"`
}

type tradeResponse struct {
	Trade      journal.Trade `json:"trade"`
	Validation risk.Result   `json:"validation"`
}

type rejectedResponse struct {
	Error      string      `json:"error"`
	Validation risk.Result `json:"validation"`
}

type previewResponse struct {
	Metrics         journal.Metrics   `json:"metrics"`
	RewardRiskRatio float64           `json:"reward_risk_ratio"`
	Validation      risk.Result       `json:"validation"`
	Position        *journal.Position `json:"suggested_position,omitempty"`
}

// ListTradesHandler returns one page of the filtered, sorted trades along with the
// summary of the whole filtered set.
func (h *APIHandler) ListTradesHandler(w http.ResponseWriter, r *http.Request) {
	lq, err := h.parseListQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trades, err := h.store.ListTrades(r.Context())
	if err != nil {
		h.storeError(w, "trades", err)
		return
	}

	h.writeJSON(w, http.StatusOK, tradeListResponse{
		Result:      report.FilterSortPage(trades, lq.filter, lq.sort, lq.page),
		Summary:     stats.Aggregate(stats.Chronological(report.Apply(trades, lq.filter))),
		QuickCounts: report.QuickCounts(trades, lq.filter),
		Facets:      report.CollectFacets(trades),
	})
}

// GetTradeHandler returns a single trade.
func (h *APIHandler) GetTradeHandler(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTrade(r.Context(), r.PathValue("id"))
	if err != nil {
		h.storeError(w, "trade", err)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

// CreateTradeHandler logs a trade. It is rejected with 422 when the risk rules block it.
func (h *APIHandler) CreateTradeHandler(w http.ResponseWriter, r *http.Request) {
	t, acct, ok := h.readTrade(w, r, "")
	if !ok {
		return
	}
	t.ID = ""
	res := h.validator.Validate(t, acct)
	if res.Blocked() {
		h.writeJSON(w, http.StatusUnprocessableEntity, rejectedResponse{Error: "trade rejected by risk rules", Validation: res})
		return
	}

	created, err := h.store.CreateTrade(r.Context(), t)
	if err != nil {
		h.storeError(w, "trade", err)
		return
	}
	h.log.Info("Trade logged",
		zap.String("id", created.ID),
		zap.String("instrument", created.Instrument),
		zap.Float64("pnl", created.PnL),
		zap.String("risk_status", res.Status.String()))
	h.tradesChanged(r.Context(), "created", created.ID)
	h.writeJSON(w, http.StatusCreated, tradeResponse{Trade: created, Validation: res})
}

// ReplaceTradeHandler overwrites a trade with the submitted one, under the same rules
// as a new trade.
func (h *APIHandler) ReplaceTradeHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, acct, ok := h.readTrade(w, r, id)
	if !ok {
		return
	}
	res := h.validator.Validate(t, acct)
	if res.Blocked() {
		h.writeJSON(w, http.StatusUnprocessableEntity, rejectedResponse{Error: "trade rejected by risk rules", Validation: res})
		return
	}

	replaced, err := h.store.ReplaceTrade(r.Context(), id, t)
	if err != nil {
		h.storeError(w, "trade", err)
		return
	}
	h.tradesChanged(r.Context(), "replaced", id)
	h.writeJSON(w, http.StatusOK, tradeResponse{Trade: replaced, Validation: res})
}

// DeleteTradeHandler removes a trade.
func (h *APIHandler) DeleteTradeHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteTrade(r.Context(), id); err != nil {
		h.storeError(w, "trade", err)
		return
	}
	h.tradesChanged(r.Context(), "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// ValidateTradeHandler previews the metrics and risk findings of a trade form without
// storing anything. Incomplete forms are accepted.
func (h *APIHandler) ValidateTradeHandler(w http.ResponseWriter, r *http.Request) {
	var raw journal.RawTrade
	if err := decodeBody(r, &raw); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t := journal.Normalize(raw)
	acct, err := h.accountSnapshot(r.Context(), t.Account, t.ID)
	if err != nil {
		h.storeError(w, "account", err)
		return
	}

	resp := previewResponse{
		Metrics:         journal.ComputeMetrics(t),
		RewardRiskRatio: journal.RewardRiskRatio(t.PnL, t.RiskAmount),
		Validation:      h.validator.Validate(t, acct),
	}
	if acct != nil && t.StopLoss != nil {
		riskPct := 1.0
		if s := r.URL.Query().Get("risk_pct"); s != "" {
			if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
				riskPct = v
			}
		}
		pos := journal.OptimalPosition(t.EntryPrice, *t.StopLoss, acct.InitialBalance, riskPct)
		resp.Position = &pos
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ExportHandler writes the filtered, sorted trades as CSV.
func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	lq, err := h.parseListQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trades, err := h.store.ListTrades(r.Context())
	if err != nil {
		h.storeError(w, "trades", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trades.csv"`)
	if err := report.WriteCSV(w, report.Order(report.Apply(trades, lq.filter), lq.sort)); err != nil {
		h.log.Error("Failed to write CSV export", zap.Error(err))
	}
}

// readTrade decodes and strictly parses the request body and loads the account the
// trade is attributed to. A missing date defaults to today. On failure the response
// has been written and ok is false.
func (h *APIHandler) readTrade(w http.ResponseWriter, r *http.Request, replacing string) (journal.Trade, *journal.Account, bool) {
	var raw journal.RawTrade
	if err := decodeBody(r, &raw); err != nil || raw == nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return journal.Trade{}, nil, false
	}
	if !raw.Has("date") && !raw.Has("entry_datetime") {
		raw["date"] = h.now().Format(journal.DateLayout)
	}

	t, err := journal.Parse(raw)
	if err != nil {
		var fe *journal.FieldError
		if errors.As(err, &fe) {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fe.Error(), Field: fe.Field})
		} else {
			h.writeError(w, http.StatusBadRequest, err.Error())
		}
		return journal.Trade{}, nil, false
	}

	acct, err := h.accountSnapshot(r.Context(), t.Account, replacing)
	if err != nil {
		h.storeError(w, "account", err)
		return journal.Trade{}, nil, false
	}
	return t, acct, true
}

// accountSnapshot returns the referenced account with its figures recomputed as of
// now, leaving out the trade being replaced. An unknown account yields nil so the
// capital rules are skipped.
func (h *APIHandler) accountSnapshot(ctx context.Context, ref, exclude string) (*journal.Account, error) {
	if ref == "" {
		return nil, nil
	}
	acct, err := h.store.FindAccount(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	trades, err := h.store.ListTrades(ctx)
	if err != nil {
		return nil, err
	}
	if exclude != "" {
		kept := trades[:0]
		for _, t := range trades {
			if t.ID != exclude {
				kept = append(kept, t)
			}
		}
		trades = kept
	}
	acct = stats.AccountMetrics(acct, trades, h.now())
	return &acct, nil
}

// tradesChanged refreshes the stored account figures and tells connected views.
func (h *APIHandler) tradesChanged(ctx context.Context, action, id string) {
	h.bus.PublishChange(events.TradesChanged, action, id)
	if _, err := h.store.RefreshAccounts(ctx, h.now()); err != nil {
		h.log.Error("Failed to refresh account metrics", zap.Error(err))
		return
	}
	h.bus.PublishChange(events.AccountsChanged, "refreshed", "")
}
