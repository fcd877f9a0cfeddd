package api

import (
	"context"
	"errors"
	"net/http"
	"time"
	"tradesync/internal/journal"
	"tradesync/internal/stats"
	"tradesync/internal/store"
)

// StatsDetail holds calculated statistics for a given period.
type StatsDetail struct {
	TotalTrades      int     `json:"total_trades"`
	ProfitableTrades int     `json:"profitable_trades"`
	WinRate          float64 `json:"win_rate"`
	TotalProfit      float64 `json:"total_profit"`
	AverageRMultiple float64 `json:"average_r_multiple"`
}

// StatisticsResponse is the structure for the /api/statistics endpoint.
type StatisticsResponse struct {
	Since24h StatsDetail `json:"since_24h"`
	AllTime  StatsDetail `json:"all_time"`
}

type analyticsResponse struct {
	Timeframe     string            `json:"timeframe"`
	Account       string            `json:"account,omitempty"`
	Summary       stats.Summary     `json:"summary"`
	Daily         []stats.DayStat   `json:"daily"`
	DailySummary  stats.DailySeries `json:"daily_summary"`
	Drawdown      stats.Drawdown    `json:"drawdown"`
	ByStrategy    []stats.Group     `json:"by_strategy"`
	ByInstrument  []stats.Group     `json:"by_instrument"`
	ByHour        []stats.Group     `json:"by_hour"`
	ByEmotion     []stats.Group     `json:"by_emotion"`
	ByDirection   []stats.Group     `json:"by_direction"`
	RDistribution []stats.Bucket    `json:"r_distribution"`
}

type calendarResponse struct {
	Month   string            `json:"month"`
	Days    []stats.DayStat   `json:"days"`
	Summary stats.DailySeries `json:"summary"`
}

func detail(s stats.Summary) StatsDetail {
	return StatsDetail{
		TotalTrades:      s.TotalTrades,
		ProfitableTrades: s.WinningTrades,
		WinRate:          s.WinRate,
		TotalProfit:      s.TotalPnL,
		AverageRMultiple: s.AverageRMultiple,
	}
}

// closedAt is the most precise time known for a trade.
func closedAt(t journal.Trade) time.Time {
	switch {
	case t.ExitTime != nil:
		return *t.ExitTime
	case t.EntryTime != nil:
		return *t.EntryTime
	}
	return t.Date
}

// StatisticsHandler returns the headline figures of the last 24 hours and of all time.
func (h *APIHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.store.ListTrades(r.Context())
	if err != nil {
		h.storeError(w, "trades", err)
		return
	}
	trades = stats.Chronological(trades)

	since24h := h.now().Add(-24 * time.Hour)
	var recent []journal.Trade
	for _, t := range trades {
		if closedAt(t).After(since24h) {
			recent = append(recent, t)
		}
	}

	h.writeJSON(w, http.StatusOK, StatisticsResponse{
		Since24h: detail(stats.Aggregate(recent)),
		AllTime:  detail(stats.Aggregate(trades)),
	})
}

// AnalyticsHandler returns every analytics figure for a timeframe, optionally scoped
// to one account.
func (h *APIHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	timeframe := r.URL.Query().Get("timeframe")
	since, err := stats.TimeframeStart(h.now(), timeframe)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trades, capital, err := h.accountTrades(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		h.storeError(w, "account", err)
		return
	}
	trades = stats.Chronological(stats.Window(trades, since))

	daily := stats.Daily(trades)
	if timeframe == "" {
		timeframe = "all"
	}
	h.writeJSON(w, http.StatusOK, analyticsResponse{
		Timeframe:     timeframe,
		Account:       r.URL.Query().Get("account"),
		Summary:       stats.Aggregate(trades),
		Daily:         daily,
		DailySummary:  stats.DailySummary(daily),
		Drawdown:      stats.MaxDrawdown(capital, trades),
		ByStrategy:    stats.GroupBy(trades, stats.ByStrategy),
		ByInstrument:  stats.GroupBy(trades, stats.ByInstrument),
		ByHour:        stats.GroupBy(trades, stats.ByHour),
		ByEmotion:     stats.GroupBy(trades, stats.ByEmotion),
		ByDirection:   stats.GroupBy(trades, stats.ByDirection),
		RDistribution: stats.RDistribution(trades),
	})
}

// CalendarHandler returns the per-day results of one month, the current one by default.
func (h *APIHandler) CalendarHandler(w http.ResponseWriter, r *http.Request) {
	month := journal.CalendarDay(h.now())
	if s := r.URL.Query().Get("month"); s != "" {
		m, err := time.Parse("2006-01", s)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "month must look like 2006-01")
			return
		}
		month = m
	}

	trades, _, err := h.accountTrades(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		h.storeError(w, "account", err)
		return
	}
	days := stats.Calendar(trades, month.Year(), month.Month())
	if days == nil {
		days = []stats.DayStat{}
	}
	h.writeJSON(w, http.StatusOK, calendarResponse{
		Month:   month.Format("2006-01"),
		Days:    days,
		Summary: stats.DailySummary(days),
	})
}

// accountTrades returns the trades of ref, or all trades when ref is empty, with the
// starting capital drawdown is measured against. A ref that names no stored account
// matches trades by their account label.
func (h *APIHandler) accountTrades(ctx context.Context, ref string) ([]journal.Trade, float64, error) {
	trades, err := h.store.ListTrades(ctx)
	if err != nil || ref == "" {
		return trades, journal.DefaultCapital, err
	}

	acct, err := h.store.FindAccount(ctx, ref)
	switch {
	case errors.Is(err, store.ErrNotFound):
		acct = journal.Account{Name: ref, InitialBalance: journal.DefaultCapital}
	case err != nil:
		return nil, 0, err
	}

	var out []journal.Trade
	for _, t := range trades {
		if stats.BelongsTo(t, acct) {
			out = append(out, t)
		}
	}
	return out, acct.InitialBalance, nil
}
