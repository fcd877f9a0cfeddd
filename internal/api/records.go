package api

import (
	"errors"
	"go.uber.org/zap"
	"net/http"
	"strings"
	"tradesync/internal/events"
	"tradesync/internal/journal"
	"tradesync/internal/quotes"
	"tradesync/internal/risk"
	"tradesync/internal/stats"
)

type accountView struct {
	journal.Account
	CurrentBalance float64     `json:"current_balance"`
	RiskStatus     risk.Status `json:"risk_status"`
}

func viewAccount(a journal.Account) accountView {
	return accountView{Account: a, CurrentBalance: a.CurrentBalance(), RiskStatus: risk.AccountStatus(a.Metrics)}
}

// ListAccountsHandler returns every account with its figures recomputed as of today.
func (h *APIHandler) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.RefreshAccounts(r.Context(), h.now())
	if err != nil {
		h.storeError(w, "accounts", err)
		return
	}
	out := make([]accountView, len(accounts))
	for i, a := range accounts {
		out[i] = viewAccount(a)
	}
	h.writeJSON(w, http.StatusOK, out)
}

// GetAccountHandler returns one account, looked up by ID or name.
func (h *APIHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	acct, err := h.accountSnapshot(r.Context(), r.PathValue("id"), "")
	if err != nil {
		h.storeError(w, "account", err)
		return
	}
	if acct == nil {
		h.writeError(w, http.StatusNotFound, "account not found")
		return
	}
	h.writeJSON(w, http.StatusOK, viewAccount(*acct))
}

// CreateAccountHandler adds a prop-firm account. Missing capital and drawdown limits
// take the journal defaults.
func (h *APIHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req journal.Account
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required", Field: "name"})
		return
	}
	if _, err := h.store.FindAccount(r.Context(), req.Name); err == nil {
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: "an account with this name already exists", Field: "name"})
		return
	}

	acct, err := h.store.CreateAccount(r.Context(), req)
	if err != nil {
		h.storeError(w, "account", err)
		return
	}
	h.log.Info("Account created", zap.String("id", acct.ID), zap.String("name", acct.Name))
	h.bus.PublishChange(events.AccountsChanged, "created", acct.ID)
	h.writeJSON(w, http.StatusCreated, viewAccount(acct))
}

// ListStrategiesHandler returns every strategy with its performance derived from the
// trades tagged with it.
func (h *APIHandler) ListStrategiesHandler(w http.ResponseWriter, r *http.Request) {
	strategies, err := h.store.ListStrategies(r.Context())
	if err != nil {
		h.storeError(w, "strategies", err)
		return
	}
	trades, err := h.store.ListTrades(r.Context())
	if err != nil {
		h.storeError(w, "trades", err)
		return
	}
	trades = stats.Chronological(trades)

	out := make([]stats.StrategyReport, len(strategies))
	for i, s := range strategies {
		rep := stats.StrategyPerformance(s, trades, journal.DefaultCapital, recentTrades)
		rep.Rating = string(risk.StrategyRating(rep.Performance.WinRate, rep.Performance.ProfitFactor, rep.MaxDrawdownPct))
		out[i] = rep
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) decodeStrategy(w http.ResponseWriter, r *http.Request) (journal.Strategy, bool) {
	var s journal.Strategy
	if err := decodeBody(r, &s); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return s, false
	}
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required", Field: "name"})
		return s, false
	}
	return s, true
}

// CreateStrategyHandler adds a strategy.
func (h *APIHandler) CreateStrategyHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.decodeStrategy(w, r)
	if !ok {
		return
	}
	s.ID = ""
	created, err := h.store.CreateStrategy(r.Context(), s)
	if err != nil {
		h.storeError(w, "strategy", err)
		return
	}
	h.bus.PublishChange(events.StrategiesChanged, "created", created.ID)
	h.writeJSON(w, http.StatusCreated, created)
}

// UpdateStrategyHandler overwrites a strategy.
func (h *APIHandler) UpdateStrategyHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.decodeStrategy(w, r)
	if !ok {
		return
	}
	s.ID = r.PathValue("id")
	updated, err := h.store.UpdateStrategy(r.Context(), s)
	if err != nil {
		h.storeError(w, "strategy", err)
		return
	}
	h.bus.PublishChange(events.StrategiesChanged, "updated", updated.ID)
	h.writeJSON(w, http.StatusOK, updated)
}

// DeleteStrategyHandler removes a strategy; its trades keep their tag.
func (h *APIHandler) DeleteStrategyHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteStrategy(r.Context(), id); err != nil {
		h.storeError(w, "strategy", err)
		return
	}
	h.bus.PublishChange(events.StrategiesChanged, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// biasRequest and noteRequest accept plain dates such as 2024-03-11.
type biasRequest struct {
	journal.WeeklyBias
	WeekStart string `json:"week_start_date"`
	WeekEnd   string `json:"week_end_date"`
}

type noteRequest struct {
	journal.Note
	Date string `json:"date"`
}

// ListBiasHandler returns weekly biases, optionally for one week and pair.
func (h *APIHandler) ListBiasHandler(w http.ResponseWriter, r *http.Request) {
	week, err := dateParam(r.URL.Query(), "week_start")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	biases, err := h.store.ListBiases(r.Context(), week, r.URL.Query().Get("pair"))
	if err != nil {
		h.storeError(w, "weekly bias", err)
		return
	}
	h.writeJSON(w, http.StatusOK, biases)
}

// SaveBiasHandler creates a weekly bias, or overwrites it when the body carries an ID.
func (h *APIHandler) SaveBiasHandler(w http.ResponseWriter, r *http.Request) {
	var req biasRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b := req.WeeklyBias
	b.WeekStart, _ = journal.ParseTime(req.WeekStart)
	b.WeekEnd, _ = journal.ParseTime(req.WeekEnd)
	if b.Pair == "" || b.WeekStart.IsZero() {
		h.writeError(w, http.StatusBadRequest, "pair and week_start_date are required")
		return
	}
	if b.WeekEnd.IsZero() {
		b.WeekEnd = journal.CalendarDay(b.WeekStart).AddDate(0, 0, 4)
	}
	saved, err := h.store.SaveBias(r.Context(), b)
	if err != nil {
		h.storeError(w, "weekly bias", err)
		return
	}
	h.bus.PublishChange(events.BiasChanged, "saved", saved.ID)
	h.writeJSON(w, http.StatusOK, saved)
}

// DeleteBiasHandler removes a weekly bias.
func (h *APIHandler) DeleteBiasHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteBias(r.Context(), id); err != nil {
		h.storeError(w, "weekly bias", err)
		return
	}
	h.bus.PublishChange(events.BiasChanged, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListNotesHandler returns the notes of ?date=, or every note.
func (h *APIHandler) ListNotesHandler(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r.URL.Query(), "date")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	notes, err := h.store.ListNotes(r.Context(), day)
	if err != nil {
		h.storeError(w, "notes", err)
		return
	}
	h.writeJSON(w, http.StatusOK, notes)
}

// SaveNoteHandler creates a note, or overwrites it when the body carries an ID. The
// date defaults to today.
func (h *APIHandler) SaveNoteHandler(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	n := req.Note
	n.Date, _ = journal.ParseTime(req.Date)
	if strings.TrimSpace(n.Content) == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "content is required", Field: "content"})
		return
	}
	if n.Date.IsZero() {
		n.Date = journal.CalendarDay(h.now())
	}
	saved, err := h.store.SaveNote(r.Context(), n)
	if err != nil {
		h.storeError(w, "note", err)
		return
	}
	h.bus.PublishChange(events.NotesChanged, "saved", saved.ID)
	h.writeJSON(w, http.StatusOK, saved)
}

// LivePriceHandler returns the current quote of an instrument.
func (h *APIHandler) LivePriceHandler(w http.ResponseWriter, r *http.Request) {
	if h.quotes == nil {
		h.writeError(w, http.StatusServiceUnavailable, quotes.ErrNotConfigured.Error())
		return
	}
	q, err := h.quotes.LivePrice(r.Context(), r.PathValue("instrument"))
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, q)
	case errors.Is(err, quotes.ErrNotConfigured):
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, quotes.ErrNoQuote):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Warn("Live price lookup failed", zap.String("instrument", r.PathValue("instrument")), zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "quote provider unavailable")
	}
}

