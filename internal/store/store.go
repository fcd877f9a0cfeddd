// Package store persists the journal in a gorm database and hands out snapshots of
// it as journal values.
package store

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"time"
	"tradesync/internal/ids"
	"tradesync/internal/journal"
	"tradesync/internal/models"
	"tradesync/internal/stats"
)

// ErrNotFound is returned when a record with the requested key does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the journal's persistence layer.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// New returns a Store on an already migrated database.
func New(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ListTrades returns every trade, most recent first.
func (s *Store) ListTrades(ctx context.Context) ([]journal.Trade, error) {
	return s.listTrades(ctx, s.db.WithContext(ctx))
}

// ListTradesByAccount returns the trades attributed to the named account.
func (s *Store) ListTradesByAccount(ctx context.Context, account string) ([]journal.Trade, error) {
	return s.listTrades(ctx, s.db.WithContext(ctx).Where("account = ?", account))
}

func (s *Store) listTrades(_ context.Context, q *gorm.DB) ([]journal.Trade, error) {
	var rows []models.Trade
	if err := q.Order("date desc").Order("id desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("could not list trades: %w", err)
	}
	trades := make([]journal.Trade, len(rows))
	for i, r := range rows {
		trades[i] = toTrade(r)
	}
	return trades, nil
}

// GetTrade loads one trade.
func (s *Store) GetTrade(ctx context.Context, id string) (journal.Trade, error) {
	var row models.Trade
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return journal.Trade{}, fmt.Errorf("could not get trade %s: %w", id, notFound(err))
	}
	return toTrade(row), nil
}

// CreateTrade stores t, assigning an ID when it has none, and returns it as stored.
func (s *Store) CreateTrade(ctx context.Context, t journal.Trade) (journal.Trade, error) {
	if t.ID == "" {
		t.ID = ids.At(tradeTime(t))
	}
	row := tradeRecord(t)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return journal.Trade{}, fmt.Errorf("could not create trade: %w", err)
	}
	s.log.Debug("Trade stored", zap.String("id", row.ID), zap.String("instrument", row.Instrument), zap.Float64("pnl", row.PnL))
	return toTrade(row), nil
}

// CreateTrades stores a batch in one transaction. Nothing is stored if any insert fails.
func (s *Store) CreateTrades(ctx context.Context, trades []journal.Trade) ([]journal.Trade, error) {
	out := make([]journal.Trade, 0, len(trades))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range trades {
			if t.ID == "" {
				t.ID = ids.At(tradeTime(t))
			}
			row := tradeRecord(t)
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("could not create trade %s: %w", row.ID, err)
			}
			out = append(out, toTrade(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func tradeTime(t journal.Trade) time.Time {
	if t.EntryTime != nil {
		return *t.EntryTime
	}
	if !t.Date.IsZero() {
		return t.Date
	}
	return time.Now()
}

// ReplaceTrade overwrites the trade with the given ID.
func (s *Store) ReplaceTrade(ctx context.Context, id string, t journal.Trade) (journal.Trade, error) {
	var existing models.Trade
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		return journal.Trade{}, fmt.Errorf("could not replace trade %s: %w", id, notFound(err))
	}
	t.ID = id
	row := tradeRecord(t)
	row.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return journal.Trade{}, fmt.Errorf("could not replace trade %s: %w", id, err)
	}
	return toTrade(row), nil
}

// DeleteTrade removes a trade.
func (s *Store) DeleteTrade(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Trade{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("could not delete trade %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("could not delete trade %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListAccounts returns every account by name.
func (s *Store) ListAccounts(ctx context.Context) ([]journal.Account, error) {
	var rows []models.Account
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("could not list accounts: %w", err)
	}
	accounts := make([]journal.Account, len(rows))
	for i, r := range rows {
		accounts[i] = toAccount(r)
	}
	return accounts, nil
}

// GetAccount loads an account by ID.
func (s *Store) GetAccount(ctx context.Context, id string) (journal.Account, error) {
	var row models.Account
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return journal.Account{}, fmt.Errorf("could not get account %s: %w", id, notFound(err))
	}
	return toAccount(row), nil
}

// FindAccount resolves the account a trade refers to, by ID or by name.
func (s *Store) FindAccount(ctx context.Context, ref string) (journal.Account, error) {
	var row models.Account
	err := s.db.WithContext(ctx).Where("id = ? OR name = ?", ref, ref).First(&row).Error
	if err != nil {
		return journal.Account{}, fmt.Errorf("could not find account %q: %w", ref, notFound(err))
	}
	return toAccount(row), nil
}

// CreateAccount stores a new account with the journal defaults applied.
func (s *Store) CreateAccount(ctx context.Context, a journal.Account) (journal.Account, error) {
	acct := journal.NewAccount(a.Name, a.PropFirm, a.InitialBalance, a.Rules)
	acct.ID = a.ID
	if acct.ID == "" {
		acct.ID = ids.New()
	}
	if a.Phase != "" {
		acct.Phase = a.Phase
	}
	if a.Status != "" {
		acct.Status = a.Status
	}
	row := accountRecord(acct)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return journal.Account{}, fmt.Errorf("could not create account %q: %w", a.Name, err)
	}
	return toAccount(row), nil
}

// RefreshAccounts recomputes every account's P&L figures from its trades as of day,
// persists them and returns the accounts with their metrics.
func (s *Store) RefreshAccounts(ctx context.Context, day time.Time) ([]journal.Account, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	trades, err := s.ListTrades(ctx)
	if err != nil {
		return nil, err
	}

	for i, a := range accounts {
		a = stats.AccountMetrics(a, trades, day)
		accounts[i] = a
		err := s.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", a.ID).Updates(map[string]any{
			"daily_pnl":    a.DailyPnL,
			"total_pnl":    a.TotalPnL,
			"trading_days": a.TradingDays,
		}).Error
		if err != nil {
			return nil, fmt.Errorf("could not update account %s: %w", a.ID, err)
		}
	}
	return accounts, nil
}

// ListStrategies returns every strategy by name.
func (s *Store) ListStrategies(ctx context.Context) ([]journal.Strategy, error) {
	var rows []models.Strategy
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("could not list strategies: %w", err)
	}
	out := make([]journal.Strategy, len(rows))
	for i, r := range rows {
		out[i] = toStrategy(r)
	}
	return out, nil
}

// GetStrategy loads a strategy by ID.
func (s *Store) GetStrategy(ctx context.Context, id string) (journal.Strategy, error) {
	var row models.Strategy
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return journal.Strategy{}, fmt.Errorf("could not get strategy %s: %w", id, notFound(err))
	}
	return toStrategy(row), nil
}

// CreateStrategy stores a new strategy.
func (s *Store) CreateStrategy(ctx context.Context, st journal.Strategy) (journal.Strategy, error) {
	if st.ID == "" {
		st.ID = ids.New()
	}
	row := strategyRecord(st)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return journal.Strategy{}, fmt.Errorf("could not create strategy %q: %w", st.Name, err)
	}
	return toStrategy(row), nil
}

// UpdateStrategy overwrites an existing strategy.
func (s *Store) UpdateStrategy(ctx context.Context, st journal.Strategy) (journal.Strategy, error) {
	existing, err := s.GetStrategy(ctx, st.ID)
	if err != nil {
		return journal.Strategy{}, err
	}
	row := strategyRecord(st)
	row.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return journal.Strategy{}, fmt.Errorf("could not update strategy %s: %w", st.ID, err)
	}
	return toStrategy(row), nil
}

// DeleteStrategy removes a strategy. Trades tagged with it are kept.
func (s *Store) DeleteStrategy(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Strategy{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("could not delete strategy %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("could not delete strategy %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListBiases returns weekly biases, newest week first. A zero week or empty pair
// matches all.
func (s *Store) ListBiases(ctx context.Context, week time.Time, pair string) ([]journal.WeeklyBias, error) {
	q := s.db.WithContext(ctx)
	if !week.IsZero() {
		q = q.Where("week_start = ?", dateOf(week))
	}
	if pair != "" {
		q = q.Where("pair = ?", pair)
	}
	var rows []models.WeeklyBias
	if err := q.Order("week_start desc").Order("pair").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("could not list weekly biases: %w", err)
	}
	out := make([]journal.WeeklyBias, len(rows))
	for i, r := range rows {
		out[i] = toBias(r)
	}
	return out, nil
}

// SaveBias creates or overwrites a weekly bias.
func (s *Store) SaveBias(ctx context.Context, b journal.WeeklyBias) (journal.WeeklyBias, error) {
	if b.ID == "" {
		b.ID = ids.New()
	}
	row := biasRecord(b)
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return journal.WeeklyBias{}, fmt.Errorf("could not save weekly bias for %s: %w", b.Pair, err)
	}
	return toBias(row), nil
}

// DeleteBias removes a weekly bias.
func (s *Store) DeleteBias(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.WeeklyBias{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("could not delete weekly bias %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("could not delete weekly bias %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListNotes returns the notes of day, or all notes for a zero day, newest first.
func (s *Store) ListNotes(ctx context.Context, day time.Time) ([]journal.Note, error) {
	q := s.db.WithContext(ctx)
	if !day.IsZero() {
		q = q.Where("date = ?", dateOf(day))
	}
	var rows []models.Note
	if err := q.Order("date desc").Order("id desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("could not list notes: %w", err)
	}
	out := make([]journal.Note, len(rows))
	for i, r := range rows {
		out[i] = journal.Note{ID: r.ID, Date: timeOf(r.Date), Content: r.Content}
	}
	return out, nil
}

// SaveNote creates or overwrites a note.
func (s *Store) SaveNote(ctx context.Context, n journal.Note) (journal.Note, error) {
	if n.ID == "" {
		n.ID = ids.New()
	}
	row := models.Note{ID: n.ID, Date: dateOf(n.Date), Content: n.Content}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return journal.Note{}, fmt.Errorf("could not save note: %w", err)
	}
	return journal.Note{ID: row.ID, Date: timeOf(row.Date), Content: row.Content}, nil
}
