package store

import (
	"encoding/json"
	"gorm.io/datatypes"
	"time"
	"tradesync/internal/journal"
	"tradesync/internal/models"
)

func toJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}

// fromJSON decodes a JSON column. Unreadable values decode to the zero value so one
// bad row never hides the rest of the journal.
func fromJSON[T any](j datatypes.JSON) T {
	var v T
	if len(j) > 0 {
		_ = json.Unmarshal(j, &v)
	}
	return v
}

func dateOf(t time.Time) datatypes.Date {
	return datatypes.Date(journal.CalendarDay(t))
}

func timeOf(d datatypes.Date) time.Time {
	t := time.Time(d)
	if t.IsZero() {
		return t
	}
	return journal.CalendarDay(t)
}

func tradeRecord(t journal.Trade) models.Trade {
	t = journal.Derive(t)
	return models.Trade{
		ID:             t.ID,
		Date:           dateOf(t.Date),
		EntryTime:      t.EntryTime,
		ExitTime:       t.ExitTime,
		Instrument:     t.Instrument,
		Direction:      string(t.Direction),
		EntryPrice:     t.EntryPrice,
		ExitPrice:      t.ExitPrice,
		Size:           t.Size,
		Fees:           t.Fees,
		Account:        t.Account,
		StopLoss:       t.StopLoss,
		TakeProfit:     t.TakeProfit,
		RiskAmount:     t.RiskAmount,
		StrategyTag:    t.StrategyTag,
		TradeType:      t.TradeType,
		Timeframe:      t.Timeframe,
		Rationale:      t.Rationale,
		Tags:           toJSON(t.Tags),
		PreEmotion:     t.PreEmotion,
		PostReflection: t.PostReflection,
		RulesFollowed:  toJSON(t.RulesFollowed),
		Screenshots:    toJSON(t.Screenshots),
		PnL:            t.PnL,
		RMultiple:      t.RMultiple,
	}
}

// toTrade never trusts the stored pnl and r_multiple columns.
func toTrade(r models.Trade) journal.Trade {
	return journal.Derive(journal.Trade{
		ID:             r.ID,
		Date:           timeOf(r.Date),
		EntryTime:      r.EntryTime,
		ExitTime:       r.ExitTime,
		Instrument:     r.Instrument,
		Direction:      journal.ParseDirection(r.Direction),
		EntryPrice:     r.EntryPrice,
		ExitPrice:      r.ExitPrice,
		Size:           r.Size,
		Fees:           r.Fees,
		Account:        r.Account,
		StopLoss:       r.StopLoss,
		TakeProfit:     r.TakeProfit,
		RiskAmount:     r.RiskAmount,
		StrategyTag:    r.StrategyTag,
		TradeType:      r.TradeType,
		Timeframe:      r.Timeframe,
		Rationale:      r.Rationale,
		Tags:           fromJSON[[]string](r.Tags),
		PreEmotion:     r.PreEmotion,
		PostReflection: r.PostReflection,
		RulesFollowed:  fromJSON[[]string](r.RulesFollowed),
		Screenshots:    fromJSON[[]journal.Screenshot](r.Screenshots),
	})
}

func accountRecord(a journal.Account) models.Account {
	return models.Account{
		ID:                    a.ID,
		Name:                  a.Name,
		PropFirm:              a.PropFirm,
		Phase:                 a.Phase,
		Status:                a.Status,
		InitialBalance:        a.InitialBalance,
		DailyPnL:              a.DailyPnL,
		TotalPnL:              a.TotalPnL,
		TradingDays:           a.TradingDays,
		MinTradingDays:        a.Rules.MinTradingDays,
		ProfitTarget:          a.Rules.ProfitTarget,
		MaxDailyDrawdownPct:   a.Rules.MaxDailyDrawdownPct,
		MaxTotalDrawdownPct:   a.Rules.MaxTotalDrawdownPct,
		WeekendHoldingAllowed: a.Rules.WeekendHoldingAllowed,
		NewsTradingAllowed:    a.Rules.NewsTradingAllowed,
		CreatedAt:             a.CreatedAt,
	}
}

func toAccount(r models.Account) journal.Account {
	return journal.Account{
		ID:             r.ID,
		Name:           r.Name,
		PropFirm:       r.PropFirm,
		Phase:          r.Phase,
		Status:         r.Status,
		InitialBalance: r.InitialBalance,
		DailyPnL:       r.DailyPnL,
		TotalPnL:       r.TotalPnL,
		TradingDays:    r.TradingDays,
		Rules: journal.AccountRules{
			MinTradingDays:        r.MinTradingDays,
			ProfitTarget:          r.ProfitTarget,
			MaxDailyDrawdownPct:   r.MaxDailyDrawdownPct,
			MaxTotalDrawdownPct:   r.MaxTotalDrawdownPct,
			WeekendHoldingAllowed: r.WeekendHoldingAllowed,
			NewsTradingAllowed:    r.NewsTradingAllowed,
		},
		CreatedAt: r.CreatedAt,
	}
}

func strategyRecord(s journal.Strategy) models.Strategy {
	r := models.Strategy{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Rules:       toJSON(s.Rules),
		Tags:        toJSON(s.Tags),
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
	if !s.LastUsed.IsZero() {
		lastUsed := s.LastUsed
		r.LastUsed = &lastUsed
	}
	return r
}

func toStrategy(r models.Strategy) journal.Strategy {
	s := journal.Strategy{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Rules:       fromJSON[[]string](r.Rules),
		Tags:        fromJSON[[]string](r.Tags),
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
	}
	if r.LastUsed != nil {
		s.LastUsed = *r.LastUsed
	}
	return s
}

func biasRecord(b journal.WeeklyBias) models.WeeklyBias {
	return models.WeeklyBias{
		ID:                    b.ID,
		WeekStart:             dateOf(b.WeekStart),
		WeekEnd:               dateOf(b.WeekEnd),
		Pair:                  b.Pair,
		OverallBias:           b.OverallBias,
		Confidence:            b.Confidence,
		ExpectingScenarios:    toJSON(b.ExpectingScenarios),
		NotExpectingScenarios: toJSON(b.NotExpectingScenarios),
		BiasPoints:            toJSON(b.BiasPoints),
		Arguments:             toJSON(b.Arguments),
		KeyLevels:             toJSON(b.KeyLevels),
		HigherTimeframe:       b.HigherTimeframe,
		DailyBias:             b.DailyBias,
		SessionPlan:           b.SessionPlan,
		TradePlan:             b.TradePlan,
		Screenshots:           toJSON(b.Screenshots),
	}
}

func toBias(r models.WeeklyBias) journal.WeeklyBias {
	return journal.WeeklyBias{
		ID:                    r.ID,
		WeekStart:             timeOf(r.WeekStart),
		WeekEnd:               timeOf(r.WeekEnd),
		Pair:                  r.Pair,
		OverallBias:           r.OverallBias,
		Confidence:            r.Confidence,
		ExpectingScenarios:    fromJSON[[]string](r.ExpectingScenarios),
		NotExpectingScenarios: fromJSON[[]string](r.NotExpectingScenarios),
		BiasPoints:            fromJSON[[]journal.BiasPoint](r.BiasPoints),
		Arguments:             fromJSON[[]journal.BiasArgument](r.Arguments),
		KeyLevels:             fromJSON[[]string](r.KeyLevels),
		HigherTimeframe:       r.HigherTimeframe,
		DailyBias:             r.DailyBias,
		SessionPlan:           r.SessionPlan,
		TradePlan:             r.TradePlan,
		Screenshots:           fromJSON[[]journal.Screenshot](r.Screenshots),
	}
}
