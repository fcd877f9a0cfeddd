package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawTrade is a trade-like record as it arrives from a form post, a browser storage
// export or an import file. Values may be strings, numbers or absent, and keys may use
// either snake_case or camelCase.
type RawTrade map[string]any

// aliases lists, per canonical key, the spellings accepted at the boundary.
var aliases = map[string][]string{
	"id":              {"id", "trade_id", "tradeId"},
	"date":            {"date", "trade_date", "tradeDate"},
	"entry_datetime":  {"entry_datetime", "entryDatetime", "entry_time", "entryTime"},
	"exit_datetime":   {"exit_datetime", "exitDatetime", "exit_time", "exitTime"},
	"instrument":      {"instrument", "pair", "symbol"},
	"direction":       {"direction", "side"},
	"entry_price":     {"entry_price", "entryPrice"},
	"exit_price":      {"exit_price", "exitPrice"},
	"size":            {"size", "position_size", "positionSize", "quantity"},
	"fees":            {"fees", "fee", "commission"},
	"account":         {"account", "account_name", "accountName"},
	"stop_loss":       {"stop_loss", "stopLoss"},
	"take_profit":     {"take_profit", "takeProfit"},
	"risk_amount":     {"risk_amount", "riskAmount"},
	"strategy_tag":    {"strategy_tag", "strategyTag", "strategy"},
	"trade_type":      {"trade_type", "tradeType"},
	"timeframe":       {"timeframe", "timeframe_analysis", "timeframeAnalysis"},
	"rationale":       {"rationale"},
	"tags":            {"tags"},
	"pre_emotion":     {"pre_emotion", "preEmotion", "emotion"},
	"post_reflection": {"post_reflection", "postReflection"},
	"rules_followed":  {"rules_followed", "rulesFollowed"},
	"screenshots":     {"screenshots"},
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

func (r RawTrade) lookup(key string) (any, bool) {
	for _, k := range aliases[key] {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r RawTrade) str(key string) string {
	v, ok := r.lookup(key)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []any:
		return strings.Join(toStrings(s), ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (r RawTrade) num(key string) float64 {
	v, _ := r.lookup(key)
	return toFloat(v)
}

func (r RawTrade) optNum(key string) *float64 {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil
	}
	f := toFloat(v)
	return &f
}

func (r RawTrade) present(key string) bool {
	v, ok := r.lookup(key)
	if !ok {
		return false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Has reports whether the record carries a non-blank value under any spelling of key.
func (r RawTrade) Has(key string) bool {
	return r.present(key)
}

func toFloat(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		f, _ = n.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toStrings(vals []any) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func splitList(v any) []string {
	switch l := v.(type) {
	case string:
		var out []string
		for _, part := range strings.Split(l, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []string:
		return append([]string(nil), l...)
	case []any:
		return toStrings(l)
	}
	return nil
}

// ParseTime accepts the timestamp layouts produced by forms and exports.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (r RawTrade) timestamp(key string) *time.Time {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return &t
	case string:
		if parsed, ok := ParseTime(t); ok {
			return &parsed
		}
	}
	return nil
}

// CalendarDay truncates t to midnight UTC of its own calendar date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDirection lower-cases a direction and maps buy/sell onto long/short.
// Unknown values are returned lower-cased; an empty value means long.
func ParseDirection(s string) Direction {
	switch d := strings.ToLower(strings.TrimSpace(s)); d {
	case "", "long", "buy":
		return Long
	case "short", "sell":
		return Short
	default:
		return Direction(d)
	}
}

// Normalize converts a raw record into a canonical Trade with PnL and RMultiple
// derived. Malformed or absent numbers become 0; it never fails.
func Normalize(r RawTrade) Trade {
	t := Trade{
		ID:             r.str("id"),
		EntryTime:      r.timestamp("entry_datetime"),
		ExitTime:       r.timestamp("exit_datetime"),
		Instrument:     r.str("instrument"),
		Direction:      ParseDirection(r.str("direction")),
		EntryPrice:     r.num("entry_price"),
		ExitPrice:      r.num("exit_price"),
		Size:           r.num("size"),
		Fees:           r.num("fees"),
		Account:        r.str("account"),
		StopLoss:       r.optNum("stop_loss"),
		TakeProfit:     r.optNum("take_profit"),
		RiskAmount:     r.num("risk_amount"),
		StrategyTag:    r.str("strategy_tag"),
		TradeType:      r.str("trade_type"),
		Timeframe:      r.str("timeframe"),
		Rationale:      r.str("rationale"),
		PreEmotion:     r.str("pre_emotion"),
		PostReflection: r.str("post_reflection"),
	}
	if v, ok := r.lookup("tags"); ok {
		t.Tags = splitList(v)
	}
	if v, ok := r.lookup("rules_followed"); ok {
		t.RulesFollowed = splitList(v)
	}
	if v, ok := r.lookup("screenshots"); ok {
		t.Screenshots = parseScreenshots(v)
	}

	if ts := r.timestamp("date"); ts != nil {
		t.Date = CalendarDay(*ts)
	} else if t.EntryTime != nil {
		t.Date = CalendarDay(*t.EntryTime)
	}

	return Derive(t)
}

func parseScreenshots(v any) []Screenshot {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []Screenshot
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		raw := RawTrade(m)
		url := raw.firstStr("url", "screenshot_url", "screenshotUrl")
		if url == "" {
			continue
		}
		s := Screenshot{
			URL:          url,
			Label:        raw.firstStr("label"),
			OriginalName: raw.firstStr("original_name", "originalName"),
			Size:         int64(toFloat(m["size"])),
		}
		if ts, ok := ParseTime(raw.firstStr("uploaded_at", "uploadedAt")); ok {
			s.UploadedAt = ts
		}
		out = append(out, s)
	}
	return out
}

func (r RawTrade) firstStr(keys ...string) string {
	for _, k := range keys {
		if s, ok := r[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// ErrInvalidTrade is wrapped by every FieldError.
var ErrInvalidTrade = errors.New("invalid trade")

// FieldError reports the first field of a raw trade that failed strict parsing.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidTrade
}

var requiredFields = []string{"instrument", "entry_price", "exit_price", "size", "account"}

// Parse is the strict form of Normalize used before a trade is logged: the required
// fields must be present, the direction known, and size and prices positive.
func Parse(r RawTrade) (Trade, error) {
	for _, f := range requiredFields {
		if !r.present(f) {
			return Trade{}, &FieldError{Field: f, Message: "is required"}
		}
	}
	t := Normalize(r)
	if !t.Direction.Valid() {
		return Trade{}, &FieldError{Field: "direction", Message: fmt.Sprintf("unknown direction %q", t.Direction)}
	}
	if t.EntryPrice <= 0 {
		return Trade{}, &FieldError{Field: "entry_price", Message: "must be a positive number"}
	}
	if t.ExitPrice <= 0 {
		return Trade{}, &FieldError{Field: "exit_price", Message: "must be a positive number"}
	}
	if t.Size <= 0 {
		return Trade{}, &FieldError{Field: "size", Message: "must be a positive number"}
	}
	if t.Fees < 0 {
		return Trade{}, &FieldError{Field: "fees", Message: "must not be negative"}
	}
	if t.RiskAmount < 0 {
		return Trade{}, &FieldError{Field: "risk_amount", Message: "must not be negative"}
	}
	if t.Date.IsZero() {
		return Trade{}, &FieldError{Field: "date", Message: "is required"}
	}
	return t, nil
}
