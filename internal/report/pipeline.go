package report

import (
	"cmp"
	"slices"
	"strings"
	"tradesync/internal/journal"
)

// Sort orders trades by one field. An empty Field keeps the input order.
type Sort struct {
	Field string
	Desc  bool
}

type comparator func(a, b journal.Trade) int

func byNumber(get func(journal.Trade) float64) comparator {
	return func(a, b journal.Trade) int { return cmp.Compare(get(a), get(b)) }
}

func byText(get func(journal.Trade) string) comparator {
	return func(a, b journal.Trade) int {
		return strings.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
	}
}

var sortFields = map[string]comparator{
	"date":       func(a, b journal.Trade) int { return a.Date.Compare(b.Date) },
	"instrument": byText(func(t journal.Trade) string { return t.Instrument }),
	"direction":  byText(func(t journal.Trade) string { return string(t.Direction) }),
	"account":    byText(func(t journal.Trade) string { return t.Account }),
	"strategy":   byText(func(t journal.Trade) string { return t.StrategyTag }),
	"pnl":        byNumber(func(t journal.Trade) float64 { return t.PnL }),
	"rmultiple":  byNumber(func(t journal.Trade) float64 { return t.RMultiple }),
	"entryprice": byNumber(func(t journal.Trade) float64 { return t.EntryPrice }),
	"exitprice":  byNumber(func(t journal.Trade) float64 { return t.ExitPrice }),
	"size":       byNumber(func(t journal.Trade) float64 { return t.Size }),
	"fees":       byNumber(func(t journal.Trade) float64 { return t.Fees }),
}

// canonicalField folds rMultiple, r_multiple and RMultiple onto one key.
func canonicalField(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "_", ""))
	if name == "strategytag" {
		return "strategy"
	}
	return name
}

// ValidSortField reports whether name can be used as Sort.Field.
func ValidSortField(name string) bool {
	if name == "" {
		return true
	}
	_, ok := sortFields[canonicalField(name)]
	return ok
}

// Order returns a sorted copy of trades. The ascending sort is stable; descending
// is its exact reverse, so trades that tie on the field also appear reversed.
// Unknown fields keep the input order; callers check ValidSortField first.
func Order(trades []journal.Trade, s Sort) []journal.Trade {
	out := slices.Clone(trades)
	compare, ok := sortFields[canonicalField(s.Field)]
	if !ok {
		return out
	}
	slices.SortStableFunc(out, compare)
	if s.Desc {
		slices.Reverse(out)
	}
	return out
}

// DefaultPageSize is the reports table page size.
const DefaultPageSize = 20

// Page selects a window of the result. Index is 1-based; values below 1 mean the
// first page. A Size of 0 or less returns everything.
type Page struct {
	Size  int
	Index int
}

// Result is one page of a filtered and sorted collection.
type Result struct {
	Items      []journal.Trade `json:"items"`
	TotalCount int             `json:"total_count"`
	TotalPages int             `json:"total_pages"`
	Page       int             `json:"page"`
}

// FilterSortPage filters, sorts and pages trades. The input slice is never modified
// and repeated calls with the same arguments give the same result.
func FilterSortPage(trades []journal.Trade, f Filter, s Sort, p Page) Result {
	ordered := Order(Apply(trades, f), s)

	res := Result{TotalCount: len(ordered), Page: max(p.Index, 1)}
	if p.Size <= 0 {
		res.Items = ordered
		res.Page = 1
		if len(ordered) > 0 {
			res.TotalPages = 1
		}
		return res
	}

	res.TotalPages = (len(ordered) + p.Size - 1) / p.Size
	start := min((res.Page-1)*p.Size, len(ordered))
	end := min(start+p.Size, len(ordered))
	res.Items = ordered[start:end]
	return res
}
