package stats

import (
	"fmt"
	"sort"
	"tradesync/internal/journal"
)

// KeyFunc assigns a trade to a group.
type KeyFunc func(journal.Trade) string

// Untagged labels trades whose grouping field is empty.
const Untagged = "Untagged"

func orUntagged(s string) string {
	if s == "" {
		return Untagged
	}
	return s
}

var (
	ByStrategy   KeyFunc = func(t journal.Trade) string { return orUntagged(t.StrategyTag) }
	ByInstrument KeyFunc = func(t journal.Trade) string { return orUntagged(t.Instrument) }
	ByAccount    KeyFunc = func(t journal.Trade) string { return orUntagged(t.Account) }
	ByDirection  KeyFunc = func(t journal.Trade) string { return string(t.Direction) }
	ByEmotion    KeyFunc = func(t journal.Trade) string { return orUntagged(t.PreEmotion) }
)

// ByHour groups on the hour of the entry time, as "09:00". Trades without an entry
// time fall into Untagged.
func ByHour(t journal.Trade) string {
	if t.EntryTime == nil {
		return Untagged
	}
	return fmt.Sprintf("%02d:00", t.EntryTime.Hour())
}

// Group is the summary of the trades sharing a key.
type Group struct {
	Key     string  `json:"key"`
	Summary Summary `json:"summary"`
}

// GroupBy summarizes trades per key, best total P&L first. Within a group trades
// keep their input order.
func GroupBy(trades []journal.Trade, key KeyFunc) []Group {
	buckets := make(map[string][]journal.Trade)
	var order []string
	for _, t := range trades {
		k := key(t)
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], t)
	}

	groups := make([]Group, 0, len(order))
	for _, k := range order {
		groups = append(groups, Group{Key: k, Summary: Aggregate(buckets[k])})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Summary.TotalPnL != groups[j].Summary.TotalPnL {
			return groups[i].Summary.TotalPnL > groups[j].Summary.TotalPnL
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// Bucket is one bar of the R-multiple histogram.
type Bucket struct {
	Label string `json:"range"`
	Count int    `json:"count"`
}

var rBuckets = []struct {
	label string
	upper float64 // exclusive
}{
	{"< -2R", -2},
	{"-2R to -1R", -1},
	{"-1R to 0R", 0},
	{"0R to 1R", 1},
	{"1R to 2R", 2},
	{"2R to 3R", 3},
}

// RDistribution counts trades per R-multiple range. Every range is present, empty
// ones with a zero count.
func RDistribution(trades []journal.Trade) []Bucket {
	out := make([]Bucket, len(rBuckets)+1)
	for i, b := range rBuckets {
		out[i].Label = b.label
	}
	out[len(rBuckets)].Label = ">= 3R"

	for _, t := range trades {
		i := len(rBuckets)
		for j, b := range rBuckets {
			if t.RMultiple < b.upper {
				i = j
				break
			}
		}
		out[i].Count++
	}
	return out
}
