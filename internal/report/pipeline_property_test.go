package report

import (
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"reflect"
	"testing"
	"tradesync/internal/journal"
)

func genTrades() gopter.Gen {
	return gen.SliceOf(gen.Struct(reflect.TypeOf(journal.Trade{}), map[string]gopter.Gen{
		"ID":          gen.Identifier(),
		"Instrument":  gen.OneConstOf("EURUSD", "gbpjpy", "XAUUSD"),
		"Account":     gen.OneConstOf("FTMO", "Apex"),
		"StrategyTag": gen.OneConstOf("", "ICT", "Breakout"),
		"PnL":         gen.Float64Range(-500, 500),
		"RMultiple":   gen.Float64Range(-4, 4),
	}))
}

func TestProperty_Pipeline(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("no filter, no sort and one page return the input", prop.ForAll(
		func(trades []journal.Trade) bool {
			res := FilterSortPage(trades, Filter{}, Sort{}, Page{})
			return len(res.Items) == len(trades) &&
				res.TotalCount == len(trades) &&
				(len(trades) == 0 || reflect.DeepEqual(res.Items, trades))
		},
		genTrades(),
	))

	properties.Property("same arguments give the same page", prop.ForAll(
		func(trades []journal.Trade, field string, desc bool, size, index int) bool {
			f := Filter{Account: "FTMO", MinPnL: Float(-100)}
			s := Sort{Field: field, Desc: desc}
			p := Page{Size: size, Index: index}
			return reflect.DeepEqual(FilterSortPage(trades, f, s, p), FilterSortPage(trades, f, s, p))
		},
		genTrades(),
		gen.OneConstOf("", "pnl", "instrument", "strategy", "rMultiple"),
		gen.Bool(),
		gen.IntRange(0, 5),
		gen.IntRange(0, 4),
	))

	properties.Property("descending is the reverse of ascending", prop.ForAll(
		func(trades []journal.Trade, field string) bool {
			asc := Order(trades, Sort{Field: field})
			desc := Order(trades, Sort{Field: field, Desc: true})
			for i := range asc {
				if asc[i].ID != desc[len(desc)-1-i].ID {
					return false
				}
			}
			return len(asc) == len(desc)
		},
		genTrades(),
		gen.OneConstOf("pnl", "account", "strategy"),
	))

	properties.TestingRun(t)
}
