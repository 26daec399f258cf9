package aggregate

import (
	"sort"
	"time"

	"barfeed/internal/model"
)

// BarKey identifies one bar slot.
type BarKey struct {
	Symbol   string
	Exchange model.Exchange
	Interval model.Interval
	Datetime int64 // unix nanos, so equal instants in different zones collide
}

func keyOf(b model.Bar) BarKey {
	return BarKey{Symbol: b.Symbol, Exchange: b.Exchange, Interval: b.Interval, Datetime: b.Datetime.UnixNano()}
}

// Dedup collapses bars sharing a BarKey, later input wins, and returns them
// ordered by symbol, exchange, interval and time. An empty input yields an
// empty, non-nil slice.
func Dedup(bars []model.Bar) []model.Bar {
	latest := make(map[BarKey]int, len(bars))
	out := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		k := keyOf(b)
		if i, ok := latest[k]; ok {
			out[i] = b
			continue
		}
		latest[k] = len(out)
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.Exchange != b.Exchange {
			return a.Exchange < b.Exchange
		}
		if a.Interval != b.Interval {
			return a.Interval < b.Interval
		}
		return a.Datetime.Before(b.Datetime)
	})
	return out
}

// Span returns the first and last bar time, or zero times for no bars.
func Span(bars []model.Bar) (first, last time.Time) {
	for i, b := range bars {
		if i == 0 || b.Datetime.Before(first) {
			first = b.Datetime
		}
		if i == 0 || b.Datetime.After(last) {
			last = b.Datetime
		}
	}
	return first, last
}
