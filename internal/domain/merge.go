package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// accumulator carries the running totals of the manual-table fold.
type accumulator struct {
	confirmed int
	deaths    int
	recovered int
	sources   [numSources]int
}

func (a *accumulator) add(ev ManualEvent) {
	a.confirmed += ev.Confirmed.Or(0)
	a.deaths += ev.Deaths.Or(0)
	a.recovered += ev.Recovered.Or(0)
	for s, n := range ev.Sources {
		a.sources[s] += n
	}
}

func (a *accumulator) sourceSnapshot() *SourceCounts {
	sc := &SourceCounts{}
	for i, n := range a.sources {
		sc[i] = Known(n)
	}
	return sc
}

// Merge combines scraped facts with the manual table and then applies the
// overrides.
//
// Events are folded in ascending date order whatever order they arrive in.
// On each event date a scraped field wins over the manual one, but the
// running totals still advance so later days stay consistent. Dates that only
// have scraped data pass through unchanged. Overrides replace the fields they
// name unconditionally; one whose date is not in the merged series is an
// ErrOrphanOverride.
func Merge(scraped map[string]DailyFact, events []ManualEvent, overrides []AbsoluteOverride) (TimeSeries, error) {
	series := make(TimeSeries, len(scraped)+len(events))
	for date, fact := range scraped {
		if !fact.Contributes() {
			continue
		}
		series[date] = DayRecord(fact).Clone()
	}

	ordered := slices.Clone(events)
	slices.SortStableFunc(ordered, func(a, b ManualEvent) int { return cmp.Compare(a.Date, b.Date) })

	var acc accumulator
	for _, ev := range ordered {
		acc.add(ev)
		rec := series[ev.Date]

		rec.Confirmed = rec.Confirmed.Prefer(Known(acc.confirmed))
		rec.Deaths = rec.Deaths.Prefer(Known(acc.deaths))
		rec.Recovered = rec.Recovered.Prefer(Known(acc.recovered))

		rec.Hospitalized = rec.Hospitalized.Prefer(ev.Hospitalized).Prefer(Known(0))
		rec.ICU = rec.ICU.Prefer(ev.ICU).Prefer(Known(0))
		rec.Tested = rec.Tested.Prefer(ev.Tested)

		if rec.Sources == nil {
			rec.Sources = acc.sourceSnapshot()
		}
		series[ev.Date] = rec
	}

	for _, o := range overrides {
		rec, ok := series[o.Date]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrOrphanOverride, o.Date)
		}
		rec.Confirmed = o.Confirmed.Prefer(rec.Confirmed)
		rec.Recovered = o.Recovered.Prefer(rec.Recovered)
		rec.Deaths = o.Deaths.Prefer(rec.Deaths)
		rec.Hospitalized = o.Hospitalized.Prefer(rec.Hospitalized)
		rec.ICU = o.ICU.Prefer(rec.ICU)
		rec.Tested = o.Tested.Prefer(rec.Tested)
		series[o.Date] = rec
	}
	return series, nil
}
