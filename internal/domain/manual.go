package domain

// ManualEvent is a hand-entered day from the period before the releases
// carried running totals. Confirmed, Deaths and Recovered are deltas added to
// the running totals; Hospitalized, ICU and Tested are snapshots. Sources
// holds per-label deltas.
type ManualEvent struct {
	Date string

	Confirmed Count
	Deaths    Count
	Recovered Count

	Hospitalized Count
	ICU          Count
	Tested       Count

	Sources map[Source]int
}

// AbsoluteOverride replaces the named fields of one merged day. Unknown
// fields are left alone.
type AbsoluteOverride struct {
	Date string

	Confirmed    Count
	Recovered    Count
	Deaths       Count
	Hospitalized Count
	ICU          Count
	Tested       Count
}

// testsBaseline is the cumulative test count published on 2020-03-26. The
// daily test figures after it were published as an average over the last
// week and are summed onto this baseline.
const testsBaseline = 12683

var dailyTests = []int{1479, 1613, 1786, 1728, 1777, 1843}

func testsAfter(days int) Count {
	n := testsBaseline
	for _, d := range dailyTests[:days] {
		n += d
	}
	return Known(n)
}

// ManualEvents returns the compiled-in table of early events, sorted by date.
// Each call returns a fresh copy.
//
// Sources: health.govt.nz media releases from "single case of COVID-19
// confirmed in New Zealand" (2020-02-28) through "61 new cases of COVID-19"
// (2020-04-01).
func ManualEvents() []ManualEvent {
	return []ManualEvent{
		{
			Date:      "2020-02-28",
			Confirmed: Known(1), Deaths: Known(0), Recovered: Known(0),
			Hospitalized: Known(1), ICU: Known(0),
			Sources: map[Source]int{
				SourceOverseas:      1,
				SourceEpiLink:       0,
				SourceCommunity:     0,
				SourceInvestigation: 0,
			},
		},
		{Date: "2020-02-29"},
		{Date: "2020-03-01"},
		{Date: "2020-03-02"},
		{Date: "2020-03-03"},
		{Date: "2020-03-04", Confirmed: Known(1), Sources: map[Source]int{SourceOverseas: 1}},
		{Date: "2020-03-05", Confirmed: Known(1), Sources: map[Source]int{SourceOverseas: 1}},
		{Date: "2020-03-06", Confirmed: Known(1), Sources: map[Source]int{SourceOverseas: 1}},
		// Fifth case, a household contact of an earlier case.
		{Date: "2020-03-07", Confirmed: Known(1), Sources: map[Source]int{SourceEpiLink: 1}},
		{Date: "2020-03-08"},
		{Date: "2020-03-09"},
		{Date: "2020-03-10"},
		{Date: "2020-03-11"},
		{Date: "2020-03-12"},
		{Date: "2020-03-13"},
		{Date: "2020-03-14", Confirmed: Known(1), Sources: map[Source]int{SourceOverseas: 1}},
		{Date: "2020-03-15", Confirmed: Known(2), Sources: map[Source]int{SourceOverseas: 2}},
		{Date: "2020-03-16"},
		{
			Date:      "2020-03-17",
			Confirmed: Known(4),
			Sources:   map[Source]int{SourceEpiLink: 1, SourceOverseas: 3},
		},
		{Date: "2020-03-18", Confirmed: Known(8), Sources: map[Source]int{SourceOverseas: 8}},
		{
			Date:      "2020-03-19",
			Confirmed: Known(8), Tested: Known(2300),
			Sources: map[Source]int{SourceOverseas: 8},
		},
		{
			Date:      "2020-03-20",
			Confirmed: Known(11), Tested: Known(3300),
			Sources: map[Source]int{SourceOverseas: 8},
		},
		// Probable cases are counted from here on.
		{
			Date:      "2020-03-21",
			Confirmed: Known(13 + 4), Tested: Known(4800),
			Sources: map[Source]int{SourceOverseas: 15, SourceInvestigation: 2},
		},
		{
			Date:      "2020-03-22",
			Confirmed: Known(14), Tested: Known(6000),
			Sources: map[Source]int{
				SourceOverseas:      11,
				SourceEpiLink:       1,
				SourceCommunity:     2,
				SourceInvestigation: 2,
			},
		},
		{Date: "2020-03-23", Confirmed: Known(36), Tested: Known(7400)},
		{Date: "2020-03-24", Confirmed: Known(40 + 3), Recovered: Known(12), Tested: Known(8300)},
		{
			Date:      "2020-03-25",
			Confirmed: Known(50), Recovered: Known(10),
			Hospitalized: Known(6), ICU: Known(0), Tested: Known(9780),
		},
		{
			Date:      "2020-03-26",
			Confirmed: Known(78), Recovered: Known(5),
			Hospitalized: Known(7), ICU: Known(0), Tested: testsAfter(0),
		},
		{
			Date:      "2020-03-27",
			Confirmed: Known(85), Recovered: Known(10),
			Hospitalized: Known(8), ICU: Known(1), Tested: testsAfter(1),
		},
		{
			Date:      "2020-03-28",
			Confirmed: Known(83), Recovered: Known(13),
			Hospitalized: Known(12), ICU: Known(2), Tested: testsAfter(2),
		},
		{
			Date:      "2020-03-29",
			Confirmed: Known(63), Recovered: Known(6), Deaths: Known(1),
			Hospitalized: Known(9), ICU: Known(1), Tested: testsAfter(3),
		},
		{
			Date:      "2020-03-30",
			Confirmed: Known(75), Recovered: Known(6),
			Hospitalized: Known(12), ICU: Known(2), Tested: testsAfter(4),
		},
		{
			Date:      "2020-03-31",
			Confirmed: Known(58), Recovered: Known(11),
			Hospitalized: Known(14), ICU: Known(2), Tested: testsAfter(5),
		},
		{Date: "2020-04-01", Tested: testsAfter(6)},
	}
}

// AbsoluteOverrides returns the compiled-in corrections applied after the
// manual-table pass. Each call returns a fresh copy. The table is empty on
// purpose: the corrections for 2020-02-28 to 2020-04-01 are already folded
// into ManualEvents.
func AbsoluteOverrides() []AbsoluteOverride {
	return []AbsoluteOverride{}
}
