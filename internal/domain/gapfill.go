package domain

// FillForward replaces unknown deaths, hospitalized and ICU values with the
// last known value of the same field, walking dates in ascending order and
// starting from zero. Tested, confirmed and recovered are left as they are.
// The series is modified in place and returned.
func FillForward(series TimeSeries) TimeSeries {
	var deaths, hospitalized, icu int
	for _, date := range series.Dates() {
		rec := series[date]
		rec.Deaths, deaths = carry(rec.Deaths, deaths)
		rec.Hospitalized, hospitalized = carry(rec.Hospitalized, hospitalized)
		rec.ICU, icu = carry(rec.ICU, icu)
		series[date] = rec
	}
	return series
}

func carry(c Count, last int) (Count, int) {
	if n, ok := c.Value(); ok {
		return c, n
	}
	return Known(last), last
}

// FillCalendar adds every calendar day missing between the first and last
// date of the series as a copy of the day before it. Keys that are not
// YYYY-MM-DD dates are ignored when computing the range. The series is
// modified in place and returned.
func FillCalendar(series TimeSeries) TimeSeries {
	var dates []string
	for _, d := range series.Dates() {
		if _, err := ParseDate(d); err == nil {
			dates = append(dates, d)
		}
	}
	if len(dates) < 2 {
		return series
	}

	first, _ := ParseDate(dates[0])
	last, _ := ParseDate(dates[len(dates)-1])

	prev := series[dates[0]]
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := DateOf(day)
		if rec, ok := series[key]; ok {
			prev = rec
			continue
		}
		series[key] = prev.Clone()
	}
	return series
}
