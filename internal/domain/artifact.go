package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Country is the ISO 3166-1 alpha-3 code of the published series.
const Country = "NZL"

// RunInfo identifies the run that produced an artifact.
type RunInfo struct {
	ID          string
	Country     string
	GeneratedAt time.Time
}

// Totals holds one sequence per numeric field, aligned with the artifact
// dates. Fields are declared in key order so the encoded object is sorted.
type Totals struct {
	Confirmed           []Count `json:"confirmed"`
	CurrentHospitalized []Count `json:"current_hospitalized"`
	CurrentICU          []Count `json:"current_icu"`
	Deaths              []Count `json:"deaths"`
	Recovered           []Count `json:"recovered"`
	Tested              []Count `json:"tested"`
}

// Artifact is the charting document written at the end of a run.
type Artifact struct {
	Sources         Breakdown `json:"sources"`
	TimeseriesDates []string  `json:"timeseries_dates"`
	Total           Totals    `json:"total"`
}

// BuildArtifact projects a gap-filled series. Every day must carry confirmed
// and recovered; the first day that does not yields ErrIncompleteSeries.
func BuildArtifact(series TimeSeries) (*Artifact, error) {
	dates := series.Dates()
	n := len(dates)
	a := &Artifact{
		TimeseriesDates: dates,
		Total: Totals{
			Confirmed:           make([]Count, 0, n),
			CurrentHospitalized: make([]Count, 0, n),
			CurrentICU:          make([]Count, 0, n),
			Deaths:              make([]Count, 0, n),
			Recovered:           make([]Count, 0, n),
			Tested:              make([]Count, 0, n),
		},
	}

	for _, d := range dates {
		rec := series[d]
		if !rec.Confirmed.IsKnown() {
			return nil, fmt.Errorf("%w: %s has no confirmed count", ErrIncompleteSeries, d)
		}
		if !rec.Recovered.IsKnown() {
			return nil, fmt.Errorf("%w: %s has no recovered count", ErrIncompleteSeries, d)
		}
		a.Total.Confirmed = append(a.Total.Confirmed, rec.Confirmed)
		a.Total.Recovered = append(a.Total.Recovered, rec.Recovered)
		a.Total.Deaths = append(a.Total.Deaths, rec.Deaths)
		a.Total.Tested = append(a.Total.Tested, rec.Tested)
		a.Total.CurrentHospitalized = append(a.Total.CurrentHospitalized, rec.Hospitalized)
		a.Total.CurrentICU = append(a.Total.CurrentICU, rec.ICU)
	}

	a.Sources = ProjectSubseries(series, dates, FieldSources)
	return a, nil
}

// DayPoint is one position of the artifact, used by per-day sinks.
type DayPoint struct {
	Date                string         `json:"date"`
	Confirmed           Count          `json:"confirmed"`
	Recovered           Count          `json:"recovered"`
	Deaths              Count          `json:"deaths"`
	Tested              Count          `json:"tested"`
	CurrentHospitalized Count          `json:"current_hospitalized"`
	CurrentICU          Count          `json:"current_icu"`
	Sources             map[string]int `json:"sources"`
}

// Days returns the artifact as one DayPoint per date.
func (a *Artifact) Days() []DayPoint {
	out := make([]DayPoint, len(a.TimeseriesDates))
	for i, d := range a.TimeseriesDates {
		p := DayPoint{
			Date:                d,
			Confirmed:           at(a.Total.Confirmed, i),
			Recovered:           at(a.Total.Recovered, i),
			Deaths:              at(a.Total.Deaths, i),
			Tested:              at(a.Total.Tested, i),
			CurrentHospitalized: at(a.Total.CurrentHospitalized, i),
			CurrentICU:          at(a.Total.CurrentICU, i),
			Sources:             make(map[string]int, len(a.Sources.Keys)),
		}
		for _, k := range a.Sources.Keys {
			if s := a.Sources.Subseries[k]; i < len(s) {
				p.Sources[k] = s[i]
			}
		}
		out[i] = p
	}
	return out
}

func at(s []Count, i int) Count {
	if i < len(s) {
		return s[i]
	}
	return Unknown
}

// ValidateArtifact checks the output contract: contiguous ascending dates,
// every sequence as long as the dates, no unknown confirmed or recovered
// values, and sorted unique source keys each with a subseries. All violations
// are joined into the returned error.
func ValidateArtifact(a *Artifact) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidArtifact, fmt.Sprintf(format, args...)))
	}

	for i, d := range a.TimeseriesDates {
		t, err := ParseDate(d)
		if err != nil {
			fail("date %d %q is not YYYY-MM-DD", i, d)
			continue
		}
		if i == 0 {
			continue
		}
		if want := DateOf(t.AddDate(0, 0, -1)); a.TimeseriesDates[i-1] != want {
			fail("date %s follows %s, want %s", d, a.TimeseriesDates[i-1], want)
		}
	}

	n := len(a.TimeseriesDates)
	sequences := []struct {
		name     string
		vals     []Count
		required bool
	}{
		{"total.confirmed", a.Total.Confirmed, true},
		{"total.recovered", a.Total.Recovered, true},
		{"total.deaths", a.Total.Deaths, false},
		{"total.tested", a.Total.Tested, false},
		{"total.current_hospitalized", a.Total.CurrentHospitalized, false},
		{"total.current_icu", a.Total.CurrentICU, false},
	}
	for _, s := range sequences {
		if len(s.vals) != n {
			fail("%s has %d values for %d dates", s.name, len(s.vals), n)
		}
		if !s.required {
			continue
		}
		for i, c := range s.vals {
			if !c.IsKnown() {
				fail("%s is null at %d", s.name, i)
			}
		}
	}

	if !slices.IsSorted(a.Sources.Keys) {
		fail("sources.keys are not sorted")
	}
	if len(slices.Compact(slices.Clone(a.Sources.Keys))) != len(a.Sources.Keys) {
		fail("sources.keys contain duplicates")
	}
	for _, k := range a.Sources.Keys {
		s, ok := a.Sources.Subseries[k]
		if !ok {
			fail("sources.subseries lacks key %q", k)
			continue
		}
		if len(s) != n {
			fail("sources.subseries[%q] has %d values for %d dates", k, len(s), n)
		}
	}
	for k := range a.Sources.Subseries {
		if !slices.Contains(a.Sources.Keys, k) {
			fail("sources.subseries has unlisted key %q", k)
		}
	}
	return errors.Join(errs...)
}
