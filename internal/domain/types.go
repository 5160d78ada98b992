package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"
)

// DateLayout is the calendar-day key format used throughout the series.
const DateLayout = "2006-01-02"

// DateOf returns the calendar-day key of t in t's own location; the time of
// day is discarded.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD key.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Source is one of the fixed transmission-source categories.
type Source int

const (
	SourceOverseas Source = iota
	SourceEpiLink
	SourceCommunity
	SourceInvestigation

	numSources
)

var sourceLabels = [numSources]string{
	SourceOverseas:      "Overseas acquired",
	SourceEpiLink:       "Locally acquired - contact of a confirmed case",
	SourceCommunity:     "Locally acquired - contact not identified",
	SourceInvestigation: "Under investigation",
}

func (s Source) String() string {
	if s < 0 || s >= numSources {
		return fmt.Sprintf("Source(%d)", int(s))
	}
	return sourceLabels[s]
}

// AllSources lists the fixed vocabulary in declaration order.
func AllSources() []Source {
	return []Source{SourceOverseas, SourceEpiLink, SourceCommunity, SourceInvestigation}
}

// SourceCounts carries a Count for every source label. A record either has
// no SourceCounts at all or has all four entries, some possibly Unknown.
type SourceCounts [numSources]Count

// Get returns the count for s.
func (sc *SourceCounts) Get(s Source) Count { return sc[s] }

// Map keys the counts by label.
func (sc *SourceCounts) Map() map[string]Count {
	m := make(map[string]Count, numSources)
	for _, s := range AllSources() {
		m[s.String()] = sc[s]
	}
	return m
}

// MarshalJSON encodes the counts as a label-keyed object.
func (sc SourceCounts) MarshalJSON() ([]byte, error) {
	return json.Marshal(sc.Map())
}

// UnmarshalJSON decodes a label-keyed object. Absent labels are Unknown.
func (sc *SourceCounts) UnmarshalJSON(data []byte) error {
	var m map[string]Count
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*sc = SourceCounts{}
	for label, c := range m {
		i := slices.Index(sourceLabels[:], label)
		if i < 0 {
			return fmt.Errorf("unknown source label %q", label)
		}
		sc[i] = c
	}
	return nil
}

// DailyFact is the sparse set of figures extracted from one release.
type DailyFact struct {
	Confirmed    Count         `json:"confirmed"`
	Recovered    Count         `json:"recovered"`
	Deaths       Count         `json:"deaths"`
	Tested       Count         `json:"tested"`
	Hospitalized Count         `json:"hospitalized"`
	ICU          Count         `json:"icu"`
	Sources      *SourceCounts `json:"sources,omitempty"`
}

// Contributes reports whether the fact may enter the series. Releases
// without a confirmed total are dropped.
func (f DailyFact) Contributes() bool { return f.Confirmed.IsKnown() }

// DayRecord is one day of the merged series.
type DayRecord struct {
	Confirmed    Count         `json:"confirmed"`
	Recovered    Count         `json:"recovered"`
	Deaths       Count         `json:"deaths"`
	Tested       Count         `json:"tested"`
	Hospitalized Count         `json:"hospitalized"`
	ICU          Count         `json:"icu"`
	Sources      *SourceCounts `json:"sources,omitempty"`
}

// FieldSources names the per-day transmission-source breakdown.
const FieldSources = "sources"

// Clone returns a copy that shares no mutable state with r.
func (r DayRecord) Clone() DayRecord {
	if r.Sources != nil {
		sc := *r.Sources
		r.Sources = &sc
	}
	return r
}

// Breakdown returns the categorical sub-map stored under field, or nil when
// the day has none.
func (r DayRecord) Breakdown(field string) map[string]Count {
	switch field {
	case FieldSources:
		if r.Sources == nil {
			return nil
		}
		return r.Sources.Map()
	default:
		return nil
	}
}

// TimeSeries maps YYYY-MM-DD keys to day records.
type TimeSeries map[string]DayRecord

// Dates returns the keys in ascending order.
func (ts TimeSeries) Dates() []string {
	dates := make([]string, 0, len(ts))
	for d := range ts {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Clone deep-copies the series.
func (ts TimeSeries) Clone() TimeSeries {
	out := make(TimeSeries, len(ts))
	for d, r := range ts {
		out[d] = r.Clone()
	}
	return out
}

// Release is one press release as delivered by the page collaborator.
type Release struct {
	URL       string
	Title     string
	Published time.Time
	Body      string
}

// Date is the series key the release contributes to.
func (r Release) Date() string { return DateOf(r.Published) }
