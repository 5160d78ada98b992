package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillForward(t *testing.T) {
	series := TimeSeries{
		"2020-04-01": {Confirmed: Known(1), ICU: Known(2), Hospitalized: Known(5)},
		"2020-04-02": {Confirmed: Known(2), Deaths: Known(1)},
		"2020-04-03": {Confirmed: Known(3), ICU: Known(0)},
		"2020-04-04": {Confirmed: Known(4)},
	}

	FillForward(series)

	assert.Equal(t, Known(0), series["2020-04-01"].Deaths, "seeded with zero")
	assert.Equal(t, Known(1), series["2020-04-02"].Deaths)
	assert.Equal(t, Known(1), series["2020-04-04"].Deaths)

	assert.Equal(t, Known(2), series["2020-04-02"].ICU)
	assert.Equal(t, Known(0), series["2020-04-03"].ICU, "reported zero is kept")
	assert.Equal(t, Known(0), series["2020-04-04"].ICU)

	assert.Equal(t, Known(5), series["2020-04-04"].Hospitalized)

	for _, d := range series.Dates() {
		assert.False(t, series[d].Tested.IsKnown(), "tested is not filled")
		assert.False(t, series[d].Recovered.IsKnown(), "recovered is not filled")
	}
}

func TestFillCalendar_ClonesPreviousDay(t *testing.T) {
	day1 := DayRecord{
		Confirmed: Known(10), Recovered: Known(2), ICU: Known(2),
		Sources: &SourceCounts{Known(8), Known(1), Known(1), Known(0)},
	}
	series := TimeSeries{
		"2020-04-01": day1,
		"2020-04-03": {Confirmed: Known(12), Recovered: Known(3)},
	}

	FillForward(series)
	FillCalendar(series)

	require.Len(t, series, 3)
	day2 := series["2020-04-02"]
	assert.Equal(t, Known(10), day2.Confirmed)
	assert.Equal(t, Known(2), day2.ICU)
	assert.Equal(t, Known(2), series["2020-04-03"].ICU, "last known value, not a zero")

	require.NotNil(t, day2.Sources)
	day2.Sources[SourceOverseas] = Known(99)
	assert.Equal(t, Known(8), series["2020-04-01"].Sources.Get(SourceOverseas), "clone is deep")
}

func TestFillCalendar_Dense(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"single day", []string{"2020-03-01"}, 1},
		{"adjacent", []string{"2020-03-01", "2020-03-02"}, 2},
		{"month boundary", []string{"2020-02-27", "2020-03-02"}, 5},
		{"sparse", []string{"2020-03-01", "2020-03-05", "2020-03-20", "2020-04-02"}, 33},
		{"dst change", []string{"2020-04-04", "2020-04-06"}, 3},
		{"year boundary", []string{"2020-12-30", "2021-01-02"}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := make(TimeSeries)
			for i, d := range tt.dates {
				series[d] = DayRecord{Confirmed: Known(i), Recovered: Known(0)}
			}

			FillCalendar(series)
			dates := series.Dates()

			require.Len(t, dates, tt.want)
			first, err := ParseDate(dates[0])
			require.NoError(t, err)
			last, err := ParseDate(dates[len(dates)-1])
			require.NoError(t, err)
			assert.Equal(t, int(last.Sub(first).Hours()/24)+1, len(dates))

			for i := 1; i < len(dates); i++ {
				prev, _ := ParseDate(dates[i-1])
				assert.Equal(t, DateOf(prev.AddDate(0, 0, 1)), dates[i])
			}
		})
	}
}

func TestFillCalendar_Empty(t *testing.T) {
	series := FillCalendar(TimeSeries{})
	assert.Empty(t, series)
}
