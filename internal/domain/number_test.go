package domain

import (
	"errors"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNum(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"83", 83},
		{"1,204", 1204},
		{"51,165", 51165},
		{"0", 0},
		{"eleven", 11},
		{"Eleven", 11},
		{"twenty-one", 21},
		{"one hundred and five", 105},
		{"two thousand", 2000},
		{"one thousand two hundred and four", 1204},
		{" 12.", 12},
		{"1,039,", 1039},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNum(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNum_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 99, 1000, 1204, 123456} {
		got, err := ParseNum(strconv.Itoa(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestParseNum_Errors(t *testing.T) {
	for _, input := range []string{"", "several", "12a", "and", "a dozen"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseNum(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "number", pe.Kind)
			assert.Equal(t, input, pe.Input)
		})
	}
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"first", 1},
		{"second", 2},
		{"third", 3},
		{"fourth", 4},
		{"fifth", 5},
		{"Fifth", 5},
		{"eighth", 8},
		{"ninth", 9},
		{"eleventh", 11},
		{"twelfth", 12},
		{"twentieth", 20},
		{"twenty-first", 21},
		{"twenty-fifth", 25},
		{"thirtieth", 30},
		{"hundredth", 100},
		{"6th", 6},
		{"21st", 21},
		{"22nd", 22},
		{"23rd", 23},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOrdinal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrdinal_Error(t *testing.T) {
	_, err := ParseOrdinal("umpteenth")
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "ordinal", pe.Kind)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParsePerc(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"42%", "0.42"},
		{"42", "0.42"},
		{"2.5%", "0.025"},
		{"100%", "1"},
		{"0%", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePerc(tt.input)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	_, err := ParsePerc("most%")
	assert.ErrorIs(t, err, ErrParse)
}

func TestShareOf(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		fraction string
		want     int
	}{
		{"exact", 100, "0.5", 50},
		{"half rounds up", 5, "0.5", 3},
		{"half rounds away from zero", 7, "0.5", 4},
		{"below half rounds down", 1, "0.25", 0},
		{"decimal percentage", 1000, "0.425", 425},
		{"zero total", 0, "0.3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShareOf(tt.total, decimal.RequireFromString(tt.fraction)))
		})
	}
}

func TestLooksOrdinal(t *testing.T) {
	for token, want := range map[string]bool{
		"fifth":        true,
		"first":        true,
		"twenty-first": true,
		"6th":          true,
		"21st":         true,
		"eight":        false,
		"83":           false,
		"nine":         false,
	} {
		assert.Equal(t, want, looksOrdinal(token), token)
	}
}
