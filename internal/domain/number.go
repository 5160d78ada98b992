package domain

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// digitsRe matches literal figures such as "83" or "1,204".
	digitsRe = regexp.MustCompile(`^[\d,]+$`)

	// numericOrdinalRe matches "6th", "21st", "1,000th".
	numericOrdinalRe = regexp.MustCompile(`^([\d,]+)(?:st|nd|rd|th)$`)

	hundred = decimal.NewFromInt(100)
)

var cardinalWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var scaleWords = map[string]int{
	"thousand": 1_000,
	"million":  1_000_000,
	"billion":  1_000_000_000,
}

// irregularOrdinals cannot be recovered by stripping a suffix.
var irregularOrdinals = map[string]int{
	"fifth":   5,
	"eighth":  8,
	"ninth":   9,
	"twelfth": 12,
}

// ordinalStems rewrites ordinal words to their cardinal spelling, including
// inside compounds ("twenty-first").
var ordinalStems = strings.NewReplacer(
	"first", "one",
	"second", "two",
	"third", "three",
	"fifth", "five",
	"eighth", "eight",
	"ninth", "nine",
	"twelfth", "twelve",
)

// ParseNum converts a literal figure ("1,204") or an English cardinal
// ("eleven", "twenty-one", "one hundred and five") to an int.
func ParseNum(text string) (int, error) {
	s := trimFragment(text)
	if digitsRe.MatchString(s) {
		n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
		if err != nil {
			return 0, &ParseError{Kind: "number", Input: text}
		}
		return n, nil
	}
	n, ok := wordsToNum(s)
	if !ok {
		return 0, &ParseError{Kind: "number", Input: text}
	}
	return n, nil
}

// ParseOrdinal converts "fifth", "eleventh", "thirtieth", "twenty-first" or
// "6th" to an int.
func ParseOrdinal(text string) (int, error) {
	s := strings.ToLower(trimFragment(text))
	if n, ok := irregularOrdinals[s]; ok {
		return n, nil
	}
	if m := numericOrdinalRe.FindStringSubmatch(s); m != nil {
		return ParseNum(m[1])
	}

	s = ordinalStems.Replace(s)
	s = strings.ReplaceAll(s, "ieth", "y")
	s = strings.TrimSuffix(s, "th")

	n, err := ParseNum(s)
	if err != nil {
		return 0, &ParseError{Kind: "ordinal", Input: text}
	}
	return n, nil
}

// ParsePerc converts "42%" or "2.5" to the fraction 0.42 or 0.025.
func ParsePerc(text string) (decimal.Decimal, error) {
	s := strings.TrimSuffix(strings.TrimSpace(text), "%")
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, &ParseError{Kind: "percentage", Input: text}
	}
	return d.Div(hundred), nil
}

// ShareOf returns fraction × total rounded half away from zero.
func ShareOf(total int, fraction decimal.Decimal) int {
	return int(decimal.NewFromInt(int64(total)).Mul(fraction).Round(0).IntPart())
}

// looksOrdinal reports whether a captured token should go through
// ParseOrdinal rather than ParseNum.
func looksOrdinal(token string) bool {
	s := strings.ToLower(trimFragment(token))
	if numericOrdinalRe.MatchString(s) {
		return true
	}
	if strings.HasSuffix(s, "th") {
		return true
	}
	for _, w := range []string{"first", "second", "third"} {
		if strings.HasSuffix(s, w) {
			return true
		}
	}
	return false
}

// isNoneWord reports the literal words that stand for zero.
func isNoneWord(token string) bool {
	s := trimFragment(token)
	return strings.EqualFold(s, "neither") || strings.EqualFold(s, "none")
}

func trimFragment(s string) string {
	return strings.Trim(s, " \t\r\n.,;:!?()\"'")
}

// wordsToNum evaluates a cardinal phrase. Every word must be known; "and" is
// ignored and hyphens separate words.
func wordsToNum(s string) (int, bool) {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(s), "-", " "))
	if len(words) == 0 {
		return 0, false
	}

	total, current, seen := 0, 0, false
	for _, w := range words {
		if w == "and" {
			continue
		}
		if v, ok := cardinalWords[w]; ok {
			current += v
			seen = true
			continue
		}
		if w == "hundred" {
			if current == 0 {
				current = 1
			}
			current *= 100
			seen = true
			continue
		}
		if scale, ok := scaleWords[w]; ok {
			if current == 0 {
				current = 1
			}
			total += current * scale
			current = 0
			seen = true
			continue
		}
		return 0, false
	}
	if !seen {
		return 0, false
	}
	return total + current, true
}
