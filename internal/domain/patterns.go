package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultPatternsYAML []byte

// Field names a numeric field a pattern group can yield.
type Field string

const (
	FieldConfirmed    Field = "confirmed"
	FieldRecovered    Field = "recovered"
	FieldDeaths       Field = "deaths"
	FieldHospitalized Field = "hospitalized"
	FieldICU          Field = "icu"
	FieldTested       Field = "tested"
)

var knownFields = []Field{FieldConfirmed, FieldRecovered, FieldDeaths, FieldHospitalized, FieldICU, FieldTested}

// Source-pattern group names.
const (
	groupOverseas      = "overseas"
	groupWithinNZ      = "within_nz"
	groupEpiLink       = "epi_link"
	groupCommunity     = "community"
	groupInvestigation = "investigation"
)

var sourceGroups = []string{groupOverseas, groupWithinNZ, groupEpiLink, groupCommunity, groupInvestigation}

// Transform selects how a captured token becomes a number.
type Transform string

const (
	// TransformAuto maps "neither"/"none" to zero, ordinal-looking tokens
	// through ParseOrdinal and the rest through ParseNum.
	TransformAuto     Transform = "auto"
	TransformCardinal Transform = "cardinal"
	TransformOrdinal  Transform = "ordinal"
)

// Pattern is one prose alternative.
type Pattern struct {
	Name      string    `yaml:"name"`
	Expr      string    `yaml:"expr"`
	Transform Transform `yaml:"transform,omitempty"`

	re      *regexp.Regexp
	bounded *regexp.Regexp
}

// FieldRule is an ordered list of alternatives for one semantic fact; the
// first matching pattern wins.
type FieldRule struct {
	Name     string    `yaml:"name"`
	Patterns []Pattern `yaml:"patterns"`
}

// PatternTable is the full extraction configuration.
type PatternTable struct {
	Rules   []FieldRule `yaml:"rules"`
	Sources []Pattern   `yaml:"sources"`
}

// DefaultPatterns returns the embedded pattern table.
func DefaultPatterns() (*PatternTable, error) {
	return LoadPatterns(bytes.NewReader(defaultPatternsYAML))
}

// LoadPatterns decodes and compiles a YAML pattern table.
func LoadPatterns(r io.Reader) (*PatternTable, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t PatternTable
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: decode table: %w", ErrInvalidPattern, err)
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *PatternTable) compile() error {
	if len(t.Rules) == 0 {
		return fmt.Errorf("%w: table has no rules", ErrInvalidPattern)
	}
	for i := range t.Rules {
		rule := &t.Rules[i]
		if rule.Name == "" {
			return fmt.Errorf("%w: rule %d has no name", ErrInvalidPattern, i)
		}
		if len(rule.Patterns) == 0 {
			return fmt.Errorf("%w: rule %s has no patterns", ErrInvalidPattern, rule.Name)
		}
		for j := range rule.Patterns {
			p := &rule.Patterns[j]
			if err := p.compile(); err != nil {
				return fmt.Errorf("rule %s: %w", rule.Name, err)
			}
			fields := 0
			for _, g := range p.re.SubexpNames() {
				if g == "" {
					continue
				}
				if !slices.Contains(knownFields, Field(g)) {
					return fmt.Errorf("%w: rule %s pattern %s: unknown field group %q", ErrInvalidPattern, rule.Name, p.Name, g)
				}
				fields++
			}
			if fields == 0 {
				return fmt.Errorf("%w: rule %s pattern %s captures no field", ErrInvalidPattern, rule.Name, p.Name)
			}
		}
	}

	for i := range t.Sources {
		p := &t.Sources[i]
		if err := p.compile(); err != nil {
			return fmt.Errorf("sources: %w", err)
		}
		for _, g := range p.re.SubexpNames() {
			if g != "" && !slices.Contains(sourceGroups, g) {
				return fmt.Errorf("%w: source pattern %s: unknown group %q", ErrInvalidPattern, p.Name, g)
			}
		}
		if !p.hasGroup(groupOverseas) || !p.hasGroup(groupCommunity) ||
			!(p.hasGroup(groupEpiLink) || p.hasGroup(groupWithinNZ)) {
			return fmt.Errorf("%w: source pattern %s needs overseas, community and epi_link or within_nz groups", ErrInvalidPattern, p.Name)
		}
	}
	return nil
}

func (p *Pattern) compile() error {
	if p.Name == "" {
		return fmt.Errorf("%w: pattern has no name", ErrInvalidPattern)
	}
	switch p.Transform {
	case "":
		p.Transform = TransformAuto
	case TransformAuto, TransformCardinal, TransformOrdinal:
	default:
		return fmt.Errorf("%w: pattern %s: unknown transform %q", ErrInvalidPattern, p.Name, p.Transform)
	}
	// Group 1 wraps the expression so the start of the match is known.
	re, err := regexp.Compile(`(?s)\A.*(` + p.Expr + `)`)
	if err != nil {
		return fmt.Errorf("%w: pattern %s: %w", ErrInvalidPattern, p.Name, err)
	}
	p.re = re
	p.bounded = regexp.MustCompile(`(?s)\A(?:.*[^\d,])?(` + p.Expr + `)`)
	return nil
}

func (p *Pattern) hasGroup(name string) bool {
	return p.re.SubexpIndex(name) >= 0
}

// match returns the non-empty named captures of the last occurrence of p in
// body, or nil. An occurrence never starts inside a number: when the greedy
// prefix stops between two digits the match is retried with a prefix that
// ends on a non-numeric character.
func (p *Pattern) match(body string) map[string]string {
	loc := p.re.FindStringSubmatchIndex(body)
	if loc == nil {
		return nil
	}
	if splitsNumber(body, loc[2]) {
		if loc = p.bounded.FindStringSubmatchIndex(body); loc == nil {
			return nil
		}
	}
	out := make(map[string]string)
	for i, name := range p.re.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		if v := body[loc[2*i]:loc[2*i+1]]; v != "" {
			out[name] = v
		}
	}
	return out
}

// splitsNumber reports whether position i of s falls inside a number.
func splitsNumber(s string, i int) bool {
	if i <= 0 || i >= len(s) || !isDigit(s[i]) {
		return false
	}
	return isDigit(s[i-1]) || s[i-1] == ','
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

// convert turns a captured token into a number according to the transform.
func (p *Pattern) convert(token string) (int, error) {
	switch p.Transform {
	case TransformCardinal:
		return ParseNum(token)
	case TransformOrdinal:
		if isNoneWord(token) {
			return 0, nil
		}
		return ParseOrdinal(token)
	default:
		if isNoneWord(token) {
			return 0, nil
		}
		if looksOrdinal(token) {
			return ParseOrdinal(token)
		}
		return ParseNum(token)
	}
}
