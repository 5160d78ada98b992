package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Match names the pattern that fired for a rule.
type Match struct {
	Rule    string `json:"rule"`
	Pattern string `json:"pattern"`
}

// Extractor turns release prose into a DailyFact using a compiled PatternTable.
type Extractor struct {
	table *PatternTable
}

// NewExtractor creates an Extractor over table. The table must come from
// LoadPatterns or DefaultPatterns.
func NewExtractor(table *PatternTable) *Extractor {
	return &Extractor{table: table}
}

// Extract applies every rule to body. A field no pattern matched stays
// Unknown; the only error is a *ParseError for a matched fragment that is not
// a number.
//
// Source percentages are converted with the extracted confirmed total, so
// when confirmed is unknown the fact carries no source map at all.
func (e *Extractor) Extract(body string) (DailyFact, []Match, error) {
	var fact DailyFact
	var matches []Match

	for _, rule := range e.table.Rules {
		for i := range rule.Patterns {
			p := &rule.Patterns[i]
			groups := p.match(body)
			if groups == nil {
				continue
			}
			for name, token := range groups {
				n, err := p.convert(token)
				if err != nil {
					return DailyFact{}, matches, fmt.Errorf("rule %s pattern %s field %s: %w", rule.Name, p.Name, name, err)
				}
				fact.set(Field(name), Known(n))
			}
			matches = append(matches, Match{Rule: rule.Name, Pattern: p.Name})
			break
		}
	}

	confirmed, ok := fact.Confirmed.Value()
	if !ok {
		return fact, matches, nil
	}

	fact.Sources = &SourceCounts{}
	for i := range e.table.Sources {
		p := &e.table.Sources[i]
		groups := p.match(body)
		if groups == nil {
			continue
		}
		sc, err := deriveSources(confirmed, groups)
		if err != nil {
			return DailyFact{}, matches, fmt.Errorf("source pattern %s: %w", p.Name, err)
		}
		fact.Sources = sc
		matches = append(matches, Match{Rule: FieldSources, Pattern: p.Name})
		break
	}
	return fact, matches, nil
}

// deriveSources converts the captured percentages into counts of confirmed.
// The linked share is read directly when the pattern has it, otherwise it is
// the within-NZ count less the community count.
func deriveSources(confirmed int, groups map[string]string) (*SourceCounts, error) {
	perc := make(map[string]decimal.Decimal, len(groups))
	for name, token := range groups {
		d, err := ParsePerc(token)
		if err != nil {
			return nil, err
		}
		perc[name] = d
	}

	share := func(name string) Count {
		d, ok := perc[name]
		if !ok {
			return Unknown
		}
		return Known(ShareOf(confirmed, d))
	}

	sc := &SourceCounts{}
	sc[SourceOverseas] = share(groupOverseas)
	sc[SourceCommunity] = share(groupCommunity)
	sc[SourceInvestigation] = share(groupInvestigation)

	if linked := share(groupEpiLink); linked.IsKnown() {
		sc[SourceEpiLink] = linked
	} else if within, ok := share(groupWithinNZ).Value(); ok {
		community := sc[SourceCommunity].Or(0)
		sc[SourceEpiLink] = Known(max(within-community, 0))
	}
	return sc, nil
}

func (f *DailyFact) set(field Field, c Count) {
	switch field {
	case FieldConfirmed:
		f.Confirmed = c
	case FieldRecovered:
		f.Recovered = c
	case FieldDeaths:
		f.Deaths = c
	case FieldHospitalized:
		f.Hospitalized = c
	case FieldICU:
		f.ICU = c
	case FieldTested:
		f.Tested = c
	}
}
