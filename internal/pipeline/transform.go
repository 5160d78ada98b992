package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/covid-timeseries-etl/internal/domain"
	"github.com/couchcryptid/covid-timeseries-etl/internal/observability"
)

// ReleaseTransformer implements Transformer with a domain.Extractor.
type ReleaseTransformer struct {
	extractor *domain.Extractor
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewTransformer creates a ReleaseTransformer over the compiled pattern table.
func NewTransformer(table *domain.PatternTable, logger *slog.Logger, metrics *observability.Metrics) *ReleaseTransformer {
	return &ReleaseTransformer{
		extractor: domain.NewExtractor(table),
		logger:    logger,
		metrics:   metrics,
	}
}

// Transform extracts a fact from every release and keys the contributing ones
// by publish date. When two releases share a date the earliest publish time
// wins; on a tie the one seen last is kept, which for a newest-first listing
// is the older entry. A fragment that fails to parse aborts the transform.
func (t *ReleaseTransformer) Transform(ctx context.Context, releases []domain.Release) (map[string]domain.DailyFact, error) {
	facts := make(map[string]domain.DailyFact)
	chosen := make(map[string]domain.Release)

	for _, rel := range releases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fact, matches, err := t.extractor.Extract(rel.Body)
		if err != nil {
			t.metrics.ReleasesSkipped.WithLabelValues("parse").Inc()
			return nil, fmt.Errorf("extract %s: %w", rel.URL, err)
		}
		for _, m := range matches {
			t.metrics.PatternMatches.WithLabelValues(m.Rule, m.Pattern).Inc()
		}

		date := rel.Date()
		if !fact.Contributes() {
			t.logger.Debug("release has no confirmed total", "url", rel.URL, "date", date)
			t.metrics.ReleasesSkipped.WithLabelValues("no_confirmed").Inc()
			continue
		}

		if prev, ok := chosen[date]; ok {
			loser := rel
			if !rel.Published.After(prev.Published) {
				loser = prev
				facts[date] = fact
				chosen[date] = rel
			}
			t.logger.Info("release superseded", "url", loser.URL, "date", date)
			t.metrics.ReleasesSkipped.WithLabelValues("superseded").Inc()
			continue
		}

		facts[date] = fact
		chosen[date] = rel
	}

	t.metrics.ReleasesExtracted.Add(float64(len(facts)))
	return facts, nil
}
