package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/covid-timeseries-etl/internal/domain"
	"github.com/couchcryptid/covid-timeseries-etl/internal/observability"
)

// ReleaseSource returns the releases to extract from.
type ReleaseSource interface {
	Releases(ctx context.Context) ([]domain.Release, error)
}

// Transformer reduces releases to at most one daily fact per date.
type Transformer interface {
	Transform(ctx context.Context, releases []domain.Release) (map[string]domain.DailyFact, error)
}

// ArtifactLoader writes a finished artifact to a destination.
type ArtifactLoader interface {
	Load(ctx context.Context, a *domain.Artifact, run domain.RunInfo) error
}

// Reference is the hand-maintained data merged with the scraped facts.
type Reference struct {
	Events    []domain.ManualEvent
	Overrides []domain.AbsoluteOverride
}

// DefaultReference returns the built-in manual table and overrides.
func DefaultReference() Reference {
	return Reference{
		Events:    domain.ManualEvents(),
		Overrides: domain.AbsoluteOverrides(),
	}
}

// Pipeline runs one extract-reconcile-load batch.
type Pipeline struct {
	source      ReleaseSource
	transformer Transformer
	reference   Reference
	loaders     []ArtifactLoader
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline with the given stages and observability. Loaders run
// in order; the first failure stops the run.
func New(s ReleaseSource, t Transformer, ref Reference, loaders []ArtifactLoader, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:      s,
		transformer: t,
		reference:   ref,
		loaders:     loaders,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run executes the batch and returns the artifact it loaded.
func (p *Pipeline) Run(ctx context.Context) (*domain.Artifact, error) {
	start := p.clock.Now()
	run := domain.RunInfo{
		ID:          uuid.NewString(),
		Country:     domain.Country,
		GeneratedAt: start,
	}
	logger := p.logger.With("run_id", run.ID)
	logger.Info("run started")

	releases, err := p.source.Releases(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract releases: %w", err)
	}

	facts, err := p.transformer.Transform(ctx, releases)
	if err != nil {
		return nil, fmt.Errorf("transform releases: %w", err)
	}
	logger.Info("releases transformed", "releases", len(releases), "days", len(facts))

	artifact, err := Reconcile(facts, p.reference)
	if err != nil {
		return nil, err
	}

	for _, l := range p.loaders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.Load(ctx, artifact, run); err != nil {
			return nil, fmt.Errorf("load artifact: %w", err)
		}
	}

	elapsed := p.clock.Since(start)
	p.metrics.SeriesDays.Set(float64(len(artifact.TimeseriesDates)))
	p.metrics.RunDuration.Set(elapsed.Seconds())
	p.metrics.LastSuccessUnixTime.Set(float64(p.clock.Now().Unix()))

	logger.Info("run finished", "days", len(artifact.TimeseriesDates), "duration", elapsed)
	return artifact, nil
}

// Reconcile merges scraped facts with the reference data, fills the gaps and
// projects the result into an artifact.
func Reconcile(facts map[string]domain.DailyFact, ref Reference) (*domain.Artifact, error) {
	series, err := domain.Merge(facts, ref.Events, ref.Overrides)
	if err != nil {
		return nil, fmt.Errorf("merge series: %w", err)
	}
	series = domain.FillCalendar(domain.FillForward(series))

	artifact, err := domain.BuildArtifact(series)
	if err != nil {
		return nil, fmt.Errorf("build artifact: %w", err)
	}
	return artifact, nil
}
