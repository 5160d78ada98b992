package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-timeseries-etl/internal/domain"
	"github.com/couchcryptid/covid-timeseries-etl/internal/observability"
	"github.com/couchcryptid/covid-timeseries-etl/internal/pipeline"
)

// --- mocks ---

type mockSource struct {
	releases []domain.Release
	err      error
}

func (m *mockSource) Releases(_ context.Context) ([]domain.Release, error) {
	return m.releases, m.err
}

type mockLoader struct {
	artifacts []*domain.Artifact
	runs      []domain.RunInfo
	err       error
}

func (m *mockLoader) Load(_ context.Context, a *domain.Artifact, run domain.RunInfo) error {
	if m.err != nil {
		return m.err
	}
	m.artifacts = append(m.artifacts, a)
	m.runs = append(m.runs, run)
	return nil
}

// --- helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTransformer(t *testing.T, metrics *observability.Metrics) *pipeline.ReleaseTransformer {
	t.Helper()
	table, err := domain.DefaultPatterns()
	require.NoError(t, err)
	return pipeline.NewTransformer(table, discardLogger(), metrics)
}

func metricsText(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func release(url string, published time.Time, paragraphs ...string) domain.Release {
	return domain.Release{
		URL:       url,
		Title:     "COVID-19 update",
		Published: published,
		Body:      strings.Join(paragraphs, "\n"),
	}
}

func totals(confirmed, recovered int) []string {
	return []string{
		"This brings the total number of confirmed and probable cases in New Zealand to " + strconv.Itoa(confirmed) + ".",
		"There are " + strconv.Itoa(recovered) + " people who have recovered.",
	}
}

// smallReference covers 2020-02-28 to 2020-03-02 so tests do not depend on
// the shipped manual table.
func smallReference() pipeline.Reference {
	return pipeline.Reference{
		Events: []domain.ManualEvent{
			{Date: "2020-03-02", Confirmed: domain.Known(1), Sources: map[domain.Source]int{domain.SourceOverseas: 1}},
			{Date: "2020-02-28", Confirmed: domain.Known(1), Sources: map[domain.Source]int{domain.SourceOverseas: 1}},
		},
	}
}

var (
	march4Morning = time.Date(2020, 3, 4, 9, 0, 0, 0, time.UTC)
	march4Noon    = time.Date(2020, 3, 4, 13, 0, 0, 0, time.UTC)
)

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	now := time.Date(2020, 3, 5, 1, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	metrics := observability.NewMetricsForTesting()

	src := &mockSource{releases: []domain.Release{
		release("https://example.org/update", march4Noon, totals(5, 2)...),
		release("https://example.org/briefing", march4Noon, "The Director-General will give an update at 1pm."),
	}}
	ldr := &mockLoader{}
	second := &mockLoader{}

	p := pipeline.New(src, newTestTransformer(t, metrics), smallReference(), []pipeline.ArtifactLoader{ldr, second}, clock, discardLogger(), metrics)

	a, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, ldr.artifacts, 1)
	require.Len(t, second.artifacts, 1)
	assert.Same(t, a, ldr.artifacts[0])

	assert.Equal(t, []string{"2020-02-28", "2020-02-29", "2020-03-01", "2020-03-02", "2020-03-03", "2020-03-04"}, a.TimeseriesDates)
	k := domain.Known
	assert.Equal(t, []domain.Count{k(1), k(1), k(1), k(2), k(2), k(5)}, a.Total.Confirmed)
	assert.Equal(t, []domain.Count{k(0), k(0), k(0), k(0), k(0), k(2)}, a.Total.Recovered)
	assert.Equal(t, []int{1, 1, 1, 2, 2, 0}, a.Sources.Subseries[domain.SourceOverseas.String()])

	run := ldr.runs[0]
	assert.Equal(t, "NZL", run.Country)
	assert.Equal(t, now, run.GeneratedAt)
	_, err = uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, second.runs[0], "loaders share one run")

	text := metricsText(t, metrics)
	assert.Contains(t, text, "covid_etl_series_days 6")
	assert.Contains(t, text, "covid_etl_releases_extracted_total 1")
	assert.Contains(t, text, `covid_etl_releases_skipped_total{reason="no_confirmed"} 1`)
	assert.Contains(t, text, "covid_etl_last_success_timestamp_seconds 1.58337e+09")
}

func TestPipeline_Run_SourceError(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	ldr := &mockLoader{}
	src := &mockSource{err: errors.New("listing unavailable")}

	p := pipeline.New(src, newTestTransformer(t, metrics), smallReference(), []pipeline.ArtifactLoader{ldr}, clockwork.NewFakeClock(), discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing unavailable")
	assert.Empty(t, ldr.artifacts)
}

func TestPipeline_Run_LoaderErrorStops(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	failing := &mockLoader{err: errors.New("disk full")}
	after := &mockLoader{}

	p := pipeline.New(&mockSource{}, newTestTransformer(t, metrics), smallReference(), []pipeline.ArtifactLoader{failing, after}, clockwork.NewFakeClock(), discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load artifact: disk full")
	assert.Empty(t, after.artifacts)
	assert.Contains(t, metricsText(t, metrics), "covid_etl_series_days 0")
}

func TestPipeline_Run_IncompleteSeries(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	src := &mockSource{releases: []domain.Release{
		release("https://example.org/a", march4Noon,
			"This brings the total number of confirmed and probable cases in New Zealand to 5."),
	}}

	p := pipeline.New(src, newTestTransformer(t, metrics), smallReference(), nil, clockwork.NewFakeClock(), discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrIncompleteSeries)
	assert.Contains(t, err.Error(), "2020-03-04 has no recovered count")
}

func TestPipeline_Run_ParseErrorAborts(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	src := &mockSource{releases: []domain.Release{
		release("https://example.org/bad", march4Noon, append(totals(5, 2),
			"New Zealand now has several deaths associated with COVID-19.")...),
	}}

	p := pipeline.New(src, newTestTransformer(t, metrics), smallReference(), nil, clockwork.NewFakeClock(), discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, err.Error(), "https://example.org/bad")
	assert.Contains(t, metricsText(t, metrics), `covid_etl_releases_skipped_total{reason="parse"} 1`)
}

func TestPipeline_Run_OrphanOverride(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	ref := smallReference()
	ref.Overrides = []domain.AbsoluteOverride{{Date: "2021-01-01", Confirmed: domain.Known(1)}}

	p := pipeline.New(&mockSource{}, newTestTransformer(t, metrics), ref, nil, clockwork.NewFakeClock(), discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrOrphanOverride)
}

func TestReconcile_DefaultReference(t *testing.T) {
	a, err := pipeline.Reconcile(nil, pipeline.DefaultReference())
	require.NoError(t, err)

	require.NotEmpty(t, a.TimeseriesDates)
	assert.Equal(t, "2020-02-28", a.TimeseriesDates[0])
	assert.Equal(t, "2020-04-01", a.TimeseriesDates[len(a.TimeseriesDates)-1])
	assert.NoError(t, domain.ValidateArtifact(a))
}

func TestReleaseTransformer_EarliestPublishWins(t *testing.T) {
	for name, releases := range map[string][]domain.Release{
		"newest first listing": {
			release("https://example.org/noon", march4Noon, totals(1039, 2)...),
			release("https://example.org/morning", march4Morning, totals(1000, 1)...),
		},
		"oldest first": {
			release("https://example.org/morning", march4Morning, totals(1000, 1)...),
			release("https://example.org/noon", march4Noon, totals(1039, 2)...),
		},
	} {
		t.Run(name, func(t *testing.T) {
			metrics := observability.NewMetricsForTesting()
			facts, err := newTestTransformer(t, metrics).Transform(context.Background(), releases)
			require.NoError(t, err)

			require.Len(t, facts, 1)
			assert.Equal(t, domain.Known(1000), facts["2020-03-04"].Confirmed)
			assert.Equal(t, domain.Known(1), facts["2020-03-04"].Recovered)

			text := metricsText(t, metrics)
			assert.Contains(t, text, `covid_etl_releases_skipped_total{reason="superseded"} 1`)
			assert.Contains(t, text, `covid_etl_pattern_matches_total{pattern="total-cases-is",rule="confirmed"} 2`)
		})
	}
}

func TestReleaseTransformer_TieKeepsLastListed(t *testing.T) {
	releases := []domain.Release{
		release("https://example.org/first", march4Noon, totals(5, 2)...),
		release("https://example.org/second", march4Noon, totals(4, 1)...),
	}
	facts, err := newTestTransformer(t, observability.NewMetricsForTesting()).Transform(context.Background(), releases)
	require.NoError(t, err)
	assert.Equal(t, domain.Known(4), facts["2020-03-04"].Confirmed)
}

func TestReleaseTransformer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestTransformer(t, observability.NewMetricsForTesting()).Transform(ctx, []domain.Release{
		release("https://example.org/a", march4Noon, totals(5, 2)...),
	})
	require.ErrorIs(t, err, context.Canceled)
}
