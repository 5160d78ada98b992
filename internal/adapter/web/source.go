package web

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/covid-timeseries-etl/internal/config"
	"github.com/couchcryptid/covid-timeseries-etl/internal/domain"
	"github.com/couchcryptid/covid-timeseries-etl/internal/observability"
)

// Options control how releases are discovered and fetched.
type Options struct {
	ListingURL  string
	SiteOrigin  string
	MinYear     int
	MaxPages    int
	Concurrency int
}

// OptionsFromConfig maps the run configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ListingURL:  cfg.ListingURL,
		SiteOrigin:  cfg.SiteOrigin,
		MinYear:     cfg.ListingMinYear,
		MaxPages:    cfg.ListingMaxPages,
		Concurrency: cfg.FetchConcurrency,
	}
}

// Source discovers case-update releases from the listing pages and loads
// each one through the page cache. It implements pipeline.ReleaseSource.
type Source struct {
	listing Fetcher
	pages   *CachedFetcher
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSource creates a release source. Listing pages are read through listing
// and never cached; release pages go through pages.
func NewSource(listing Fetcher, pages *CachedFetcher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Source {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Source{
		listing: listing,
		pages:   pages,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Releases returns every release that could be loaded, in listing order.
// A listing failure aborts; a release that fails to load is logged and
// skipped.
func (s *Source) Releases(ctx context.Context) ([]domain.Release, error) {
	var items []ListingItem
	var err error
	if s.pages.Offline() {
		items, err = s.cachedItems()
	} else {
		items, err = s.listReleases(ctx)
	}
	if err != nil {
		return nil, err
	}
	s.metrics.ReleasesListed.Add(float64(len(items)))
	s.logger.Info("releases listed", "count", len(items), "offline", s.pages.Offline())

	results := make([]*domain.Release, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, it := range items {
		g.Go(func() error {
			rel, err := s.loadRelease(gctx, it)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("release skipped", "url", it.URL, "error", err)
				s.metrics.ReleaseFetchErrors.Inc()
				return nil
			}
			results[i] = rel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch releases: %w", err)
	}

	releases := make([]domain.Release, 0, len(results))
	for _, r := range results {
		if r != nil {
			releases = append(releases, *r)
		}
	}
	return releases, nil
}

func (s *Source) loadRelease(ctx context.Context, it ListingItem) (*domain.Release, error) {
	page, err := s.pages.Fetch(ctx, it.URL)
	if err != nil {
		return nil, err
	}
	published, body, err := ParseRelease(page)
	if err != nil {
		return nil, err
	}
	return &domain.Release{
		URL:       it.URL,
		Title:     it.Title,
		Published: published,
		Body:      body,
	}, nil
}

// listReleases walks the listing pages from page 0 until a page ends with an
// entry older than MinYear, a page is empty, or MaxPages is reached.
func (s *Source) listReleases(ctx context.Context) ([]ListingItem, error) {
	var out []ListingItem
	seen := make(map[string]bool)

	for n := 0; n < s.opts.MaxPages; n++ {
		pageURL, err := listingPageURL(s.opts.ListingURL, n)
		if err != nil {
			return nil, err
		}
		page, err := s.listing.Fetch(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch listing page %d: %w", n, err)
		}
		s.metrics.ListingPagesFetched.Inc()

		items, err := ParseListing(page, s.opts.SiteOrigin)
		if err != nil {
			return nil, fmt.Errorf("listing page %d: %w", n, err)
		}
		if len(items) == 0 {
			break
		}

		for _, it := range items {
			if !it.IsCaseUpdate() || it.URL == "" || seen[it.URL] {
				continue
			}
			if it.Year != 0 && it.Year < s.opts.MinYear {
				continue
			}
			seen[it.URL] = true
			out = append(out, it)
		}

		if last := items[len(items)-1]; last.Year != 0 && last.Year < s.opts.MinYear {
			break
		}
	}
	return out, nil
}

func (s *Source) cachedItems() ([]ListingItem, error) {
	urls, err := s.pages.CachedURLs()
	if err != nil {
		return nil, err
	}
	items := make([]ListingItem, len(urls))
	for i, u := range urls {
		items[i] = ListingItem{URL: u}
	}
	return items, nil
}
