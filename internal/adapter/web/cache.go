package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/covid-timeseries-etl/internal/observability"
)

const cacheExt = ".html"

// ErrNotCached is returned in offline mode for a URL with no cache file.
var ErrNotCached = errors.New("page not cached")

// CachedFetcher wraps a Fetcher with an on-disk cache. A cached page is
// never refetched, so runs over the same cache are deterministic.
type CachedFetcher struct {
	inner   Fetcher
	dir     string
	offline bool
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator storing pages under dir. In
// offline mode inner is never called and may be nil.
func NewCachedFetcher(inner Fetcher, dir string, offline bool, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		dir:     dir,
		offline: offline,
		metrics: metrics,
	}
}

// Offline reports whether the cache is the only page source.
func (c *CachedFetcher) Offline() bool { return c.offline }

func (c *CachedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	path := filepath.Join(c.dir, cacheFileName(url))
	data, err := os.ReadFile(path)
	if err == nil {
		c.metrics.PageCache.WithLabelValues("hit").Inc()
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}

	c.metrics.PageCache.WithLabelValues("miss").Inc()
	if c.offline {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, url)
	}

	data, err = c.inner.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return nil, fmt.Errorf("write cache %s: %w", path, err)
	}
	return data, nil
}

// CachedURLs lists the URLs that have a cache file, sorted.
func (c *CachedFetcher) CachedURLs() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list cache %s: %w", c.dir, err)
	}

	var urls []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, cacheExt) {
			continue
		}
		urls = append(urls, cacheURL(name))
	}
	sort.Strings(urls)
	return urls, nil
}

// cacheFileName maps a URL to its cache file: every '/' becomes '_'.
func cacheFileName(url string) string {
	return strings.ReplaceAll(url, "/", "_") + cacheExt
}

// cacheURL inverts cacheFileName. Release slugs use hyphens, so '_' in a
// file name always stands for '/'.
func cacheURL(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, cacheExt), "_", "/")
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
