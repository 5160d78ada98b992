package web

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"

	"github.com/couchcryptid/covid-timeseries-etl/internal/observability"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

// metricsText renders m in the text exposition format.
func metricsText(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("write metrics: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(data)
}

type listingEntry struct {
	title string
	href  string
	stamp string
}

func listingPage(entries ...listingEntry) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div class="view-content"><div class="item-list"><ul>`)
	for _, e := range entries {
		fmt.Fprintf(&sb, `<li class="views-row"><div class="views-field views-field-title"><span class="field-content"><a href="%s">%s</a></span></div>`+
			`<div class="views-field-created"><span class="date-display-single" property="dc:date" content="%s">date</span></div></li>`,
			e.href, e.title, e.stamp)
	}
	sb.WriteString(`</ul></div></div></body></html>`)
	return sb.String()
}

func releasePage(stamp string, paragraphs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html><head><title>release</title></head><body>`)
	fmt.Fprintf(&sb, `<span class="date-display-single" content="%s">date</span>`, stamp)
	sb.WriteString(`<div class="field field-name-body field-type-text-with-summary"><div class="field-items"><div class="field-item even">`)
	for _, p := range paragraphs {
		fmt.Fprintf(&sb, "<p>%s</p>\n", p)
	}
	sb.WriteString(`</div></div></div></body></html>`)
	return sb.String()
}

// fakeSite serves listing pages under /releases?page=N and release pages
// by path, counting requests per path.
type fakeSite struct {
	listings map[string]string
	pages    map[string]string
	hits     map[string]*atomic.Int32

	mu           sync.Mutex
	listingPages []string
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		listings: make(map[string]string),
		pages:    make(map[string]string),
		hits:     make(map[string]*atomic.Int32),
	}
}

func (f *fakeSite) addPage(path, body string) {
	f.pages[path] = body
	f.hits[path] = &atomic.Int32{}
}

func (f *fakeSite) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/releases" {
			page := r.URL.Query().Get("page")
			f.mu.Lock()
			f.listingPages = append(f.listingPages, page)
			f.mu.Unlock()
			body, ok := f.listings[page]
			if !ok {
				body = listingPage()
			}
			_, _ = io.WriteString(w, body)
			return
		}
		body, ok := f.pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		f.hits[r.URL.Path].Add(1)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
