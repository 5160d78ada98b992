package web

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ListingItem is one entry of a media-release listing page.
type ListingItem struct {
	Title string
	URL   string
	Year  int // 0 when the entry has no date
}

// IsCaseUpdate reports whether the title looks like a daily case update.
func (it ListingItem) IsCaseUpdate() bool {
	return strings.Contains(it.Title, "COVID-19") || strings.Contains(it.Title, "new cases")
}

// ParseListing extracts the entries of one listing page. Relative links are
// resolved against origin.
func ParseListing(page []byte, origin string) ([]ListingItem, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	base, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse site origin %q: %w", origin, err)
	}

	content := findFirst(doc, element("div", "view-content"))
	if content == nil {
		return nil, nil
	}

	var items []ListingItem
	for _, list := range findAll(content, element("div", "item-list")) {
		for _, li := range findAll(list, element("li", "")) {
			titleDiv := findFirst(li, element("div", "views-field-title"))
			if titleDiv == nil {
				continue
			}
			it := ListingItem{Title: strings.TrimSpace(textContent(titleDiv))}

			if a := findFirst(titleDiv, element("a", "")); a != nil {
				if ref, err := url.Parse(getAttr(a, "href")); err == nil {
					it.URL = base.ResolveReference(ref).String()
				}
			}
			if span := findFirst(li, element("span", "date-display-single")); span != nil {
				it.Year = parseYear(getAttr(span, "content"))
			}
			items = append(items, it)
		}
	}
	return items, nil
}

// parseYear reads the leading year of an ISO timestamp such as
// "2020-04-05T13:00:00+12:00".
func parseYear(content string) int {
	y, _, _ := strings.Cut(content, "-")
	n, err := strconv.Atoi(y)
	if err != nil {
		return 0
	}
	return n
}

// listingPageURL returns listingURL with its page query set to n.
func listingPageURL(listingURL string, n int) (string, error) {
	u, err := url.Parse(listingURL)
	if err != nil {
		return "", fmt.Errorf("parse listing url %q: %w", listingURL, err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
