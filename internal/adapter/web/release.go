package web

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// publishedLayout is the wall-clock part of the date span's content
// attribute; the trailing UTC offset is dropped.
const publishedLayout = "2006-01-02T15:04:05"

var (
	// ErrNoPublishDate is returned for a release page without a date span.
	ErrNoPublishDate = errors.New("release has no publish date")

	// ErrNoBody is returned for a release page without a body field.
	ErrNoBody = errors.New("release has no body")
)

// ParseRelease extracts the publish time and body text of a release page.
func ParseRelease(page []byte) (time.Time, string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return time.Time{}, "", fmt.Errorf("parse release: %w", err)
	}

	span := findFirst(doc, element("span", "date-display-single"))
	if span == nil {
		return time.Time{}, "", ErrNoPublishDate
	}
	stamp, _, _ := strings.Cut(getAttr(span, "content"), "+")
	published, err := time.Parse(publishedLayout, stamp)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %w", ErrNoPublishDate, err)
	}

	bodyDiv := findFirst(doc, element("div", "field-name-body"))
	if bodyDiv == nil {
		return time.Time{}, "", ErrNoBody
	}
	return published, textContent(bodyDiv), nil
}
