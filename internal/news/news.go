// Package news fetches flash-news items from either the English MktNews feed
// or the Chinese Cailianshe feed and normalizes them for display.
package news

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Shanghai is the fixed reporting time zone for news timestamps.
var Shanghai = mustLoadLocation("Asia/Shanghai")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// Importance is the 3-tier urgency mark on a news item.
type Importance int

const (
	ImportanceLow Importance = iota
	ImportanceMedium
	ImportanceHigh
)

// Item is one normalized flash-news record.
type Item struct {
	Time       time.Time
	Importance Importance
	Text       string
}

// Fetcher returns at most count normalized items. A failed fetch yields an
// error and no items; the monitor renders whatever it already has.
type Fetcher interface {
	Fetch(count int) ([]Item, error)
}

// StripMarkup removes HTML tags and collapses whitespace in a news body.
func StripMarkup(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
