package feeds

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/nuntium/internal/models"
)

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       rssText `xml:"title"`
	Description rssText `xml:"description"`
}

// rssText captures both the decoded character data and the raw inner
// XML so CDATA sections can be preferred over escaped text. Feeds in
// the wild mix both forms, sometimes within one document.
type rssText struct {
	Chars string `xml:",chardata"`
	Inner string `xml:",innerxml"`
}

var (
	cdataPattern = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// text returns the CDATA content when present, otherwise the decoded
// character data.
func (t rssText) text() string {
	if m := cdataPattern.FindStringSubmatch(t.Inner); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(t.Chars)
}

// parseFeed parses an RSS document into normalized feed items. Items
// without a title are dropped; a document with no parseable items is an
// error so the caller can count the feed as failed.
func parseFeed(data []byte, maxDescription int) ([]models.FeedItem, error) {
	var doc rssDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed XML: %w", err)
	}

	items := make([]models.FeedItem, 0, len(doc.Channel.Items))
	for _, raw := range doc.Channel.Items {
		title := stripMarkup(raw.Title.text())
		if title == "" {
			continue
		}
		desc := raw.Description.text()
		items = append(items, models.FeedItem{
			Title:            title,
			RawDescription:   desc,
			CleanDescription: capRunes(stripMarkup(desc), maxDescription),
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("feed contained no usable items")
	}
	return items, nil
}

// stripMarkup removes HTML from feed text and collapses whitespace.
// goquery handles nested markup and entities; the regex fallback covers
// fragments goquery cannot parse.
func stripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
	}
	out := s
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
		out = doc.Text()
	} else {
		out = tagPattern.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(spacePattern.ReplaceAllString(out, " "))
}

// capRunes truncates to max runes. Feed descriptions are multi-byte
// text, so byte slicing would split characters.
func capRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
