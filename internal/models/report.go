package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SlideType discriminates report slide variants.
type SlideType string

const (
	SlideTypeCover  SlideType = "cover"
	SlideTypeNews   SlideType = "news"
	SlideTypeMarket SlideType = "market"
)

// NewsItem is one analyzed news entry on a news slide.
// Bullets[0] always carries the summary derived from the analysis entry
// at the same index as the feed item that produced it.
type NewsItem struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Insight string   `json:"insight,omitempty"`
}

// ReportSlide is a tagged variant: cover, news, or market.
// Only the fields for the active variant are populated.
type ReportSlide struct {
	Type     SlideType
	Title    string
	Subtitle string
	News     []NewsItem
	Quotes   []QuoteDatum
}

// coverSlideJSON, newsSlideJSON and marketSlideJSON are the wire shapes.
// News and market slides both serialize their payload as "items", matching
// the document format consumed downstream.
type coverSlideJSON struct {
	Type     SlideType `json:"type"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
}

type newsSlideJSON struct {
	Type  SlideType  `json:"type"`
	Items []NewsItem `json:"items"`
}

type marketSlideJSON struct {
	Type  SlideType    `json:"type"`
	Title string       `json:"title"`
	Items []QuoteDatum `json:"items"`
}

// MarshalJSON serializes the active variant only.
func (s ReportSlide) MarshalJSON() ([]byte, error) {
	switch s.Type {
	case SlideTypeCover:
		return json.Marshal(coverSlideJSON{Type: s.Type, Title: s.Title, Subtitle: s.Subtitle})
	case SlideTypeNews:
		items := s.News
		if items == nil {
			items = []NewsItem{}
		}
		return json.Marshal(newsSlideJSON{Type: s.Type, Items: items})
	case SlideTypeMarket:
		items := s.Quotes
		if items == nil {
			items = []QuoteDatum{}
		}
		return json.Marshal(marketSlideJSON{Type: s.Type, Title: s.Title, Items: items})
	default:
		return nil, fmt.Errorf("unknown slide type: %q", s.Type)
	}
}

// UnmarshalJSON restores the variant from the type discriminator.
func (s *ReportSlide) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type SlideType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Type {
	case SlideTypeCover:
		var c coverSlideJSON
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		*s = ReportSlide{Type: c.Type, Title: c.Title, Subtitle: c.Subtitle}
	case SlideTypeNews:
		var n newsSlideJSON
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = ReportSlide{Type: n.Type, News: n.Items}
	case SlideTypeMarket:
		var m marketSlideJSON
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*s = ReportSlide{Type: m.Type, Title: m.Title, Quotes: m.Items}
	default:
		return fmt.Errorf("unknown slide type: %q", probe.Type)
	}
	return nil
}

// Report is the assembled briefing document. Reports are immutable after
// assembly: a new run supersedes the previous report, it never mutates it.
type Report struct {
	ID          string        `json:"id" badgerhold:"key"`
	Date        string        `json:"date"` // YYYY.MM.DD
	Time        string        `json:"time"`
	Slides      []ReportSlide `json:"slides"`
	IsAIFilled  bool          `json:"isAIFilled"`
	ContentHash string        `json:"contentHash"`

	// Analysis attribution, populated when IsAIFilled is true.
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// ContentMarkdown is a human-readable audit body persisted with the
	// report. It is never rendered by this service.
	ContentMarkdown string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewsSlides returns the news slides in order.
func (r *Report) NewsSlides() []ReportSlide {
	var out []ReportSlide
	for _, s := range r.Slides {
		if s.Type == SlideTypeNews {
			out = append(out, s)
		}
	}
	return out
}

// NewsItemCount returns the total number of news items across slides.
func (r *Report) NewsItemCount() int {
	n := 0
	for _, s := range r.Slides {
		if s.Type == SlideTypeNews {
			n += len(s.News)
		}
	}
	return n
}
