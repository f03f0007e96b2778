package reports

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
	"github.com/ternarybob/nuntium/internal/models"
)

// bracketPrefixPattern matches wire-service tags at the start of a
// title, e.g. "[속보] [단독] Headline".
var bracketPrefixPattern = regexp.MustCompile(`^\s*(?:\[[^\]]*\]\s*)+`)

const degradedSummaryRunes = 100

// Assembler builds report documents from fetched and analyzed inputs.
type Assembler struct {
	config    common.ReportConfig
	catalog   *common.Catalog
	converter *md.Converter
	now       func() time.Time
}

// NewAssembler creates a report assembler.
func NewAssembler(config common.ReportConfig, catalog *common.Catalog) *Assembler {
	return &Assembler{
		config:    config,
		catalog:   catalog,
		converter: md.NewConverter("", true, nil),
		now:       time.Now,
	}
}

// Assemble builds a full report from analyzed news and market data.
// Analysis entries align with items by index.
func (a *Assembler) Assemble(items []models.FeedItem, analysis models.AnalysisResult, snapshot *models.MarketSnapshot, winner interfaces.Candidate) *models.Report {
	newsItems := make([]models.NewsItem, len(items))
	for i, item := range items {
		newsItems[i] = models.NewsItem{
			ID:      i + 1,
			Title:   CleanTitle(item.Title),
			Bullets: []string{analysis[i].Summary},
			Insight: analysis[i].Insight,
		}
	}

	report := a.build(items, newsItems, snapshot)
	report.IsAIFilled = true
	report.Provider = string(winner.Provider)
	report.Model = winner.Model
	return report
}

// AssembleDegraded builds a report without analysis: the summary is the
// leading slice of the item's own description and the insight is the
// configured fallback line. Degraded reports are marked so they are
// never cached or persisted.
func (a *Assembler) AssembleDegraded(items []models.FeedItem, snapshot *models.MarketSnapshot) *models.Report {
	newsItems := make([]models.NewsItem, len(items))
	for i, item := range items {
		newsItems[i] = models.NewsItem{
			ID:      i + 1,
			Title:   CleanTitle(item.Title),
			Bullets: []string{degradedSummary(item.CleanDescription)},
			Insight: a.config.FallbackInsight,
		}
	}

	report := a.build(items, newsItems, snapshot)
	report.IsAIFilled = false
	return report
}

func (a *Assembler) build(items []models.FeedItem, newsItems []models.NewsItem, snapshot *models.MarketSnapshot) *models.Report {
	now := a.now()

	slides := []models.ReportSlide{{
		Type:     models.SlideTypeCover,
		Title:    a.config.CoverTitle,
		Subtitle: a.config.CoverSubtitle,
	}}

	perSlide := a.config.ItemsPerSlide
	if perSlide <= 0 {
		perSlide = 2
	}
	for start := 0; start < len(newsItems); start += perSlide {
		end := start + perSlide
		if end > len(newsItems) {
			end = len(newsItems)
		}
		slides = append(slides, models.ReportSlide{
			Type: models.SlideTypeNews,
			News: newsItems[start:end],
		})
	}

	slides = append(slides, a.marketSlides(snapshot)...)

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}

	report := &models.Report{
		ID:          common.NewReportID(),
		Date:        now.Format("2006.01.02"),
		Time:        editionTime(now),
		Slides:      slides,
		ContentHash: common.ContentHash(titles),
		CreatedAt:   now,
	}
	report.ContentMarkdown = a.auditBody(report, items, snapshot)
	return report
}

// marketSlides maps catalog market slides onto report slides. A slide
// is emitted even when its buckets came back empty so the layout stays
// stable across partial outages.
func (a *Assembler) marketSlides(snapshot *models.MarketSnapshot) []models.ReportSlide {
	if snapshot == nil {
		return nil
	}

	var out []models.ReportSlide
	for _, def := range a.catalog.MarketSlides {
		slide := models.ReportSlide{
			Type:   models.SlideTypeMarket,
			Title:  def.Title,
			Quotes: []models.QuoteDatum{},
		}
		for _, key := range def.Buckets {
			if bucket := snapshot.Bucket(key); bucket != nil {
				slide.Quotes = append(slide.Quotes, bucket.Items...)
			}
		}
		out = append(out, slide)
	}
	return out
}

// auditBody renders the report as markdown for the stored audit trail.
// Raw feed markup goes through the HTML-to-markdown converter so the
// original description survives in a readable form.
func (a *Assembler) auditBody(report *models.Report, items []models.FeedItem, snapshot *models.MarketSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n%s %s\n\n## News\n\n", a.config.CoverTitle, report.Date, report.Time)

	newsIdx := 0
	for _, slide := range report.Slides {
		if slide.Type != models.SlideTypeNews {
			continue
		}
		for _, n := range slide.News {
			fmt.Fprintf(&b, "### %d. %s\n\n", n.ID, n.Title)
			if newsIdx < len(items) && items[newsIdx].RawDescription != "" {
				if converted, err := a.converter.ConvertString(items[newsIdx].RawDescription); err == nil && converted != "" {
					fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(converted))
				}
			}
			for _, bullet := range n.Bullets {
				fmt.Fprintf(&b, "- %s\n", bullet)
			}
			if n.Insight != "" {
				fmt.Fprintf(&b, "- Insight: %s\n", n.Insight)
			}
			b.WriteString("\n")
			newsIdx++
		}
	}

	if snapshot != nil && !snapshot.IsEmpty() {
		b.WriteString("## Markets\n\n")
		for _, bucket := range snapshot.Buckets {
			for _, q := range bucket.Items {
				fmt.Fprintf(&b, "- %s: %s (%s)\n", q.Name, q.Value, q.ChangePercent)
			}
		}
	}

	return b.String()
}

// CleanTitle strips leading bracket tags from a headline.
func CleanTitle(title string) string {
	cleaned := strings.TrimSpace(bracketPrefixPattern.ReplaceAllString(title, ""))
	if cleaned == "" {
		// A title that is nothing but tags is kept as-is rather than
		// blanked.
		return strings.TrimSpace(title)
	}
	return cleaned
}

func degradedSummary(description string) string {
	if description == "" {
		return "No description available."
	}
	runes := []rune(description)
	if len(runes) <= degradedSummaryRunes {
		return description
	}
	return string(runes[:degradedSummaryRunes]) + "..."
}

// editionTime labels the report with its edition slot: mornings get the
// 8 AM label, afternoons the 8 PM one.
func editionTime(now time.Time) string {
	if now.Hour() < 12 {
		return "08:00 AM"
	}
	return "08:00 PM"
}
