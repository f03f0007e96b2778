package llm

import (
	"fmt"
	"strings"

	"github.com/ternarybob/nuntium/internal/models"
)

// BuildAnalysisPrompt renders the bulk analysis prompt for a batch of
// feed items. All items go in one request; the contract demands exactly
// one JSON entry per item, in item order, so responses can be validated
// and aligned by index.
func BuildAnalysisPrompt(items []models.FeedItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a financial news analyst. Analyze the following %d news items.\n\n", len(items))
	for i, item := range items {
		fmt.Fprintf(&b, "%d. Title: %s\n", i+1, item.Title)
		if item.CleanDescription != "" {
			fmt.Fprintf(&b, "   Description: %s\n", item.CleanDescription)
		}
	}

	fmt.Fprintf(&b, `
For each item, write:
- "summary": one sentence capturing the core fact, under 120 characters.
- "insight": one sentence on the likely market impact, under 120 characters.

Respond with ONLY a JSON array of exactly %d objects, in the same order
as the items above, each shaped as {"summary": "...", "insight": "..."}.
No prose, no markdown fences, no keys other than summary and insight.
`, len(items))

	return b.String()
}
