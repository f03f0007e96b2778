package feeds

import (
	"testing"

	"github.com/ternarybob/nuntium/internal/models"
)

func TestFilterItems(t *testing.T) {
	items := []models.FeedItem{
		{Title: "[포토] 증시 현장"},
		{Title: "Exports rise in July"},
		{Title: "[부고] 아무개"},
		{Title: "Rates held steady"},
	}

	got := filterItems(items, DefaultExcludeMarkers)
	if len(got) != 2 {
		t.Fatalf("expected 2 items after filtering, got %d", len(got))
	}
	if got[0].Title != "Exports rise in July" || got[1].Title != "Rates held steady" {
		t.Errorf("filter changed item order: %+v", got)
	}
}

func TestFilterItemsNoMarkers(t *testing.T) {
	items := []models.FeedItem{{Title: "[포토] kept when no markers"}}
	if got := filterItems(items, nil); len(got) != 1 {
		t.Errorf("empty marker list should keep everything, got %d items", len(got))
	}
}
