package feeds

import (
	"strings"

	"github.com/ternarybob/nuntium/internal/models"
)

// DefaultExcludeMarkers flag non-article entries the source feeds are
// known to carry: photo galleries, personnel notices, obituaries, and
// similar wire-service filler.
var DefaultExcludeMarkers = []string{
	"[포토]",
	"[사진]",
	"[인사]",
	"[부고]",
	"[알림]",
	"[표]",
	"[게시판]",
}

// filterItems drops entries whose title contains any exclude marker.
func filterItems(items []models.FeedItem, markers []string) []models.FeedItem {
	if len(markers) == 0 {
		return items
	}
	out := make([]models.FeedItem, 0, len(items))
	for _, item := range items {
		if containsMarker(item.Title, markers) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func containsMarker(title string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(title, m) {
			return true
		}
	}
	return false
}
