package feeds

import (
	"strings"
	"testing"
)

const cdataFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Economy</title>
<item>
<title><![CDATA[Central bank holds rates steady]]></title>
<description><![CDATA[<p>The central bank kept its <b>benchmark rate</b> unchanged.</p>]]></description>
</item>
<item>
<title>Exports rise 4.2% in July</title>
<description>Semiconductor shipments drove the gain &amp; outlook improved.</description>
</item>
</channel>
</rss>`

func TestParseFeed(t *testing.T) {
	items, err := parseFeed([]byte(cdataFeed), 300)
	if err != nil {
		t.Fatalf("parseFeed failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if items[0].Title != "Central bank holds rates steady" {
		t.Errorf("CDATA title not preferred: %q", items[0].Title)
	}
	if strings.Contains(items[0].CleanDescription, "<") {
		t.Errorf("markup not stripped: %q", items[0].CleanDescription)
	}
	if !strings.Contains(items[0].CleanDescription, "benchmark rate") {
		t.Errorf("description text lost: %q", items[0].CleanDescription)
	}
	if !strings.Contains(items[0].RawDescription, "<b>") {
		t.Errorf("raw description should keep markup: %q", items[0].RawDescription)
	}

	if !strings.Contains(items[1].CleanDescription, "&") {
		t.Errorf("entity not decoded: %q", items[1].CleanDescription)
	}
}

func TestParseFeedSkipsUntitled(t *testing.T) {
	feed := `<rss><channel>
<item><title></title><description>orphan</description></item>
<item><title>Kept</title><description>d</description></item>
</channel></rss>`
	items, err := parseFeed([]byte(feed), 300)
	if err != nil {
		t.Fatalf("parseFeed failed: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Kept" {
		t.Fatalf("expected only the titled item, got %+v", items)
	}
}

func TestParseFeedEmpty(t *testing.T) {
	if _, err := parseFeed([]byte(`<rss><channel></channel></rss>`), 300); err == nil {
		t.Fatal("expected error for feed with no items")
	}
	if _, err := parseFeed([]byte(`not xml at all`), 300); err == nil {
		t.Fatal("expected error for malformed XML")
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello world", "hello world"},
		{"simple tags", "<p>hello <b>world</b></p>", "hello world"},
		{"collapses whitespace", "hello\n\n  world", "hello world"},
		{"nested markup", `<div><a href="x">link</a> text</div>`, "link text"},
		{"img only", `<img src="x.jpg"/>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripMarkup(tt.input); got != tt.want {
				t.Errorf("stripMarkup(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCapRunes(t *testing.T) {
	// Multi-byte text must be cut on rune boundaries.
	s := strings.Repeat("가", 10)
	if got := capRunes(s, 4); got != strings.Repeat("가", 4) {
		t.Errorf("capRunes cut mid-character: %q", got)
	}
	if got := capRunes("short", 300); got != "short" {
		t.Errorf("capRunes should not pad: %q", got)
	}
}
