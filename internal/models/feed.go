package models

// FeedItem is a single normalized news entry parsed from a syndication
// feed. Items are immutable after parsing.
type FeedItem struct {
	// Title is the entry title with markup removed.
	Title string `json:"title"`

	// RawDescription is the description as delivered by the feed,
	// markup included. Kept for the audit trail only; never used in
	// prompts.
	RawDescription string `json:"-"`

	// CleanDescription is the description with all markup stripped and
	// length capped, safe for prompt construction.
	CleanDescription string `json:"description"`
}
