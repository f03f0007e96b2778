package models

// Direction indicates which way a quote moved since the previous close.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// QuoteDatum is one display-formatted market quote. A symbol that failed
// to fetch produces no datum at all: absence, not a zero value, signals
// failure.
type QuoteDatum struct {
	Name          string    `json:"name"`
	Value         string    `json:"value"`
	ChangePercent string    `json:"change"` // signed, e.g. "+1.23%"
	Direction     Direction `json:"status"`
}

// MarketBucket is a named, ordered grouping of quotes within a snapshot
// (e.g. domestic indices, crypto).
type MarketBucket struct {
	Key   string       `json:"key"`
	Title string       `json:"title"`
	Items []QuoteDatum `json:"items"`
}

// MarketSnapshot groups the quotes fetched in one pipeline run. Buckets
// are always present, in catalog order, even when all of their symbols
// failed; callers render empty buckets gracefully.
type MarketSnapshot struct {
	Buckets []MarketBucket `json:"buckets"`
}

// Bucket returns the bucket with the given key, or nil.
func (s *MarketSnapshot) Bucket(key string) *MarketBucket {
	for i := range s.Buckets {
		if s.Buckets[i].Key == key {
			return &s.Buckets[i]
		}
	}
	return nil
}

// TotalItems returns the number of quotes across all buckets.
func (s *MarketSnapshot) TotalItems() int {
	n := 0
	for _, b := range s.Buckets {
		n += len(b.Items)
	}
	return n
}

// IsEmpty reports whether every bucket is empty.
func (s *MarketSnapshot) IsEmpty() bool {
	return s.TotalItems() == 0
}
