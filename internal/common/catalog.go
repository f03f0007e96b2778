package common

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Catalog is the YAML source catalog: which feeds to poll, which market
// symbols to quote, and how quotes group into buckets and slides. It is
// data, not code, so operators can change sources without a rebuild.
type Catalog struct {
	Feeds        []FeedSource   `yaml:"feeds" validate:"required,min=1,dive"`
	Buckets      []BucketDef    `yaml:"buckets" validate:"required,min=1,dive"`
	Symbols      []SymbolSource `yaml:"symbols" validate:"dive"`
	MarketSlides []MarketSlide  `yaml:"market_slides" validate:"dive"`
}

// FeedSource is one syndication feed endpoint.
type FeedSource struct {
	Name string `yaml:"name" validate:"required"`
	URL  string `yaml:"url" validate:"required,url"`
}

// BucketDef declares a quote bucket and its display title.
type BucketDef struct {
	Key   string `yaml:"key" validate:"required"`
	Title string `yaml:"title" validate:"required"`
}

// SymbolSource is one market symbol and where to fetch it from.
// Source selects the quote adapter ("yahoo" or "chart").
type SymbolSource struct {
	Name     string `yaml:"name" validate:"required"`
	Symbol   string `yaml:"symbol" validate:"required"`
	Source   string `yaml:"source" validate:"required,oneof=yahoo chart"`
	Endpoint string `yaml:"endpoint"` // chart source only
	Bucket   string `yaml:"bucket" validate:"required"`
}

// MarketSlide maps one or more buckets onto a single report slide.
type MarketSlide struct {
	Title   string   `yaml:"title" validate:"required"`
	Buckets []string `yaml:"buckets" validate:"required,min=1"`
}

// LoadCatalog reads and validates the source catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source catalog %s: %w", path, err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse source catalog %s: %w", path, err)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid source catalog %s: %w", path, err)
	}
	return &cat, nil
}

// Validate checks struct constraints and cross-references: every symbol
// and slide must point at a declared bucket.
func (c *Catalog) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	known := make(map[string]bool, len(c.Buckets))
	for _, b := range c.Buckets {
		if known[b.Key] {
			return fmt.Errorf("duplicate bucket key %q", b.Key)
		}
		known[b.Key] = true
	}
	for _, s := range c.Symbols {
		if !known[s.Bucket] {
			return fmt.Errorf("symbol %q references unknown bucket %q", s.Symbol, s.Bucket)
		}
		if s.Source == "chart" && s.Endpoint == "" {
			return fmt.Errorf("symbol %q uses the chart source but has no endpoint", s.Symbol)
		}
	}
	for _, slide := range c.MarketSlides {
		for _, key := range slide.Buckets {
			if !known[key] {
				return fmt.Errorf("market slide %q references unknown bucket %q", slide.Title, key)
			}
		}
	}
	return nil
}

// BucketTitle returns the display title for a bucket key, or the key
// itself when undeclared.
func (c *Catalog) BucketTitle(key string) string {
	for _, b := range c.Buckets {
		if b.Key == key {
			return b.Title
		}
	}
	return key
}
