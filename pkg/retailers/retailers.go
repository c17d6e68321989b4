package retailers

import (
	"context"
)

// Listing is one raw, retailer-specific listing record as extracted from a
// category page. Fields carry whatever text the site shows; canonicalization
// happens later in the catalog package.
type Listing struct {
	Retailer         string
	Name             string
	URL              string
	ImageURL         string
	PriceText        string
	RegularPriceText string
	// Availability is the raw stock indicator, e.g. "In Stock".
	Availability string
	Category     string
	// Model is the manufacturer model code when a detail page yields one.
	Model string
}

// Options carries per-run collection controls.
type Options struct {
	// MaxPages caps pagination per category.
	MaxPages int
	// FetchDetails enables visiting detail pages to extract model codes.
	FetchDetails bool
}

// Collector defines a common interface for retailer-specific collection,
// abstracting away how each site renders its category listings.
type Collector interface {
	Name() string
	// Categories maps canonical category names to site paths.
	Categories() map[string]string
	// FetchCategory walks category pages 1..MaxPages sequentially, stopping
	// early when a page yields no listings. On a page fetch that fails after
	// retries it returns the listings collected so far together with the
	// error; other categories are unaffected.
	FetchCategory(ctx context.Context, category, path string, opts Options) ([]Listing, error)
}
