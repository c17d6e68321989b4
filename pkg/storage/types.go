package storage

import "time"

// Category is a named component grouping; it decides which spec
// canonicalization and facet rules apply.
type Category struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	ImageURL       string `json:"image_url,omitempty"`
	ComponentCount int    `json:"component_count"`
}

// Component is one canonical catalog entry, independent of any retailer.
// Specs holds canonical keys for the category plus a residual bucket of
// unrecognized scraped keys (prefixed "x_").
type Component struct {
	ID       int64             `json:"id"`
	Category string            `json:"category"`
	Name     string            `json:"name"`
	Brand    string            `json:"brand"`
	Model    string            `json:"model"`
	Specs    map[string]string `json:"specs"`
}

// ComponentInput is one record of a trusted catalog import batch.
type ComponentInput struct {
	Name  string
	Brand string
	Model string
	Specs map[string]string
}

// Offer is one retailer's listing, possibly not yet matched to a Component.
type Offer struct {
	ID           int64     `json:"id"`
	Retailer     string    `json:"retailer"`
	RetailerName string    `json:"retailer_name"`
	URL          string    `json:"url"`
	Price        *int64    `json:"price"`
	RegularPrice *int64    `json:"regular_price,omitempty"`
	Currency     string    `json:"currency"`
	ImageURL     string    `json:"image_url,omitempty"`
	Available    bool      `json:"available"`
	Category     string    `json:"category"`
	ModelName    string    `json:"model_name,omitempty"`
	ComponentID  *int64    `json:"component_id"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

// OfferInput is one normalized record of a retailer offer import batch.
type OfferInput struct {
	Retailer     string
	RetailerName string
	URL          string
	Price        *int64
	RegularPrice *int64
	Currency     string
	ImageURL     string
	Available    bool
	Category     string
	ModelName    string
}

// Observation is one append-only price point used for trend history.
type Observation struct {
	ID          int64     `json:"id"`
	ComponentID int64     `json:"component_id"`
	Retailer    string    `json:"retailer"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	ObservedAt  time.Time `json:"observed_at"`
}

// LowestPrice is the cheapest in-stock offer for a component.
type LowestPrice struct {
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
	Retailer string `json:"retailer"`
	URL      string `json:"url"`
}

// Deal is one row of the best-deals view: an in-stock, discounted, matched
// offer together with its component name.
type Deal struct {
	Offer
	ComponentName string `json:"component_name"`
}
