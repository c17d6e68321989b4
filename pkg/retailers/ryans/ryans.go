package ryans

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/partscope/partscope/internal/utils"
	"github.com/partscope/partscope/pkg/fetch"
	"github.com/partscope/partscope/pkg/retailers"
	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://www.ryans.com"

var defaultCategories = map[string]string{
	"CPU":     "category/desktop-component-processor",
	"Memory":  "category/desktop-component-desktop-ram",
	"Monitor": "category/monitor-all-monitor",
}

// Collector scrapes ryans.com. The site is client-rendered, but it ships its
// listing state as JSON inside a bootstrap script block, so instead of
// driving a browser we pull that block out and walk it with gjson.
type Collector struct {
	baseURL    string
	categories map[string]string
	client     *fetch.Client
}

func New(baseURL string, categories map[string]string, client *fetch.Client) *Collector {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if len(categories) == 0 {
		categories = defaultCategories
	}
	return &Collector{baseURL: baseURL, categories: categories, client: client}
}

func (c *Collector) Name() string { return "ryans" }

func (c *Collector) Categories() map[string]string { return c.categories }

func (c *Collector) FetchCategory(ctx context.Context, category, path string, opts retailers.Options) ([]retailers.Listing, error) {
	var listings []retailers.Listing

	for page := 1; page <= opts.MaxPages; page++ {
		pageURL := fmt.Sprintf("%s/%s?page=%d", c.baseURL, path, page)
		utils.Log.Infof("ryans: %s page %d: %s", category, page, pageURL)

		body, err := c.client.Get(ctx, pageURL)
		if err != nil {
			return listings, fmt.Errorf("ryans: fetch %s: %w", pageURL, err)
		}

		products, err := extractState(body)
		if err != nil {
			return listings, fmt.Errorf("ryans: %s: %w", pageURL, err)
		}
		if len(products.Array()) == 0 {
			utils.Log.Infof("ryans: %s: no more products on page %d", category, page)
			break
		}

		for _, p := range products.Array() {
			l, ok := c.extractListing(p, category)
			if !ok {
				continue
			}
			listings = append(listings, l)
		}
	}

	utils.Log.Infof("ryans: found %d items in %s", len(listings), category)
	return listings, nil
}

// extractState locates the embedded application state script and returns the
// category product array.
func extractState(body []byte) (gjson.Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, err
	}
	state := doc.Find("script#__APP_STATE__").First().Text()
	if strings.TrimSpace(state) == "" {
		return gjson.Result{}, fmt.Errorf("no embedded state block found")
	}
	return gjson.Get(state, "category.products"), nil
}

func (c *Collector) extractListing(p gjson.Result, category string) (retailers.Listing, bool) {
	name := strings.TrimSpace(p.Get("name").String())
	if name == "" {
		return retailers.Listing{}, false
	}

	availability := "Out of Stock"
	if p.Get("in_stock").Bool() {
		availability = "In Stock"
	}

	u := p.Get("url").String()
	if u == "" {
		if slug := p.Get("slug").String(); slug != "" {
			u = c.baseURL + "/" + strings.TrimPrefix(slug, "/")
		}
	}

	return retailers.Listing{
		Retailer:         "ryans",
		Name:             name,
		URL:              u,
		ImageURL:         p.Get("image").String(),
		PriceText:        p.Get("price").String(),
		RegularPriceText: p.Get("regular_price").String(),
		Availability:     availability,
		Category:         category,
	}, true
}
