package startech

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/partscope/partscope/internal/utils"
	"github.com/partscope/partscope/pkg/fetch"
	"github.com/partscope/partscope/pkg/retailers"
)

const defaultBaseURL = "https://www.startech.com.bd"

// defaultCategories maps canonical category names to site paths.
var defaultCategories = map[string]string{
	"CPU":     "component/processor",
	"Memory":  "component/ram",
	"Monitor": "monitor",
}

// modelLabels are the spec-table row labels that carry a model code.
var modelLabels = []string{"model", "part no", "product code"}

// Collector scrapes startech.com.bd, a server-rendered listing site.
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

func (c *Collector) Name() string { return "startech" }

func (c *Collector) Categories() map[string]string { return c.categories }

func (c *Collector) FetchCategory(ctx context.Context, category, path string, opts retailers.Options) ([]retailers.Listing, error) {
	var listings []retailers.Listing

	for page := 1; page <= opts.MaxPages; page++ {
		pageURL := fmt.Sprintf("%s/%s?page=%d", c.baseURL, path, page)
		utils.Log.Infof("startech: %s page %d: %s", category, page, pageURL)

		body, err := c.client.Get(ctx, pageURL)
		if err != nil {
			// Remaining pagination for this category is aborted; listings
			// collected from earlier pages are still returned.
			return listings, fmt.Errorf("startech: fetch %s: %w", pageURL, err)
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return listings, fmt.Errorf("startech: parse %s: %w", pageURL, err)
		}

		containers := doc.Find("div.p-item")
		if containers.Length() == 0 {
			utils.Log.Infof("startech: %s: no more products on page %d", category, page)
			break
		}

		containers.Each(func(_ int, s *goquery.Selection) {
			l, ok := c.extractListing(s, category)
			if !ok {
				return
			}
			if opts.FetchDetails && l.URL != "" {
				model, err := c.fetchModel(ctx, l.URL)
				if err != nil {
					// Missing model is not fatal for the listing.
					utils.Log.Warnf("startech: detail fetch failed for %s: %v", l.URL, err)
				}
				l.Model = model
			}
			listings = append(listings, l)
		})
	}

	utils.Log.Infof("startech: found %d items in %s", len(listings), category)
	return listings, nil
}

// extractListing pulls the raw fields out of one listing container.
// Listings without a product name are dropped.
func (c *Collector) extractListing(s *goquery.Selection, category string) (retailers.Listing, bool) {
	name := strings.TrimSpace(s.Find(".p-item-name").First().Text())
	if name == "" {
		return retailers.Listing{}, false
	}

	href := s.Find("a[href]").First().AttrOr("href", "")
	img := s.Find("img").First().AttrOr("src", "")

	price := strings.TrimSpace(s.Find(".price-new").First().Text())
	if price == "" {
		price = strings.TrimSpace(s.Find(".price").First().Text())
	}
	regular := strings.TrimSpace(s.Find(".price-old").First().Text())

	availability := "Out of Stock"
	s.Find("button, span.st-btn").EachWithBreak(func(_ int, b *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(b.Text()), "add to cart") {
			availability = "In Stock"
			return false
		}
		return true
	})

	return retailers.Listing{
		Retailer:         "startech",
		Name:             name,
		URL:              c.resolve(href),
		ImageURL:         c.resolve(img),
		PriceText:        price,
		RegularPriceText: regular,
		Availability:     availability,
		Category:         category,
	}, true
}

// fetchModel visits a product detail page and extracts the manufacturer
// model code. Two strategies, in order: the structured short-description
// block with a "Model:" item, then generic spec-table rows whose label
// matches a known synonym.
func (c *Collector) fetchModel(ctx context.Context, detailURL string) (string, error) {
	body, err := c.client.Get(ctx, detailURL)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	model := ""
	doc.Find(".short-description li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if strings.HasPrefix(strings.ToLower(text), "model:") {
			model = strings.TrimSpace(text[len("model:"):])
			return false
		}
		return true
	})
	if model != "" {
		return model, nil
	}

	doc.Find("tr").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		cells := s.Find("td")
		if cells.Length() < 2 {
			return true
		}
		label := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
		for _, syn := range modelLabels {
			if strings.Contains(label, syn) {
				model = strings.TrimSpace(cells.Eq(1).Text())
				return false
			}
		}
		return true
	})
	return model, nil
}

func (c *Collector) resolve(ref string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
