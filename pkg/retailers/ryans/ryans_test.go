package ryans

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/partscope/partscope/pkg/fetch"
	"github.com/partscope/partscope/pkg/retailers"
)

const statePage = `<!doctype html><html><head>
<script id="__APP_STATE__" type="application/json">
{"category":{"name":"Processor","products":[
  {"name":"AMD Ryzen 5 7600X Processor","url":"https://www.example.com/amd-ryzen-5-7600x","image":"https://cdn.example.com/r5.jpg","price":"28500","regular_price":"30500","in_stock":true},
  {"name":"Intel Core i5-13600K Processor","slug":"intel-core-i5-13600k","price":"32000","in_stock":false},
  {"name":"","price":"1"}
]}}
</script>
</head><body><div id="root"></div></body></html>`

const emptyStatePage = `<!doctype html><html><head>
<script id="__APP_STATE__" type="application/json">{"category":{"products":[]}}</script>
</head><body></body></html>`

func fastClient(t *testing.T) *fetch.Client {
	t.Helper()
	return fetch.New(fetch.Options{
		MaxRetries:   1,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	})
}

func TestFetchCategoryExtractsEmbeddedState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(statePage))
			return
		}
		w.Write([]byte(emptyStatePage))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, fastClient(t))
	listings, err := c.FetchCategory(context.Background(), "CPU", "category/processor", retailers.Options{MaxPages: 5})
	if err != nil {
		t.Fatalf("FetchCategory: %v", err)
	}

	// The nameless product is dropped.
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}

	l := listings[0]
	if l.Retailer != "ryans" || l.Category != "CPU" {
		t.Fatalf("listing tags = %q/%q", l.Retailer, l.Category)
	}
	if l.Name != "AMD Ryzen 5 7600X Processor" {
		t.Fatalf("name = %q", l.Name)
	}
	if l.URL != "https://www.example.com/amd-ryzen-5-7600x" {
		t.Fatalf("url = %q", l.URL)
	}
	if l.PriceText != "28500" || l.RegularPriceText != "30500" {
		t.Fatalf("prices = %q / %q", l.PriceText, l.RegularPriceText)
	}
	if l.Availability != "In Stock" {
		t.Fatalf("availability = %q", l.Availability)
	}

	// Slug-only products get a URL built on the base, and in_stock false maps
	// to Out of Stock.
	if listings[1].URL != srv.URL+"/intel-core-i5-13600k" {
		t.Fatalf("slug url = %q", listings[1].URL)
	}
	if listings[1].Availability != "Out of Stock" {
		t.Fatalf("availability = %q", listings[1].Availability)
	}
}

func TestFetchCategoryStopsOnEmptyProducts(t *testing.T) {
	var pagesServed int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(statePage))
			return
		}
		w.Write([]byte(emptyStatePage))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, fastClient(t))
	if _, err := c.FetchCategory(context.Background(), "CPU", "p", retailers.Options{MaxPages: 10}); err != nil {
		t.Fatalf("FetchCategory: %v", err)
	}
	if pagesServed != 2 {
		t.Fatalf("served %d pages, want 2", pagesServed)
	}
}

func TestFetchCategoryErrorsWithoutStateBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><h1>Maintenance</h1></body></html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, fastClient(t))
	if _, err := c.FetchCategory(context.Background(), "CPU", "p", retailers.Options{MaxPages: 1}); err == nil {
		t.Fatal("expected an error for a page without the state block")
	}
}
