package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/partscope/partscope/internal/utils"
	"github.com/partscope/partscope/pkg/catalog"
	"github.com/partscope/partscope/pkg/fetch"
	"github.com/partscope/partscope/pkg/retailers"
	"github.com/partscope/partscope/pkg/retailers/ryans"
	"github.com/partscope/partscope/pkg/retailers/startech"
	"github.com/partscope/partscope/pkg/storage"
)

// scrapeCmd implements: partscope scrape
//
// Retailers run concurrently; within one retailer, categories and their
// pages are fetched sequentially. A page failure after retries aborts only
// that category, a listing-level failure drops only that listing.
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape retailer sites and upsert the offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		retailerFlag, _ := cmd.Flags().GetString("retailer")
		pages, _ := cmd.Flags().GetInt("pages")
		details, _ := cmd.Flags().GetBool("details")
		output, _ := cmd.Flags().GetString("output")
		noDB, _ := cmd.Flags().GetBool("no-db")

		if pages <= 0 {
			pages = viper.GetInt("scrape.pages")
		}

		client := fetch.New(fetch.Options{
			Delay: time.Duration(viper.GetInt("scrape.delay_ms")) * time.Millisecond,
		})

		var collectors []retailers.Collector
		switch retailerFlag {
		case "all", "":
			collectors = append(collectors,
				startech.New(viper.GetString("startech.baseurl"), nil, client),
				ryans.New(viper.GetString("ryans.baseurl"), nil, client))
		case "startech":
			collectors = append(collectors, startech.New(viper.GetString("startech.baseurl"), nil, client))
		case "ryans":
			collectors = append(collectors, ryans.New(viper.GetString("ryans.baseurl"), nil, client))
		default:
			return fmt.Errorf("unknown retailer %q (want startech, ryans or all)", retailerFlag)
		}

		opts := retailers.Options{MaxPages: pages, FetchDetails: details}
		listings := collect(cmd.Context(), collectors, opts)
		utils.Log.Infof("scrape: collected %d listings", len(listings))

		if output != "" {
			records := make([]offerRecord, 0, len(listings))
			for _, l := range listings {
				records = append(records, listingToRecord(l))
			}
			if err := writeRecords(output, records); err != nil {
				return err
			}
			fmt.Printf("Saved %d listings to %s\n", len(records), output)
		}
		if noDB {
			return nil
		}

		db, err := storage.Open(dbPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		inputs := make([]storage.OfferInput, 0, len(listings))
		for _, l := range listings {
			inputs = append(inputs, catalog.NormalizeListing(l))
		}
		created, updated, err := db.UpsertOffers(cmd.Context(), inputs)
		if err != nil {
			return err
		}
		fmt.Printf("Scrape finished. %d new offers, %d offers updated.\n", created, updated)
		return nil
	},
}

// collect runs each retailer collector as its own goroutine and merges the
// results. Category failures inside a collector are logged and skipped;
// other categories and retailers carry on.
func collect(ctx context.Context, collectors []retailers.Collector, opts retailers.Options) []retailers.Listing {
	var (
		mu       sync.Mutex
		listings []retailers.Listing
		wg       sync.WaitGroup
	)

	for _, col := range collectors {
		wg.Add(1)
		go func(c retailers.Collector) {
			defer wg.Done()
			for category, path := range c.Categories() {
				got, err := c.FetchCategory(ctx, category, path, opts)
				if err != nil {
					utils.Log.Warnf("scrape: %s/%s aborted: %v", c.Name(), category, err)
				}
				mu.Lock()
				listings = append(listings, got...)
				mu.Unlock()
			}
		}(col)
	}
	wg.Wait()
	return listings
}

func listingToRecord(l retailers.Listing) offerRecord {
	rec := offerRecord{
		Retailer:     l.Retailer,
		RetailerName: l.Name,
		URL:          l.URL,
		ImageURL:     l.ImageURL,
		Availability: l.Availability,
		Category:     l.Category,
		Model:        l.Model,
	}
	if p, ok := catalog.CleanPrice(l.PriceText); ok {
		rec.Price = &p
	}
	if rp, ok := catalog.CleanPrice(l.RegularPriceText); ok {
		rec.RegularPrice = &rp
	}
	return rec
}

func writeRecords(path string, records []offerRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().StringP("retailer", "r", "all", "Retailer to scrape: startech, ryans or all")
	scrapeCmd.Flags().IntP("pages", "p", 0, "Max pages per category (default from config)")
	scrapeCmd.Flags().BoolP("details", "d", false, "Visit detail pages to extract model codes")
	scrapeCmd.Flags().StringP("output", "o", "", "Also dump the scraped offers to a JSON file")
	scrapeCmd.Flags().Bool("no-db", false, "Skip the database upsert (use with --output)")
}
