package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partscope/partscope/internal/utils"
	"github.com/partscope/partscope/pkg/catalog"
	"github.com/partscope/partscope/pkg/storage"
)

// catalogFiles maps per-category JSON files to category names, matching the
// layout of the trusted structured dataset.
var catalogFiles = map[string]string{
	"cpu.json":     "CPU",
	"memory.json":  "Memory",
	"monitor.json": "Monitor",
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import catalog or offer batches",
}

// importCatalogCmd implements: partscope import catalog <dir>
var importCatalogCmd = &cobra.Command{
	Use:   "catalog <dir>",
	Short: "Import canonical components from per-category JSON files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := args[0]

		db, err := storage.Open(dbPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		var total storage.ImportResult
		for filename, category := range catalogFiles {
			path := filepath.Join(folder, filename)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				utils.Log.Warnf("import: file not found: %s, skipping", filename)
				continue
			}

			inputs, err := readCatalogFile(path, category)
			if err != nil {
				return err
			}
			res, err := db.UpsertComponents(cmd.Context(), category, inputs)
			if err != nil {
				return fmt.Errorf("import %s: %w", filename, err)
			}
			total.Added += res.Added
			total.Updated += res.Updated
			total.Skipped += res.Skipped
		}

		fmt.Printf("Import complete: %d new, %d updated, %d skipped.\n",
			total.Added, total.Updated, total.Skipped)
		return nil
	},
}

// importOffersCmd implements: partscope import offers <file.json>
var importOffersCmd = &cobra.Command{
	Use:   "offers <file.json>",
	Short: "Import scraped retailer offers from a JSON dump",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var records []offerRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		db, err := storage.Open(dbPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		inputs := make([]storage.OfferInput, 0, len(records))
		for _, rec := range records {
			inputs = append(inputs, recordToInput(rec))
		}
		created, updated, err := db.UpsertOffers(cmd.Context(), inputs)
		if err != nil {
			return err
		}
		fmt.Printf("Import finished. %d new offers imported, %d offers updated.\n", created, updated)
		return nil
	},
}

// offerRecord is the JSON shape of one scraped offer, shared by the scrape
// dump and the offers import.
type offerRecord struct {
	Retailer     string `json:"retailer"`
	RetailerName string `json:"retailer_name"`
	Price        *int64 `json:"price"`
	RegularPrice *int64 `json:"regular_price,omitempty"`
	URL          string `json:"url"`
	ImageURL     string `json:"image_url"`
	// Availability may be a bool, a raw stock string, or absent.
	Availability any    `json:"availability"`
	Category     string `json:"category"`
	Model        string `json:"model,omitempty"`
}

func recordToInput(rec offerRecord) storage.OfferInput {
	return storage.OfferInput{
		Retailer:     rec.Retailer,
		RetailerName: rec.RetailerName,
		URL:          rec.URL,
		Price:        rec.Price,
		RegularPrice: rec.RegularPrice,
		ImageURL:     rec.ImageURL,
		Available:    catalog.ParseAvailability(rec.Availability),
		Category:     rec.Category,
		ModelName:    rec.Model,
	}
}

// readCatalogFile parses one per-category JSON file. Every key other than
// name, brand and model is a spec and goes through the category handler's
// canonicalization before storage.
func readCatalogFile(path, category string) ([]storage.ComponentInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	handler, hasHandler := catalog.HandlerFor(category)

	inputs := make([]storage.ComponentInput, 0, len(items))
	for _, item := range items {
		in := storage.ComponentInput{
			Name:  stringify(item["name"]),
			Brand: stringify(item["brand"]),
			Model: stringify(item["model"]),
		}

		specs := make(map[string]string)
		for k, v := range item {
			switch k {
			case "name", "brand", "model":
				continue
			}
			if s := stringify(v); s != "" {
				specs[k] = s
			}
		}
		if hasHandler {
			specs = handler.Canonicalize(specs)
		}
		in.Specs = specs
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// stringify flattens a decoded JSON value to its string form.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importCatalogCmd)
	importCmd.AddCommand(importOffersCmd)
}
