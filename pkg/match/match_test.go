package match

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/partscope/partscope/pkg/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedCatalog(t *testing.T, db *storage.DB) {
	t.Helper()
	_, err := db.UpsertComponents(context.Background(), "CPU", []storage.ComponentInput{
		{Name: "Intel Core i5-13600K", Brand: "Intel", Model: "BX8071513600K"},
		{Name: "AMD Ryzen 5 7600X", Brand: "AMD", Model: "100-100000593WOF"},
		{Name: "ASUS ROG Strix Z790-E Gaming WiFi", Brand: "ASUS"},
	})
	if err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

func price(v int64) *int64 { return &v }

func seedOffers(t *testing.T, db *storage.DB, inputs []storage.OfferInput) {
	t.Helper()
	if _, _, err := db.UpsertOffers(context.Background(), inputs); err != nil {
		t.Fatalf("seed offers: %v", err)
	}
}

func TestExactModelMatch(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	seedOffers(t, db, []storage.OfferInput{{
		Retailer:     "startech",
		RetailerName: "Intel i5 13600K Box",
		URL:          "https://example.com/p/1",
		Price:        price(42000),
		Available:    true,
		Category:     "CPU",
		ModelName:    "i5-13600K",
	}})

	report, err := New(85).Run(context.Background(), db, "")
	if err != nil {
		t.Fatal(err)
	}
	if report.Matched != 1 {
		t.Fatalf("matched = %d, want 1", report.Matched)
	}
	d := report.Decisions[0]
	if d.Kind != KindExact {
		t.Fatalf("kind = %s, want EXACT (fuzzy scoring must not run)", d.Kind)
	}
	if d.ComponentName != "Intel Core i5-13600K" {
		t.Fatalf("matched to %q", d.ComponentName)
	}

	// A matched offer with a price yields one observation.
	offers, err := db.UnmatchedOffers(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(offers) != 0 {
		t.Fatalf("expected no unmatched offers, got %d", len(offers))
	}
	history, err := db.PriceHistory(context.Background(), d.ComponentID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Price != 42000 {
		t.Fatalf("history = %+v, want one 42000 observation", history)
	}
}

func TestFuzzyMatch(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	seedOffers(t, db, []storage.OfferInput{{
		Retailer:     "ryans",
		RetailerName: "ASUS ROG Strix Z790 Gaming",
		URL:          "https://example.com/p/2",
		Available:    true,
		Category:     "CPU",
	}})

	report, err := New(85).Run(context.Background(), db, "")
	if err != nil {
		t.Fatal(err)
	}
	if report.Matched != 1 {
		t.Fatalf("matched = %d, want 1", report.Matched)
	}
	d := report.Decisions[0]
	if d.Kind != KindFuzzy {
		t.Fatalf("kind = %s, want FUZZY", d.Kind)
	}
	if d.Score < 85 {
		t.Fatalf("fuzzy assignment below threshold: %d", d.Score)
	}
	if d.ComponentName != "ASUS ROG Strix Z790-E Gaming WiFi" {
		t.Fatalf("matched to %q", d.ComponentName)
	}
}

func TestUnmatchedBelowThreshold(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	seedOffers(t, db, []storage.OfferInput{{
		Retailer:     "ryans",
		RetailerName: "Logitech MX Master 3S Wireless Mouse",
		URL:          "https://example.com/p/3",
		Available:    true,
		Category:     "CPU",
	}})

	report, err := New(85).Run(context.Background(), db, "")
	if err != nil {
		t.Fatal(err)
	}
	if report.Matched != 0 || report.Unmatched != 1 {
		t.Fatalf("matched/unmatched = %d/%d, want 0/1", report.Matched, report.Unmatched)
	}
	if report.Decisions[0].Kind != KindUnmatched {
		t.Fatalf("kind = %s", report.Decisions[0].Kind)
	}
}

func TestBrandNarrowing(t *testing.T) {
	db := openTestDB(t)
	// Two memory kits with near-identical names; the brand token in the
	// offer name must pick the right one.
	_, err := db.UpsertComponents(context.Background(), "Memory", []storage.ComponentInput{
		{Name: "Corsair Vengeance 16GB DDR5 5600MHz", Brand: "Corsair"},
		{Name: "GSkill Vengeance 16GB DDR5 5600MHz", Brand: "GSkill"},
	})
	if err != nil {
		t.Fatal(err)
	}
	seedOffers(t, db, []storage.OfferInput{{
		Retailer:     "startech",
		RetailerName: "Corsair Vengeance RGB 16GB DDR5 5600MHz Desktop RAM",
		URL:          "https://example.com/p/4",
		Available:    true,
		Category:     "Memory",
	}})

	report, err := New(85).Run(context.Background(), db, "Memory")
	if err != nil {
		t.Fatal(err)
	}
	if report.Matched != 1 {
		t.Fatalf("matched = %d, want 1", report.Matched)
	}
	if got := report.Decisions[0].ComponentName; got != "Corsair Vengeance 16GB DDR5 5600MHz" {
		t.Fatalf("matched to %q, want the Corsair kit", got)
	}
}

func TestBrandNarrowingFallsBackToFullSet(t *testing.T) {
	db := openTestDB(t)
	_, err := db.UpsertComponents(context.Background(), "Monitor", []storage.ComponentInput{
		{Name: "Samsung Odyssey G5 27 LC27G55T", Brand: "Samsung"},
	})
	if err != nil {
		t.Fatal(err)
	}
	// No brand token in the offer name: narrowing yields nothing, so the
	// full candidate set is scored instead.
	seedOffers(t, db, []storage.OfferInput{{
		Retailer:     "ryans",
		RetailerName: "Odyssey G5 27 LC27G55T",
		URL:          "https://example.com/p/5",
		Available:    true,
		Category:     "Monitor",
	}})

	report, err := New(85).Run(context.Background(), db, "Monitor")
	if err != nil {
		t.Fatal(err)
	}
	if report.Matched != 1 {
		t.Fatalf("matched = %d, want 1", report.Matched)
	}
}

func TestZeroThresholdAssignsBestScorer(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	// Scores well below the default threshold against every candidate.
	seedOffers(t, db, []storage.OfferInput{{
		Retailer:     "ryans",
		RetailerName: "Logitech MX Master 3S Wireless Mouse",
		URL:          "https://example.com/p/6",
		Available:    true,
		Category:     "CPU",
	}})

	report, err := New(0).Run(context.Background(), db, "")
	if err != nil {
		t.Fatal(err)
	}
	// Threshold 0 is honored, not promoted to the default: the best scorer
	// is always assigned.
	if report.Matched != 1 {
		t.Fatalf("matched = %d, want 1", report.Matched)
	}
	if report.Decisions[0].Kind != KindFuzzy {
		t.Fatalf("kind = %s, want FUZZY", report.Decisions[0].Kind)
	}

	if m := New(-1); m.Threshold != DefaultThreshold {
		t.Fatalf("negative threshold should fall back to the default, got %d", m.Threshold)
	}
}

func TestExistingAssignmentStandsAcrossStaleSnapshot(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	seedOffers(t, db, []storage.OfferInput{{
		Retailer:     "startech",
		RetailerName: "Intel i5 13600K Box",
		URL:          "https://example.com/p/7",
		Available:    true,
		Category:     "CPU",
		ModelName:    "i5-13600K",
	}})
	ctx := context.Background()

	offers, err := db.UnmatchedOffers(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	candidates, err := db.ComponentsByCategory(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	// Another run assigns the offer after this snapshot was taken.
	if _, err := db.AssignComponent(ctx, offers[0].ID, candidates[1].ID); err != nil {
		t.Fatal(err)
	}

	report, err := New(85).reconcile(ctx, db, offers, candidates)
	if err != nil {
		t.Fatal(err)
	}
	if report.Matched != 0 || report.Skipped != 1 {
		t.Fatalf("matched/skipped = %d/%d, want 0/1", report.Matched, report.Skipped)
	}
	// The decision is still on the audit log.
	if len(report.Decisions) != 1 || report.Decisions[0].Kind != KindExact {
		t.Fatalf("decisions = %+v", report.Decisions)
	}

	// The earlier assignment is untouched.
	got, err := db.OffersForComponent(ctx, candidates[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("offer lost its original assignment")
	}
}

func TestMatchingIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	seedOffers(t, db, []storage.OfferInput{
		{
			Retailer:     "startech",
			RetailerName: "Intel i5 13600K Box",
			URL:          "https://example.com/p/1",
			Available:    true,
			Category:     "CPU",
			ModelName:    "i5-13600K",
		},
		{
			Retailer:     "ryans",
			RetailerName: "Unrelated Gadget Pro X1000",
			URL:          "https://example.com/p/9",
			Available:    true,
			Category:     "CPU",
		},
	})

	m := New(85)
	first, err := m.Run(context.Background(), db, "")
	if err != nil {
		t.Fatal(err)
	}
	if first.Matched != 1 || first.Unmatched != 1 {
		t.Fatalf("first run matched/unmatched = %d/%d", first.Matched, first.Unmatched)
	}

	second, err := m.Run(context.Background(), db, "")
	if err != nil {
		t.Fatal(err)
	}
	if second.Matched != 0 {
		t.Fatalf("second run added %d matches, want 0", second.Matched)
	}
	if second.Unmatched != 1 {
		t.Fatalf("second run unmatched = %d, want 1", second.Unmatched)
	}
}
