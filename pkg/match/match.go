package match

import (
	"context"
	"regexp"
	"strings"

	"github.com/partscope/partscope/internal/utils"
	"github.com/partscope/partscope/pkg/storage"
)

const DefaultThreshold = 85

// Kind classifies one matching decision.
type Kind string

const (
	KindExact     Kind = "EXACT"
	KindFuzzy     Kind = "FUZZY"
	KindUnmatched Kind = "UNMATCHED"
)

// Decision is one per-offer entry of the matching audit log.
type Decision struct {
	OfferID       int64  `json:"offer_id"`
	Retailer      string `json:"retailer"`
	OfferName     string `json:"offer_name"`
	ComponentID   int64  `json:"component_id,omitempty"`
	ComponentName string `json:"component_name,omitempty"`
	Kind          Kind   `json:"kind"`
	// Score is only meaningful for FUZZY and UNMATCHED decisions.
	Score int `json:"score,omitempty"`
}

// Report aggregates one matching run.
type Report struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	// Skipped counts offers assigned by someone else between the snapshot
	// and the write; the existing assignment stands.
	Skipped   int        `json:"skipped,omitempty"`
	Decisions []Decision `json:"decisions"`
}

// Matcher assigns unmatched retailer offers to canonical components, exact
// model-token match first, then fuzzy name similarity.
type Matcher struct {
	// Threshold is the minimum TokenSetRatio score (0-100) a fuzzy match
	// must reach to be assigned.
	Threshold int
}

// New builds a matcher. A negative threshold falls back to the default;
// zero is honored and means the best scorer is always assigned.
func New(threshold int) *Matcher {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{Threshold: threshold}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizeModel strips whitespace and uppercases a model token for exact
// comparison.
func normalizeModel(s string) string {
	return strings.ToUpper(whitespaceRe.ReplaceAllString(s, ""))
}

// Run matches every unmatched offer (optionally scoped to one category)
// against the catalog. Each assignment is committed immediately, so an
// interrupted run keeps its matches; already-matched offers are excluded
// from the snapshot, which makes re-running idempotent — it only ever adds
// matches.
func (m *Matcher) Run(ctx context.Context, db *storage.DB, category string) (*Report, error) {
	offers, err := db.UnmatchedOffers(ctx, category)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	if len(offers) == 0 {
		utils.Log.Info("match: no unmatched retailer offers found")
		return report, nil
	}

	// Candidates arrive sorted by id, which makes exact-match tie-breaking
	// deterministic when several components share a model word.
	candidates, err := db.ComponentsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return m.reconcile(ctx, db, offers, candidates)
}

// reconcile decides and commits one snapshot of unmatched offers.
func (m *Matcher) reconcile(ctx context.Context, db *storage.DB, offers []storage.Offer, candidates []storage.Component) (*Report, error) {
	report := &Report{}

	for _, offer := range offers {
		decision := m.decide(offer, candidates)

		if decision.Kind != KindUnmatched {
			assigned, err := db.AssignComponent(ctx, offer.ID, decision.ComponentID)
			if err != nil {
				return report, err
			}
			if !assigned {
				// Someone else matched it since the snapshot; the existing
				// assignment stands, but the decision still goes in the log.
				report.Skipped++
				report.Decisions = append(report.Decisions, decision)
				utils.Log.Infof("match: %s: %q already assigned, skipping", offer.Retailer, offer.RetailerName)
				continue
			}
			if offer.Price != nil {
				if err := db.AddObservation(ctx, decision.ComponentID, offer.Retailer, *offer.Price, offer.Currency); err != nil {
					return report, err
				}
			}
			report.Matched++
			utils.Log.Infof("match: %s: %q -> %q [%s %d]",
				offer.Retailer, offer.RetailerName, decision.ComponentName, decision.Kind, decision.Score)
		} else {
			report.Unmatched++
			utils.Log.Debugf("match: unmatched %q [score %d]", offer.RetailerName, decision.Score)
		}
		report.Decisions = append(report.Decisions, decision)
	}

	utils.Log.Infof("match: done, matched %d, unmatched %d (threshold %d)",
		report.Matched, report.Unmatched, m.Threshold)
	return report, nil
}

// decide picks at most one candidate for an offer.
func (m *Matcher) decide(offer storage.Offer, candidates []storage.Component) Decision {
	d := Decision{
		OfferID:   offer.ID,
		Retailer:  offer.Retailer,
		OfferName: offer.RetailerName,
		Kind:      KindUnmatched,
	}

	// Exact model-token match: if the normalized model equals any normalized
	// word of a candidate's display name, that candidate wins outright and
	// fuzzy scoring is skipped.
	if offer.ModelName != "" {
		token := normalizeModel(offer.ModelName)
		if token != "" {
			for _, c := range candidates {
				for _, word := range strings.Fields(c.Name) {
					if normalizeModel(word) == token {
						d.Kind = KindExact
						d.ComponentID = c.ID
						d.ComponentName = c.Name
						return d
					}
				}
			}
		}
	}

	// Fuzzy fallback. Narrow candidates to those whose brand appears in the
	// offer name; narrowing never widens, and an empty result falls back to
	// the full set.
	pool := candidates
	offerName := strings.ToLower(offer.RetailerName)
	var branded []storage.Component
	for _, c := range candidates {
		if c.Brand != "" && strings.Contains(offerName, strings.ToLower(c.Brand)) {
			branded = append(branded, c)
		}
	}
	if len(branded) > 0 {
		pool = branded
	}

	bestScore := -1
	var best *storage.Component
	for i := range pool {
		score := TokenSetRatio(offer.RetailerName, pool[i].Name)
		if score > bestScore {
			bestScore = score
			best = &pool[i]
		}
	}

	if best != nil && bestScore >= m.Threshold {
		d.Kind = KindFuzzy
		d.ComponentID = best.ID
		d.ComponentName = best.Name
		d.Score = bestScore
	} else if bestScore > 0 {
		d.Score = bestScore
	}
	return d
}
