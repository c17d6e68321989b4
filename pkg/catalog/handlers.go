package catalog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/partscope/partscope/pkg/storage"
)

// Handler owns one category's spec canonicalization and facet rules. New
// categories plug in by registering a handler; nothing else branches on
// category names.
type Handler interface {
	Name() string
	// Canonicalize maps raw scraped spec labels to the category's canonical
	// keys. Labels with no synonym mapping are kept in a residual bucket
	// (prefixed "x_") and never overwrite canonical keys.
	Canonicalize(raw map[string]string) map[string]string
	// Facets derives the category's distinct filterable values from a set of
	// components. Values failing numeric coercion are dropped from that
	// facet only.
	Facets(components []storage.Component) FacetSet
}

var handlers = map[string]Handler{
	"cpu":     cpuHandler{},
	"memory":  memoryHandler{},
	"monitor": monitorHandler{},
}

// HandlerFor looks up the handler for a category, case-insensitively.
func HandlerFor(category string) (Handler, bool) {
	h, ok := handlers[strings.ToLower(strings.TrimSpace(category))]
	return h, ok
}

// FacetSet holds the filterable values derived for one category. Only the
// fields relevant to the category are populated; all slices are
// de-duplicated and sorted.
type FacetSet struct {
	CoreCounts         []int     `json:"core_counts,omitempty"`
	BaseFrequencies    []float64 `json:"base_frequencies,omitempty"`
	BoostFrequencies   []float64 `json:"boost_frequencies,omitempty"`
	L3Caches           []float64 `json:"l3_caches,omitempty"`
	IntegratedGraphics []string  `json:"integrated_graphics,omitempty"`

	Capacities  []int    `json:"capacities,omitempty"`
	MemoryTypes []string `json:"memory_types,omitempty"`
	Frequencies []int    `json:"frequencies,omitempty"`

	ScreenSizes  []float64 `json:"screen_sizes,omitempty"`
	Resolutions  []string  `json:"resolutions,omitempty"`
	RefreshRates []int     `json:"refresh_rates,omitempty"`
	PanelTypes   []string  `json:"panel_types,omitempty"`
}

// synonym maps raw scraped labels to one canonical spec key. Tables are
// ordered; the first matching synonym wins.
type synonym struct {
	canonical string
	labels    []string
}

var residualKeyRe = regexp.MustCompile(`[^a-z0-9]+`)

// canonicalize applies a category's synonym table to raw scraped specs.
func canonicalize(raw map[string]string, table []synonym) map[string]string {
	out := make(map[string]string, len(raw))

	// Deterministic input order so "first synonym wins" is stable.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, rawKey := range keys {
		value := strings.TrimSpace(raw[rawKey])
		if value == "" {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(rawKey))

		canonical := ""
	lookup:
		for _, syn := range table {
			if syn.canonical == label {
				canonical = syn.canonical
				break
			}
			for _, l := range syn.labels {
				if l == label {
					canonical = syn.canonical
					break lookup
				}
			}
		}

		if canonical == "" {
			// No mapping: retain under a residual key, never guess.
			residual := "x_" + strings.Trim(residualKeyRe.ReplaceAllString(label, "_"), "_")
			if _, exists := out[residual]; !exists {
				out[residual] = value
			}
			continue
		}
		if _, exists := out[canonical]; !exists {
			out[canonical] = value
		}
	}
	return out
}

// collector accumulates distinct facet values per kind, then hands back
// sorted slices.
type intSet map[int]struct{}
type floatSet map[float64]struct{}
type stringSet map[string]struct{}

func (s intSet) add(v int) { s[v] = struct{}{} }

func (s floatSet) add(v float64) { s[v] = struct{}{} }

func (s stringSet) add(v string) {
	v = strings.TrimSpace(v)
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s intSet) sorted() []int {
	out := make([]int, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func (s floatSet) sorted() []float64 {
	out := make([]float64, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
