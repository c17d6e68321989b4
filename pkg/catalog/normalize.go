package catalog

import (
	"strconv"
	"strings"

	"github.com/partscope/partscope/pkg/retailers"
	"github.com/partscope/partscope/pkg/storage"
)

// negativeTokens force unavailability whenever they appear, regardless of
// other signals.
var negativeTokens = []string{"out of stock", "stock out", "sold out", "unavailable"}

// ParseAvailability maps a raw availability signal (bool, string or absent)
// to a boolean. An explicit negative token always wins. Everything else is
// treated as in stock: the affirmative tokens ("true", "1", "in stock",
// "available", "yes", an "add to cart" call-to-action) all land there, and
// so does absent or unrecognized text, optimistically, so listings without
// explicit stock text aren't suppressed.
func ParseAvailability(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		for _, neg := range negativeTokens {
			if strings.Contains(s, neg) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// CleanPrice strips everything that isn't a digit (currency symbols,
// grouping separators, unit text) and parses the rest. ok is false when no
// digits remain.
func CleanPrice(s string) (int64, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// unitTokens are the unit suffixes stripped before numeric parsing, longest
// first so "mhz" wins over "hz".
var unitTokens = []string{"ghz", "mhz", "khz", "hz", "gb", "mb", "kb", "inches", "inch", "mm", "cm", "\"", "”"}

// ParseNumber extracts the numeric value out of a unit-suffixed spec string
// such as "3.5 GHz" or "32 MB". Malformed input reports ok=false; it is the
// caller's job to omit such values rather than default them.
func ParseNumber(s string) (float64, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, false
	}
	for _, unit := range unitTokens {
		v = strings.ReplaceAll(v, unit, "")
	}
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimSpace(v)
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FrequencyGHz parses a frequency spec into GHz. MHz-denominated values are
// converted (a CPU clock listed as "3600 MHz" becomes 3.6).
func FrequencyGHz(s string) (float64, bool) {
	n, ok := ParseNumber(s)
	if !ok {
		return 0, false
	}
	if strings.Contains(strings.ToLower(s), "mhz") {
		n /= 1000
	}
	return n, true
}

// NormalizeListing converts one raw collector listing into a canonical offer
// record ready for the store.
func NormalizeListing(l retailers.Listing) storage.OfferInput {
	in := storage.OfferInput{
		Retailer:     l.Retailer,
		RetailerName: l.Name,
		URL:          l.URL,
		ImageURL:     l.ImageURL,
		Available:    ParseAvailability(l.Availability),
		Category:     l.Category,
		ModelName:    l.Model,
	}
	if p, ok := CleanPrice(l.PriceText); ok {
		in.Price = &p
	}
	if rp, ok := CleanPrice(l.RegularPriceText); ok {
		in.RegularPrice = &rp
	}
	return in
}
