package match

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

var wordRe = regexp.MustCompile(`\w+`)

// tokenize splits a product name into lowercased word tokens, de-duplicated
// and sorted.
func tokenize(s string) []string {
	seen := map[string]struct{}{}
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		seen[w] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// levRatio is a 0-100 edit-distance similarity between two strings.
func levRatio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	dist := matchr.Levenshtein(a, b)
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}

// TokenSetRatio is an order-independent 0-100 similarity between two product
// names. Both names are reduced to sorted token sets; the intersection and
// each side's remainder are joined back into strings and the best pairwise
// edit-distance ratio among them is returned. Names sharing all tokens score
// 100 no matter how the words are ordered, and a name fully contained in the
// other also scores 100.
func TokenSetRatio(a, b string) int {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inB := map[string]struct{}{}
	for _, t := range tb {
		inB[t] = struct{}{}
	}
	inA := map[string]struct{}{}
	for _, t := range ta {
		inA[t] = struct{}{}
	}

	var inter, restA, restB []string
	for _, t := range ta {
		if _, ok := inB[t]; ok {
			inter = append(inter, t)
		} else {
			restA = append(restA, t)
		}
	}
	for _, t := range tb {
		if _, ok := inA[t]; !ok {
			restB = append(restB, t)
		}
	}

	base := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(restA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(restB, " "))

	best := levRatio(base, combinedA)
	if r := levRatio(base, combinedB); r > best {
		best = r
	}
	if r := levRatio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}
