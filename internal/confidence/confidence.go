// Package confidence derives and merges per-field confidence maps from two
// independent evidence sources: the extraction model's token
// log-probabilities and a layout engine's OCR confidences.
package confidence

import (
	"sort"

	"docex/internal/domain"
	"docex/internal/schema"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// overall is the arithmetic mean of the map's leaf entries, 0 when empty.
// Summation runs in sorted key order so the result does not depend on map
// iteration order: floating-point addition is not associative, and the last
// ULP of the mean must be reproducible across calls.
func overall(m domain.ConfidenceMap) float64 {
	keys := leafKeys(m)
	if len(keys) == 0 {
		return 0
	}
	sum := 0.0
	for _, k := range keys {
		sum += m[k]
	}
	return sum / float64(len(keys))
}

// leafKeys returns the map's non-OVERALL keys in sorted order.
func leafKeys(m domain.ConfidenceMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == domain.OverallKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AggregatePrefix returns the mean confidence of the leaves addressed under
// prefix, giving a nested object or list a confidence of its own. The second
// return is false when no leaf falls under the prefix. Like overall, it sums
// in sorted key order for a reproducible result.
func AggregatePrefix(m domain.ConfidenceMap, prefix string) (float64, bool) {
	sum, n := 0.0, 0
	for _, k := range leafKeys(m) {
		if schema.PathPrefix(k, prefix) {
			sum += m[k]
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
