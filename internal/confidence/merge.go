package confidence

import "docex/internal/domain"

// Merge combines two per-field confidence maps into one. A field present in
// both sources gets the arithmetic mean of the two scores: the rule is
// deterministic and commutative, and neither signal dominates the other a
// priori (logprobs measure generation certainty, OCR confidence measures
// recognition certainty). A field present in one source passes through
// unchanged. When either map is absent the other is returned as-is, so the
// LLM-only path is an exact identity.
//
// OVERALL is recomputed from the merged leaf entries rather than blended
// from the inputs' own OVERALL values, keeping it consistent with the final
// per-field contents.
func Merge(a, b domain.ConfidenceMap) domain.ConfidenceMap {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	merged := domain.ConfidenceMap{}
	for k, v := range a {
		if k == domain.OverallKey {
			continue
		}
		merged[k] = v
	}
	for k, v := range b {
		if k == domain.OverallKey {
			continue
		}
		if prev, ok := merged[k]; ok {
			merged[k] = clamp01((prev + v) / 2)
		} else {
			merged[k] = v
		}
	}

	merged[domain.OverallKey] = overall(merged)
	return merged
}
