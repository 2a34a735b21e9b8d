package confidence

import (
	"math"
	"strings"

	"docex/internal/domain"
	"docex/internal/schema"
)

// EvaluateLLM scores each leaf field by locating the contiguous token run
// that reconstructs the field's serialized value inside the response text,
// then taking the minimum linear probability across the run. One shaky token
// depresses the whole field, which is the point: the minimum is conservative
// where a mean would wash out a single low-confidence digit.
//
// Leaves whose value cannot be located are omitted, never scored 0. The
// OVERALL key is the mean of the resolved leaves.
func EvaluateLLM(leaves []schema.Leaf, tokens []domain.TokenLogProb) domain.ConfidenceMap {
	m := domain.ConfidenceMap{}
	if len(tokens) == 0 {
		m[domain.OverallKey] = 0
		return m
	}

	var b strings.Builder
	offsets := make([]int, len(tokens))
	pos := 0
	for i, t := range tokens {
		offsets[i] = pos
		b.WriteString(t.Token)
		pos += len(t.Token)
	}
	text := b.String()

	// Leaves arrive in document order, so the cursor only moves forward.
	// Duplicate values resolve to distinct runs that way.
	cursor := 0
	for _, leaf := range leaves {
		value := schema.Serialize(leaf.Value)
		if value == "" {
			continue
		}
		start, ok := locate(text, value, cursor)
		if !ok {
			continue
		}
		end := start + len(value)
		m[leaf.Path] = runConfidence(tokens, offsets, start, end)
		cursor = end
	}

	m[domain.OverallKey] = overall(m)
	return m
}

// locate finds value in text at or after cursor, falling back to a full
// scan when forward search misses (the model may reorder fields).
func locate(text, value string, cursor int) (int, bool) {
	if cursor < len(text) {
		if idx := strings.Index(text[cursor:], value); idx >= 0 {
			return cursor + idx, true
		}
	}
	if idx := strings.Index(text, value); idx >= 0 {
		return idx, true
	}
	return 0, false
}

// runConfidence takes the minimum linear probability over the tokens
// overlapping the character range [start, end).
func runConfidence(tokens []domain.TokenLogProb, offsets []int, start, end int) float64 {
	min := math.Inf(1)
	for i, t := range tokens {
		tokStart := offsets[i]
		tokEnd := tokStart + len(t.Token)
		if tokEnd <= start {
			continue
		}
		if tokStart >= end {
			break
		}
		if p := math.Exp(t.LogProb); p < min {
			min = p
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return clamp01(min)
}
