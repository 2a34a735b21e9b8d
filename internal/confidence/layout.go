package confidence

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"docex/internal/domain"
	"docex/internal/schema"
)

// candidate is one span (or window of consecutive spans) that matched a
// field value.
type candidate struct {
	confidence float64
	offset     int
}

// EvaluateLayout scores each leaf field by matching its serialized value
// against the layout's recognized spans. Exact normalized matches win; for
// values spanning several words, windows of consecutive same-page spans are
// tried; a containment check catches values embedded in longer spans (e.g.
// "total: $100.00"). The matched span's OCR confidence becomes the field's
// confidence, a window contributing the minimum of its members.
//
// Ties go to the highest OCR confidence, then to the candidate nearest the
// previous match, preserving document-order locality. Unmatched leaves are
// omitted.
func EvaluateLayout(leaves []schema.Leaf, layout *domain.LayoutResult) domain.ConfidenceMap {
	m := domain.ConfidenceMap{}
	if layout == nil || len(layout.Spans) == 0 {
		m[domain.OverallKey] = 0
		return m
	}

	normed := make([]string, len(layout.Spans))
	for i, s := range layout.Spans {
		normed[i] = normalizeText(s.Text)
	}

	prevOffset := 0
	for _, leaf := range leaves {
		value := normalizeText(schema.Serialize(leaf.Value))
		if value == "" {
			continue
		}

		cands := exactMatches(layout.Spans, normed, value)
		if len(cands) == 0 {
			cands = windowMatches(layout.Spans, normed, value)
		}
		if len(cands) == 0 {
			cands = containsMatches(layout.Spans, normed, value)
		}
		if len(cands) == 0 {
			continue
		}

		best := pickCandidate(cands, prevOffset)
		m[leaf.Path] = clamp01(best.confidence)
		prevOffset = best.offset
	}

	m[domain.OverallKey] = overall(m)
	return m
}

func exactMatches(spans []domain.LayoutSpan, normed []string, value string) []candidate {
	var cands []candidate
	for i, s := range spans {
		if normed[i] == value {
			cands = append(cands, candidate{confidence: s.Confidence, offset: s.Offset})
		}
	}
	return cands
}

// windowMatches joins consecutive spans on the same page until the joined
// normalized text reaches the value's length.
func windowMatches(spans []domain.LayoutSpan, normed []string, value string) []candidate {
	var cands []candidate
	for i := range spans {
		if normed[i] == "" || !strings.HasPrefix(value, normed[i]) {
			continue
		}
		joined := normed[i]
		minConf := spans[i].Confidence
		for j := i + 1; j < len(spans) && spans[j].Page == spans[i].Page; j++ {
			joined += normed[j]
			if spans[j].Confidence < minConf {
				minConf = spans[j].Confidence
			}
			if len(joined) > len(value) {
				break
			}
			if joined == value {
				cands = append(cands, candidate{confidence: minConf, offset: spans[i].Offset})
				break
			}
			if !strings.HasPrefix(value, joined) {
				break
			}
		}
	}
	return cands
}

func containsMatches(spans []domain.LayoutSpan, normed []string, value string) []candidate {
	var cands []candidate
	for i, s := range spans {
		if strings.Contains(normed[i], value) {
			cands = append(cands, candidate{confidence: s.Confidence, offset: s.Offset})
		}
	}
	return cands
}

func pickCandidate(cands []candidate, prevOffset int) candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.confidence > best.confidence {
			best = c
			continue
		}
		if c.confidence == best.confidence && distance(c.offset, prevOffset) < distance(best.offset, prevOffset) {
			best = c
		}
	}
	return best
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// normalizeText folds a value for approximate comparison: NFKC, lowercase,
// with currency symbols, separators, and whitespace stripped. Decimal points
// survive so 100.00 and 10000 stay distinct.
func normalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case unicode.Is(unicode.Sc, r):
			return -1
		case r == ',':
			return -1
		}
		return r
	}, s)
}
