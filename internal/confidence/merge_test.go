package confidence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docex/internal/confidence"
	"docex/internal/domain"
)

func TestMerge_NilLayoutIsExactIdentity(t *testing.T) {
	llm := domain.ConfidenceMap{
		"invoice_id":      0.93,
		"total":           0.71,
		domain.OverallKey: 0.82,
	}
	// Compare against a separately built map so the assertion cannot be
	// satisfied by Merge handing the input back with mutations.
	want := domain.ConfidenceMap{
		"invoice_id":      0.93,
		"total":           0.71,
		domain.OverallKey: 0.82,
	}

	assert.Equal(t, want, confidence.Merge(llm, nil))
	assert.Equal(t, want, confidence.Merge(nil, llm))
}

func TestMerge_BothSourcesAveraged(t *testing.T) {
	llm := domain.ConfidenceMap{"total": 0.9, domain.OverallKey: 0.9}
	layout := domain.ConfidenceMap{"total": 0.5, domain.OverallKey: 0.5}

	m := confidence.Merge(llm, layout)

	assert.InDelta(t, 0.7, m["total"], 1e-9)
	assert.InDelta(t, 0.7, m[domain.OverallKey], 1e-9)
}

func TestMerge_Commutative(t *testing.T) {
	a := domain.ConfidenceMap{"x": 0.2, "y": 0.8, domain.OverallKey: 0.5}
	b := domain.ConfidenceMap{"y": 0.4, "z": 0.6, domain.OverallKey: 0.5}

	assert.Equal(t, confidence.Merge(a, b), confidence.Merge(b, a))
}

func TestMerge_OverallDeterministic(t *testing.T) {
	// Float addition is not associative, so 0.2+0.6+0.6 and 0.6+0.6+0.2
	// differ in the last ULP. The OVERALL must come out bit-identical on
	// every call regardless of map iteration order.
	a := domain.ConfidenceMap{"x": 0.2, "y": 0.8, domain.OverallKey: 0.5}
	b := domain.ConfidenceMap{"y": 0.4, "z": 0.6, domain.OverallKey: 0.5}

	first := confidence.Merge(a, b)[domain.OverallKey]
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, confidence.Merge(a, b)[domain.OverallKey])
		assert.Equal(t, first, confidence.Merge(b, a)[domain.OverallKey])
	}
}

func TestMerge_SingleSourceFieldPassesThrough(t *testing.T) {
	llm := domain.ConfidenceMap{"only_llm": 0.9, domain.OverallKey: 0.9}
	layout := domain.ConfidenceMap{"only_layout": 0.42, domain.OverallKey: 0.42}

	m := confidence.Merge(llm, layout)

	assert.Equal(t, 0.9, m["only_llm"])
	assert.Equal(t, 0.42, m["only_layout"])
	assert.InDelta(t, 0.66, m[domain.OverallKey], 1e-9)
}

func TestMerge_OverallRecomputedNotBlended(t *testing.T) {
	// Deliberately inconsistent input OVERALLs: the merged OVERALL must come
	// from the merged leaves, not from averaging 0.1 and 0.9.
	a := domain.ConfidenceMap{"f": 0.6, domain.OverallKey: 0.1}
	b := domain.ConfidenceMap{"f": 0.8, domain.OverallKey: 0.9}

	m := confidence.Merge(a, b)

	assert.InDelta(t, 0.7, m["f"], 1e-9)
	assert.InDelta(t, 0.7, m[domain.OverallKey], 1e-9)
}
