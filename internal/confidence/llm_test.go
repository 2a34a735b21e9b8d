package confidence_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docex/internal/confidence"
	"docex/internal/domain"
	"docex/internal/schema"
)

// tokensFor splits text into fixed-size tokens carrying the given logprob.
func tokensFor(text string, size int, logprob float64) []domain.TokenLogProb {
	var toks []domain.TokenLogProb
	for i := 0; i < len(text); i += size {
		end := i + size
		if end > len(text) {
			end = len(text)
		}
		toks = append(toks, domain.TokenLogProb{Token: text[i:end], LogProb: logprob})
	}
	return toks
}

func mustLeaves(t *testing.T, doc string) []schema.Leaf {
	t.Helper()
	leaves, err := schema.Leaves([]byte(doc))
	require.NoError(t, err)
	return leaves
}

func TestEvaluateLLM_CertainTokensScoreExactlyOne(t *testing.T) {
	doc := `{"invoice_id":"INV-100","total":42.5}`
	leaves := mustLeaves(t, doc)
	tokens := tokensFor(doc, 3, 0) // logprob 0 => probability 1.0

	m := confidence.EvaluateLLM(leaves, tokens)

	assert.Equal(t, 1.0, m["invoice_id"])
	assert.Equal(t, 1.0, m["total"])
	assert.Equal(t, 1.0, m[domain.OverallKey])
}

func TestEvaluateLLM_MinimumAcrossRun(t *testing.T) {
	// The field value "INV-100" spans three tokens with mixed certainty;
	// the weakest one decides the score.
	tokens := []domain.TokenLogProb{
		{Token: `{"invoice_id":"`, LogProb: 0},
		{Token: `INV`, LogProb: 0},
		{Token: `-1`, LogProb: math.Log(0.5)},
		{Token: `00`, LogProb: math.Log(0.9)},
		{Token: `"}`, LogProb: 0},
	}
	leaves := mustLeaves(t, `{"invoice_id":"INV-100"}`)

	m := confidence.EvaluateLLM(leaves, tokens)

	assert.InDelta(t, 0.5, m["invoice_id"], 1e-9)
}

func TestEvaluateLLM_UnlocatableLeafOmitted(t *testing.T) {
	// Tokens reconstruct a different text than the extracted object, so the
	// value cannot be found. It must be absent, not zero.
	leaves := mustLeaves(t, `{"merchant":"CONTOSO"}`)
	tokens := tokensFor(`{"merchant":"ACME"}`, 4, math.Log(0.8))

	m := confidence.EvaluateLLM(leaves, tokens)

	_, present := m["merchant"]
	assert.False(t, present)
	assert.Contains(t, m, domain.OverallKey)
	assert.Equal(t, 0.0, m[domain.OverallKey])
}

func TestEvaluateLLM_DuplicateValuesResolveForward(t *testing.T) {
	// Two leaves with the same value: the cursor moves forward so each
	// occurrence gets its own token run.
	text := `{"a":"7.00","b":"7.00"}`
	tokens := []domain.TokenLogProb{
		{Token: `{"a":"`, LogProb: 0},
		{Token: `7.00`, LogProb: math.Log(0.9)},
		{Token: `","b":"`, LogProb: 0},
		{Token: `7.00`, LogProb: math.Log(0.3)},
		{Token: `"}`, LogProb: 0},
	}
	require.Equal(t, text, joinTokens(tokens))
	leaves := mustLeaves(t, text)

	m := confidence.EvaluateLLM(leaves, tokens)

	assert.InDelta(t, 0.9, m["a"], 1e-9)
	assert.InDelta(t, 0.3, m["b"], 1e-9)
}

func TestEvaluateLLM_NoTokens(t *testing.T) {
	leaves := mustLeaves(t, `{"a":"x"}`)

	m := confidence.EvaluateLLM(leaves, nil)

	assert.Equal(t, domain.ConfidenceMap{domain.OverallKey: 0}, m)
}

func TestEvaluateLLM_BoundsAndOverall(t *testing.T) {
	doc := `{"a":"alpha","b":"beta","c":"gamma"}`
	leaves := mustLeaves(t, doc)
	tokens := tokensFor(doc, 2, math.Log(0.25))

	m := confidence.EvaluateLLM(leaves, tokens)

	require.Contains(t, m, domain.OverallKey)
	for k, v := range m {
		assert.GreaterOrEqual(t, v, 0.0, "key %s", k)
		assert.LessOrEqual(t, v, 1.0, "key %s", k)
	}
	assert.InDelta(t, 0.25, m[domain.OverallKey], 1e-9)
}

func joinTokens(tokens []domain.TokenLogProb) string {
	var s string
	for _, t := range tokens {
		s += t.Token
	}
	return s
}
