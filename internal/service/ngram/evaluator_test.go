package ngram

import (
	"math"
	"strings"
	"testing"

	"lm-go/internal/model/ngram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedModel() *Model {
	return NewModel("fixed", 2, GoodTuring, []ngram.NGram{
		{Words: ngram.Words{"<s>", "the"}, Count: 2, Probability: 0.5},
		{Words: ngram.Words{"the", "cat"}, Count: 1, Probability: 0.25},
		{Words: ngram.Words{"cat", "</s>"}, Count: 1, Probability: 0.2},
		{Words: ngram.Words{"the", "dog"}, Count: 1, Probability: 0.1},
	})
}

func TestEvaluator_EmptyInputs(t *testing.T) {
	for _, policy := range []MatchPolicy{MatchExact, MatchLegacyScan} {
		e := NewEvaluator(policy, zap.NewNop())
		model := fixedModel()
		empty := NewModel("empty", 2, GoodTuring, nil)

		assert.Equal(t, 1.0, e.SentenceProbability(model, nil), policy.String())
		assert.Equal(t, 1.0, e.Perplexity(model, nil), policy.String())
		assert.Equal(t, 1.0, e.SentenceProbability(empty, []string{"<s>", "the"}), policy.String())
		assert.Equal(t, 1.0, e.Perplexity(empty, []string{"<s>", "the"}), policy.String())
		assert.Equal(t, 1.0, e.ModelPerplexity(empty), policy.String())
	}
}

func TestEvaluator_ExactMatchUsesStoredProbability(t *testing.T) {
	e := NewEvaluator(MatchExact, zap.NewNop())
	scores := e.ScoreWindows(fixedModel(), []string{"the", "dog"})
	require.Len(t, scores, 1)
	assert.True(t, scores[0].Matched)
	assert.Equal(t, 0.1, scores[0].Probability)
}

func TestEvaluator_UnseenFallback(t *testing.T) {
	e := NewEvaluator(MatchExact, zap.NewNop())
	model := fixedModel()
	scores := e.ScoreWindows(model, []string{"a", "zebra"})
	require.Len(t, scores, 1)
	assert.False(t, scores[0].Matched)
	assert.Equal(t, 1.0/float64(model.Len()), scores[0].Probability)
	assert.False(t, math.IsNaN(scores[0].Probability))
	assert.Greater(t, scores[0].Probability, 0.0)
}

func TestEvaluator_SentenceProbabilityIsProduct(t *testing.T) {
	e := NewEvaluator(MatchExact, zap.NewNop())
	tokens := []string{"<s>", "the", "cat", "</s>"}
	assert.InDelta(t, 0.5*0.25*0.2, e.SentenceProbability(fixedModel(), tokens), 1e-15)
	assert.InDelta(t, math.Log(0.5*0.25*0.2), e.SentenceLogProbability(fixedModel(), tokens), 1e-12)
}

func TestEvaluator_Perplexity(t *testing.T) {
	e := NewEvaluator(MatchExact, zap.NewNop())
	model := fixedModel()
	tokens := []string{"<s>", "the", "fish", "</s>"}

	// windows: (<s> the)=0.5, (the fish)=1/4 unseen, (fish </s>)=1/4 unseen
	want := math.Pow(0.5*0.25*0.25, -1.0/4)
	assert.InDelta(t, want, e.Perplexity(model, tokens), 1e-12)
}

func TestEvaluator_ModelPerplexity(t *testing.T) {
	e := NewEvaluator(MatchExact, zap.NewNop())
	want := math.Pow(0.5*0.25*0.2*0.1, -1.0/4)
	assert.InDelta(t, want, e.ModelPerplexity(fixedModel()), 1e-12)
}

func TestEvaluator_LegacyScanPerplexity(t *testing.T) {
	e := NewEvaluator(MatchLegacyScan, zap.NewNop())
	model := fixedModel()

	// before any match each window is compared with the first record only,
	// so (the cat) and (cat <s>) take the fallback; (<s> the) then matches
	// and the unmatched (the fish) contributes nothing.
	tokens := []string{"the", "cat", "<s>", "the", "fish"}
	probabilities := legacyPerplexityProbabilities(model, tokens)
	assert.Equal(t, []float64{0.25, 0.25, 0.5}, probabilities)

	want := math.Pow(0.25*0.25*0.5, -1.0/5)
	assert.InDelta(t, want, e.Perplexity(model, tokens), 1e-12)
}

func TestEvaluator_EvaluateReport(t *testing.T) {
	e := NewEvaluator(MatchExact, zap.NewNop())
	report := e.Evaluate(fixedModel(), strings.Fields("<s> the cat </s> <s> the owl </s>"))

	assert.Equal(t, "fixed", report.Model)
	assert.Equal(t, 2, report.N)
	assert.Equal(t, 8, report.Tokens)
	assert.Equal(t, 7, report.Windows)
	// (</s> <s>), (the owl), (owl </s>) are unseen
	assert.Equal(t, 3, report.Unseen)
	assert.InDelta(t, math.Log(report.SentenceProbability), report.LogProbability, 1e-9)
	assert.Greater(t, report.Perplexity, 1.0)
}

func TestEvaluator_TrainedScenario(t *testing.T) {
	table, _ := smoothed(t, 2, "<s> the cat sat </s>", GoodTuring)
	model := NewModelFromTable("scenario", table, GoodTuring)
	e := NewEvaluator(MatchExact, zap.NewNop())

	record, ok := model.Lookup(ngram.Words{"the", "cat"})
	require.True(t, ok)
	scores := e.ScoreWindows(model, []string{"the", "cat"})
	require.Len(t, scores, 1)
	assert.Equal(t, record.Probability, scores[0].Probability)
}

func TestParseMatchPolicy(t *testing.T) {
	p, err := ParseMatchPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MatchExact, p)

	p, err = ParseMatchPolicy("legacy-scan")
	require.NoError(t, err)
	assert.Equal(t, MatchLegacyScan, p)

	_, err = ParseMatchPolicy("fuzzy")
	assert.ErrorIs(t, err, ngram.ErrInvalidConfiguration)
}
