package ngram

import (
	"fmt"
	"math"
	"strings"

	"lm-go/internal/model/ngram"

	"go.uber.org/zap"
)

// MatchPolicy controls how held-out windows are matched against a model
type MatchPolicy int

const (
	// MatchExact looks every window up by key; unseen windows get 1/|model|.
	MatchExact MatchPolicy = iota
	// MatchLegacyScan scans the model table in stored order. For perplexity
	// only the first record is compared until some window has matched; after
	// that, windows without a match contribute nothing.
	MatchLegacyScan
)

func (p MatchPolicy) String() string {
	switch p {
	case MatchExact:
		return "exact"
	case MatchLegacyScan:
		return "legacy-scan"
	default:
		return fmt.Sprintf("match(%d)", int(p))
	}
}

// ParseMatchPolicy maps a configuration value to a MatchPolicy
func ParseMatchPolicy(name string) (MatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exact":
		return MatchExact, nil
	case "legacy-scan", "legacy", "scan":
		return MatchLegacyScan, nil
	default:
		return MatchExact, fmt.Errorf("unknown match policy %q: %w", name, ngram.ErrInvalidConfiguration)
	}
}

// WindowScore is the probability assigned to one held-out window
type WindowScore struct {
	Words       ngram.Words `json:"words"`
	Probability float64     `json:"probability"`
	Matched     bool        `json:"matched"`
}

// Report bundles the evaluation measures for one held-out sequence
type Report struct {
	Model               string  `json:"model"`
	N                   int     `json:"n"`
	Tokens              int     `json:"tokens"`
	Windows             int     `json:"windows"`
	Unseen              int     `json:"unseen"`
	SentenceProbability float64 `json:"sentence_probability"`
	LogProbability      float64 `json:"log_probability"`
	Perplexity          float64 `json:"perplexity"`
	ModelPerplexity     float64 `json:"model_perplexity"`
}

// Evaluator scores held-out token sequences against a trained model. It
// never fails: unseen data gets the documented fallback probability and
// empty inputs yield the empty product, 1.0.
type Evaluator struct {
	policy MatchPolicy
	logger *zap.Logger
}

// NewEvaluator creates an evaluator using the given match policy
func NewEvaluator(policy MatchPolicy, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{policy: policy, logger: logger}
}

// Policy returns the match policy in use
func (e *Evaluator) Policy() MatchPolicy {
	return e.policy
}

// unseenProbability is the uniform fallback 1/|model|
func unseenProbability(model *Model) float64 {
	return 1.0 / float64(model.Len())
}

// windows returns every contiguous n-word window of tokens
func windows(tokens []string, n int) []ngram.Words {
	if n < 1 || len(tokens) < n {
		return nil
	}
	out := make([]ngram.Words, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, ngram.Words(tokens[i:i+n]))
	}
	return out
}

// ScoreWindows assigns a probability to every window of tokens
func (e *Evaluator) ScoreWindows(model *Model, tokens []string) []WindowScore {
	if model.Empty() {
		return nil
	}
	ws := windows(tokens, model.N)
	scores := make([]WindowScore, 0, len(ws))
	for _, w := range ws {
		var record ngram.NGram
		var ok bool
		if e.policy == MatchLegacyScan {
			record, ok = scanFor(model, w)
		} else {
			record, ok = model.Lookup(w)
		}
		score := WindowScore{Words: w, Probability: unseenProbability(model)}
		if ok {
			score.Probability = record.Probability
			score.Matched = true
		}
		scores = append(scores, score)
	}
	return scores
}

// scanFor walks the model table in stored order until words match
func scanFor(model *Model, words ngram.Words) (ngram.NGram, bool) {
	for _, record := range model.records {
		if record.Words.Equal(words) {
			return record, true
		}
	}
	return ngram.NGram{}, false
}

// SentenceProbability is the product of all window probabilities
func (e *Evaluator) SentenceProbability(model *Model, tokens []string) float64 {
	probability := 1.0
	for _, score := range e.ScoreWindows(model, tokens) {
		probability *= score.Probability
	}
	return probability
}

// SentenceLogProbability is the natural log of SentenceProbability, summed
// per window so long sequences do not underflow.
func (e *Evaluator) SentenceLogProbability(model *Model, tokens []string) float64 {
	logProb := 0.0
	for _, score := range e.ScoreWindows(model, tokens) {
		logProb += math.Log(score.Probability)
	}
	return logProb
}

// ModelPerplexity is prod(p^(-1/|model|)) over the model's own records
func (e *Evaluator) ModelPerplexity(model *Model) float64 {
	if model.Empty() {
		return 1.0
	}
	exponent := -1.0 / float64(model.Len())
	sum := 0.0
	for _, record := range model.records {
		sum += math.Log(record.Probability)
	}
	return math.Exp(exponent * sum)
}

// Perplexity is prod(p_i^(-1/|tokens|)) over the windows of tokens
func (e *Evaluator) Perplexity(model *Model, tokens []string) float64 {
	if model.Empty() || len(tokens) == 0 {
		return 1.0
	}

	var probabilities []float64
	if e.policy == MatchLegacyScan {
		probabilities = legacyPerplexityProbabilities(model, tokens)
	} else {
		for _, score := range e.ScoreWindows(model, tokens) {
			probabilities = append(probabilities, score.Probability)
		}
	}

	exponent := -1.0 / float64(len(tokens))
	sum := 0.0
	for _, p := range probabilities {
		sum += math.Log(p)
	}
	return math.Exp(exponent * sum)
}

// legacyPerplexityProbabilities reproduces the stored-order scan: until any
// window has matched, a window is compared against the first record only.
func legacyPerplexityProbabilities(model *Model, tokens []string) []float64 {
	var probabilities []float64
	matchFound := false
	for _, w := range windows(tokens, model.N) {
		for _, record := range model.records {
			if record.Words.Equal(w) {
				probabilities = append(probabilities, record.Probability)
				matchFound = true
				break
			}
			if !matchFound {
				probabilities = append(probabilities, unseenProbability(model))
				break
			}
		}
	}
	return probabilities
}

// Evaluate computes every measure for tokens against model
func (e *Evaluator) Evaluate(model *Model, tokens []string) Report {
	report := Report{
		Tokens:              len(tokens),
		SentenceProbability: 1.0,
		Perplexity:          1.0,
		ModelPerplexity:     1.0,
	}
	if model == nil {
		return report
	}
	report.Model = model.Name
	report.N = model.N

	scores := e.ScoreWindows(model, tokens)
	report.Windows = len(scores)
	for _, score := range scores {
		report.SentenceProbability *= score.Probability
		report.LogProbability += math.Log(score.Probability)
		if !score.Matched {
			report.Unseen++
		}
	}
	report.Perplexity = e.Perplexity(model, tokens)
	report.ModelPerplexity = e.ModelPerplexity(model)

	e.logger.Debug("Evaluated held-out sequence",
		zap.String("model", model.Name),
		zap.String("policy", e.policy.String()),
		zap.Int("tokens", report.Tokens),
		zap.Int("windows", report.Windows),
		zap.Int("unseen", report.Unseen),
		zap.Float64("perplexity", report.Perplexity),
	)
	return report
}
