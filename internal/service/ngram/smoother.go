package ngram

import (
	"fmt"
	"math"
	"strings"

	"lm-go/internal/model/ngram"

	"go.uber.org/zap"
)

// Strategy selects the smoothing discipline used to assign probabilities
type Strategy int

const (
	// StrategyUnknown is carried by models loaded from formats without metadata
	StrategyUnknown Strategy = iota
	GoodTuring
	KneserNey
)

// KneserNeyDiscount is the fixed absolute discount D
const KneserNeyDiscount = 0.5

var strategyNames = map[Strategy]string{
	StrategyUnknown: "unknown",
	GoodTuring:      "good-turing",
	KneserNey:       "kneser-ney",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Valid reports whether s names a strategy that can train a model
func (s Strategy) Valid() bool {
	return s == GoodTuring || s == KneserNey
}

// ParseStrategy maps a name (or menu number) to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "good-turing", "goodturing", "good_turing", "gt", "1":
		return GoodTuring, nil
	case "kneser-ney", "kneserney", "kneser_ney", "kn", "2":
		return KneserNey, nil
	case "", "unknown":
		return StrategyUnknown, nil
	default:
		return StrategyUnknown, fmt.Errorf("unknown smoothing strategy %q: %w", name, ngram.ErrInvalidConfiguration)
	}
}

// SmoothingReport summarises one smoothing run
type SmoothingReport struct {
	Strategy  Strategy `json:"strategy"`
	Records   int      `json:"records"`
	Fallbacks int      `json:"fallbacks"` // singleton-class estimates (Good-Turing)
	Skipped   int      `json:"skipped"`   // records left at zero because of ErrInvalidState
}

// estimator assigns a probability to every record of the table. All
// frequency tables it builds are local to one call.
type estimator func(table *CountTable, report *SmoothingReport, logger *zap.Logger)

var estimators = map[Strategy]estimator{
	GoodTuring: estimateGoodTuring,
	KneserNey:  estimateKneserNey,
}

// Smooth assigns probabilities to the records of table using strategy.
// Probabilities are per-context estimates; nothing is renormalised across
// contexts.
func Smooth(table *CountTable, strategy Strategy, logger *zap.Logger) (SmoothingReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	estimate, ok := estimators[strategy]
	if !ok {
		return SmoothingReport{}, fmt.Errorf("cannot smooth with %s: %w", strategy, ngram.ErrInvalidConfiguration)
	}

	report := SmoothingReport{Strategy: strategy, Records: table.Len()}
	estimate(table, &report, logger)

	logger.Info("Smoothed n-gram table",
		zap.String("strategy", strategy.String()),
		zap.Int("n", table.N()),
		zap.Int("records", report.Records),
		zap.Int("fallbacks", report.Fallbacks),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

// estimateGoodTuring re-estimates counts from the population of contexts:
// Nc[p] is the number of distinct n-grams sharing context p and
// eachOccurrences[c] the number of contexts with Nc == c.
//
// Two departures from the literal textbook rule keep every estimate in
// [0, 1]: the adjusted branch c*/Nc[p] is capped at 1, and the fallback
// uses N1/(N1+Nc[p]) rather than N1/Nc[p], which reaches 4 on a single
// four-window sentence.
func estimateGoodTuring(table *CountTable, report *SmoothingReport, logger *zap.Logger) {
	eachOccurrences := make(map[int64]int64)
	for _, nc := range table.continuations {
		eachOccurrences[nc]++
	}

	for _, record := range table.records {
		nc := table.continuations[record.Words.Context().Key()]
		if nc == 0 {
			report.Skipped++
			logger.Warn("Skipping n-gram without context population",
				zap.String("ngram", record.Words.String()),
				zap.Error(ngram.ErrInvalidState))
			continue
		}

		c := record.Count
		cOccurrences := eachOccurrences[c]
		c1Occurrences := eachOccurrences[c+1]
		if cOccurrences != 0 && c1Occurrences != 0 {
			cAsterisk := float64(c+1) * float64(c1Occurrences) / float64(cOccurrences)
			record.Probability = math.Min(cAsterisk/float64(nc), 1)
			continue
		}

		report.Fallbacks++
		record.Probability = singletonClassEstimate(eachOccurrences[1], nc)
	}
}

// singletonClassEstimate is the share of the singleton population N1 in the
// combined population of N1 and the context's own continuations. It stands
// in for the unbounded ratio N1/Nc.
func singletonClassEstimate(n1, nc int64) float64 {
	if n1+nc == 0 {
		return 0
	}
	return float64(n1) / float64(n1+nc)
}

// estimateKneserNey interpolates a discounted direct estimate with a
// continuation probability over the training vocabulary.
func estimateKneserNey(table *CountTable, report *SmoothingReport, logger *zap.Logger) {
	vocabulary := float64(table.VocabularySize())

	for _, record := range table.records {
		// unique continuations of the context
		np := float64(table.continuations[record.Words.Context().Key()])
		if np == 0 || vocabulary == 0 {
			report.Skipped++
			logger.Warn("Skipping n-gram without continuation count",
				zap.String("ngram", record.Words.String()),
				zap.Error(ngram.ErrInvalidState))
			continue
		}

		// effective context total: continuations plus the excess of this count over one
		cp := np + float64(record.Count-1)
		lambda := KneserNeyDiscount * np / cp
		continuation := np / vocabulary

		record.Probability = discountedCount(record.Count)/cp + lambda*continuation
	}
}

// discountedCount is max(c-D, 0) with singletons fully discounted, so a
// count-1 n-gram carries interpolated continuation mass only.
func discountedCount(count int64) float64 {
	if count <= 1 {
		return 0
	}
	return math.Max(float64(count)-KneserNeyDiscount, 0)
}
