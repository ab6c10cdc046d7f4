package ngram

import (
	"fmt"

	"lm-go/internal/model/ngram"

	"go.uber.org/zap"
)

// MinOrder is the smallest supported n-gram order. Unigrams have no
// conditioning context.
const MinOrder = 2

// CountTable holds the merged n-gram records of one token stream together
// with the per-context statistics the smoothing strategies need.
type CountTable struct {
	n             int
	records       []*ngram.NGram   // first-seen order
	index         map[string]int   // n-gram key -> position in records
	continuations map[string]int64 // context key -> distinct n-grams sharing it
	occurrences   map[string]int64 // context key -> total occurrences of the context
	vocabulary    map[string]struct{}
	windows       int64
}

func newCountTable(n int) *CountTable {
	return &CountTable{
		n:             n,
		index:         make(map[string]int),
		continuations: make(map[string]int64),
		occurrences:   make(map[string]int64),
		vocabulary:    make(map[string]struct{}),
	}
}

// N returns the order of every record in the table
func (t *CountTable) N() int {
	return t.n
}

// Len returns the number of distinct n-grams
func (t *CountTable) Len() int {
	return len(t.records)
}

// Windows returns the number of windows that were counted (L-n+1)
func (t *CountTable) Windows() int64 {
	return t.windows
}

// Records returns a copy of the records in first-seen order
func (t *CountTable) Records() []ngram.NGram {
	out := make([]ngram.NGram, len(t.records))
	for i, r := range t.records {
		out[i] = *r
	}
	return out
}

// Get returns the record for an exact word sequence
func (t *CountTable) Get(words ngram.Words) (ngram.NGram, bool) {
	i, ok := t.index[words.Key()]
	if !ok {
		return ngram.NGram{}, false
	}
	return *t.records[i], true
}

// Continuations returns the number of distinct n-grams that begin with context
func (t *CountTable) Continuations(context ngram.Words) int64 {
	return t.continuations[context.Key()]
}

// Occurrences returns how often context occurred as the prefix of a window
func (t *CountTable) Occurrences(context ngram.Words) int64 {
	return t.occurrences[context.Key()]
}

// Contexts returns the number of distinct contexts
func (t *CountTable) Contexts() int {
	return len(t.continuations)
}

// VocabularySize returns the number of distinct tokens in the counted stream
func (t *CountTable) VocabularySize() int {
	return len(t.vocabulary)
}

// Counter slides an n-wide window over a token stream and merges duplicate windows
type Counter struct {
	n      int
	logger *zap.Logger
}

// NewCounter creates a counter for n-grams of order n
func NewCounter(n int, logger *zap.Logger) (*Counter, error) {
	if n < MinOrder {
		return nil, fmt.Errorf("n-grams must have a minimum size of %d, got %d: %w", MinOrder, n, ngram.ErrInvalidConfiguration)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Counter{n: n, logger: logger}, nil
}

// N returns the order this counter produces
func (c *Counter) N() int {
	return c.n
}

// Count builds the count table for tokens. A stream shorter than n yields
// an empty table.
func (c *Counter) Count(tokens []string) *CountTable {
	table := newCountTable(c.n)
	for _, token := range tokens {
		table.vocabulary[token] = struct{}{}
	}

	for i := 0; i+c.n <= len(tokens); i++ {
		words := make(ngram.Words, c.n)
		copy(words, tokens[i:i+c.n])
		key := words.Key()
		contextKey := words.Context().Key()

		table.windows++
		table.occurrences[contextKey]++

		if pos, exists := table.index[key]; exists {
			table.records[pos].Count++
			continue
		}
		table.index[key] = len(table.records)
		table.records = append(table.records, &ngram.NGram{Words: words, Count: 1})
		table.continuations[contextKey]++
	}

	c.logger.Debug("Counted n-grams",
		zap.Int("n", c.n),
		zap.Int("tokens", len(tokens)),
		zap.Int64("windows", table.windows),
		zap.Int("unique_ngrams", len(table.records)),
		zap.Int("contexts", len(table.continuations)),
		zap.Int("vocabulary", len(table.vocabulary)),
	)

	return table
}
