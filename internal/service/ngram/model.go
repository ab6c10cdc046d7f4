package ngram

import (
	"sort"
	"time"

	"lm-go/internal/model/ngram"

	"github.com/google/uuid"
)

// Model is a smoothed, immutable table of n-gram records
type Model struct {
	ID        uuid.UUID
	Name      string
	N         int
	Strategy  Strategy
	CreatedAt time.Time

	records []ngram.NGram
	index   *Index
}

// NewModel builds a model over records. Records must all have order n;
// records of another order are dropped and later duplicates of an already
// seen word sequence are ignored.
func NewModel(name string, n int, strategy Strategy, records []ngram.NGram) *Model {
	kept := make([]ngram.NGram, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if record.Order() != n {
			continue
		}
		key := record.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		words := make(ngram.Words, len(record.Words))
		copy(words, record.Words)
		kept = append(kept, ngram.NGram{Words: words, Count: record.Count, Probability: record.Probability})
	}

	return &Model{
		ID:        uuid.New(),
		Name:      name,
		N:         n,
		Strategy:  strategy,
		CreatedAt: time.Now().UTC(),
		records:   kept,
		index:     newIndex(kept),
	}
}

// NewModelFromTable builds a model from a smoothed count table
func NewModelFromTable(name string, table *CountTable, strategy Strategy) *Model {
	return NewModel(name, table.N(), strategy, table.Records())
}

// Len returns the number of records, |model|
func (m *Model) Len() int {
	return len(m.records)
}

// Empty reports whether the model holds no records
func (m *Model) Empty() bool {
	return m == nil || len(m.records) == 0
}

// Records returns a copy of the records in their stored order
func (m *Model) Records() []ngram.NGram {
	out := make([]ngram.NGram, len(m.records))
	copy(out, m.records)
	return out
}

// Lookup returns the record whose words exactly match words
func (m *Model) Lookup(words ngram.Words) (ngram.NGram, bool) {
	if len(words) != m.N {
		return ngram.NGram{}, false
	}
	pos, ok := m.index.lookup(words.Key())
	if !ok {
		return ngram.NGram{}, false
	}
	return m.records[pos], true
}

// Continuations returns every record whose first n-1 words equal context,
// most probable first.
func (m *Model) Continuations(context ngram.Words) []ngram.NGram {
	if len(context) != m.N-1 {
		return nil
	}
	positions := m.index.withContext(context)
	out := make([]ngram.NGram, 0, len(positions))
	for _, pos := range positions {
		out = append(out, m.records[pos])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Probability != out[j].Probability {
			return out[i].Probability > out[j].Probability
		}
		return out[i].Words.LastWord() < out[j].Words.LastWord()
	})
	return out
}

// Prediction is a candidate next word for a context
type Prediction struct {
	Word        string  `json:"word"`
	Probability float64 `json:"probability"`
	Count       int64   `json:"count"`
}

// Predict returns up to k next-word candidates for context. k <= 0 returns all.
func (m *Model) Predict(context ngram.Words, k int) []Prediction {
	continuations := m.Continuations(context)
	if k > 0 && len(continuations) > k {
		continuations = continuations[:k]
	}
	predictions := make([]Prediction, 0, len(continuations))
	for _, c := range continuations {
		predictions = append(predictions, Prediction{
			Word:        c.Words.LastWord(),
			Probability: c.Probability,
			Count:       c.Count,
		})
	}
	return predictions
}

// Stats returns summary statistics for the model
func (m *Model) Stats() ModelStats {
	vocabulary := make(map[string]struct{})
	var total int64
	for _, record := range m.records {
		total += record.Count
		for _, word := range record.Words {
			vocabulary[word] = struct{}{}
		}
	}
	return ModelStats{
		ID:             m.ID.String(),
		Name:           m.Name,
		N:              m.N,
		Strategy:       m.Strategy.String(),
		NGramCount:     len(m.records),
		TotalCount:     total,
		VocabularySize: len(vocabulary),
		CreatedAt:      m.CreatedAt,
	}
}

// ModelStats contains statistics about an n-gram model
type ModelStats struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	N              int       `json:"n"`
	Strategy       string    `json:"strategy"`
	NGramCount     int       `json:"ngram_count"`
	TotalCount     int64     `json:"total_count"`
	VocabularySize int       `json:"vocabulary_size"`
	CreatedAt      time.Time `json:"created_at"`
}
