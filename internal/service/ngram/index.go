package ngram

import (
	"lm-go/internal/model/ngram"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/tchap/go-patricia/v2/patricia"
)

// indexFalsePositiveRate bounds how often an unseen window pays for a map lookup
const indexFalsePositiveRate = 0.01

// Index answers exact and context-prefix lookups over immutable records.
// The bloom filter rejects most unseen keys before the map is consulted;
// the patricia trie keeps keys ordered by context for continuation queries.
type Index struct {
	byKey    map[string]int
	contexts *patricia.Trie
	filter   *bloom.BloomFilter
}

func newIndex(records []ngram.NGram) *Index {
	expected := uint(len(records))
	if expected == 0 {
		expected = 1
	}
	idx := &Index{
		byKey:    make(map[string]int, len(records)),
		contexts: patricia.NewTrie(),
		filter:   bloom.NewWithEstimates(expected, indexFalsePositiveRate),
	}
	for i, record := range records {
		key := record.Key()
		idx.byKey[key] = i
		idx.contexts.Insert(patricia.Prefix(key), i)
		idx.filter.AddString(key)
	}
	return idx
}

// lookup returns the position of the record with the given key
func (idx *Index) lookup(key string) (int, bool) {
	if !idx.filter.TestString(key) {
		return 0, false
	}
	pos, ok := idx.byKey[key]
	return pos, ok
}

// withContext returns the positions of all records starting with context
func (idx *Index) withContext(context ngram.Words) []int {
	var positions []int
	_ = idx.contexts.VisitSubtree(patricia.Prefix(context.ContextPrefix()), func(_ patricia.Prefix, item patricia.Item) error {
		if pos, ok := item.(int); ok {
			positions = append(positions, pos)
		}
		return nil
	})
	return positions
}
