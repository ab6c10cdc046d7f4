package ngram

import "strings"

// Sentence boundary markers. They are ordinary vocabulary tokens for counting.
const (
	SentenceStart = "<s>"
	SentenceEnd   = "</s>"
)

// keySeparator joins words into lookup keys. Tokenizers never emit it.
const keySeparator = "\x1f"

// Words is an ordered sequence of tokens (an n-gram or its context)
type Words []string

// String returns the words as a space-separated string
func (w Words) String() string {
	return strings.Join(w, " ")
}

// Key returns the identity key of the sequence. Two sequences share a key
// only if they have the same words in the same order.
func (w Words) Key() string {
	return strings.Join(w, keySeparator)
}

// ContextPrefix returns the key prefix shared by every n-gram whose first
// len(w) words equal w.
func (w Words) ContextPrefix() string {
	return w.Key() + keySeparator
}

// Context returns the context (all words except the last one)
func (w Words) Context() Words {
	if len(w) <= 1 {
		return Words{}
	}
	return w[:len(w)-1]
}

// LastWord returns the last word of the sequence
func (w Words) LastWord() string {
	if len(w) == 0 {
		return ""
	}
	return w[len(w)-1]
}

// Equal reports whether both sequences hold the same words in the same order
func (w Words) Equal(other Words) bool {
	if len(w) != len(other) {
		return false
	}
	for i := range w {
		if w[i] != other[i] {
			return false
		}
	}
	return true
}

// NGram is a counted n-gram record. Probability stays zero until a
// smoothing strategy assigns it.
type NGram struct {
	Words       Words   `json:"words" msgpack:"words"`
	Count       int64   `json:"count" msgpack:"count"`
	Probability float64 `json:"probability" msgpack:"probability"`
}

// Key returns the identity key of the record
func (g NGram) Key() string {
	return g.Words.Key()
}

// Order returns n, the number of words in the record
func (g NGram) Order() int {
	return len(g.Words)
}
