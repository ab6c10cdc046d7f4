package tokenizer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"lm-go/internal/model/ngram"
)

// ReadTokens tokenizes the corpus file at path. An unreadable file yields
// an empty sequence and ErrResourceUnavailable.
func ReadTokens(ctx context.Context, path string, t Tokenizer) ([]string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return []string{}, fmt.Errorf("unable to open %s: %v: %w", path, err, ngram.ErrResourceUnavailable)
	}
	tokens, err := t.Tokenize(ctx, source)
	if err != nil {
		return []string{}, fmt.Errorf("failed to tokenize %s: %w", path, err)
	}
	return tokens, nil
}

// CorpusStats counts the whitespace-separated words of a corpus file
type CorpusStats struct {
	Path        string `json:"path"`
	Words       int    `json:"words"`
	UniqueWords int    `json:"unique_words"`
}

// CountWords counts every whitespace-separated word of the file and the
// number of distinct lowercased words.
func CountWords(path string) (CorpusStats, error) {
	stats := CorpusStats{Path: path}
	seen := make(map[string]struct{})
	err := scanWords(path, func(word string) {
		stats.Words++
		seen[strings.ToLower(word)] = struct{}{}
	})
	stats.UniqueWords = len(seen)
	return stats, err
}

// Vocabulary returns the distinct lowercased words of the file, sorted
func Vocabulary(path string) ([]string, error) {
	seen := make(map[string]struct{})
	if err := scanWords(path, func(word string) {
		seen[strings.ToLower(word)] = struct{}{}
	}); err != nil {
		return nil, err
	}
	words := make([]string, 0, len(seen))
	for word := range seen {
		words = append(words, word)
	}
	sort.Strings(words)
	return words, nil
}

func scanWords(path string, visit func(string)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open %s: %v: %w", path, err, ngram.ErrResourceUnavailable)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		visit(scanner.Text())
	}
	return scanner.Err()
}
