package tokenizer

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strings"
	"unicode"

	"lm-go/internal/model/ngram"
)

var markupTag = regexp.MustCompile(`<[^>]+>`)

// TextTokenizer splits natural-language text line by line. Each line
// becomes <s>, its lowercased punctuation-free words, then </s>.
type TextTokenizer struct {
	markup bool
}

// NewTextTokenizer tokenizes plain text. Blank lines yield "<s> </s>".
func NewTextTokenizer() *TextTokenizer {
	return &TextTokenizer{}
}

// NewMarkupTokenizer strips <...> tags first and skips lines left empty
// or holding a single space.
func NewMarkupTokenizer() *TextTokenizer {
	return &TextTokenizer{markup: true}
}

func (t *TextTokenizer) Name() string {
	if t.markup {
		return "markup"
	}
	return "text"
}

func (t *TextTokenizer) Tokenize(ctx context.Context, source []byte) ([]string, error) {
	if t.markup {
		source = markupTag.ReplaceAll(source, nil)
	}

	var tokens []string
	scanner := bufio.NewScanner(bytes.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if t.markup && (line == "" || line == " ") {
			continue
		}

		tokens = append(tokens, ngram.SentenceStart)
		for _, field := range strings.Fields(line) {
			if word := NormalizeWord(field); word != "" {
				tokens = append(tokens, word)
			}
		}
		tokens = append(tokens, ngram.SentenceEnd)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// NormalizeWord lowercases word and removes punctuation, symbols and
// control characters.
func NormalizeWord(word string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsControl(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, word)
}
