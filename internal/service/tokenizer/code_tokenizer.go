package tokenizer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"lm-go/internal/model/ngram"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// CodeTokenizer emits the leaf tokens of a tree-sitter parse, with
// literals and identifiers collapsed to class tokens such as ID and NUM.
// The whole source is one sentence.
type CodeTokenizer struct {
	name      string
	parser    *tree_sitter.Parser
	language  *tree_sitter.Language
	normalize map[string]string // node kind -> class token
	mu        sync.Mutex        // tree-sitter parsers are not thread-safe
}

func newCodeTokenizer(name string, language *tree_sitter.Language, normalize map[string]string) (*CodeTokenizer, error) {
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set %s language: %w", name, err)
	}
	return &CodeTokenizer{
		name:      name,
		parser:    parser,
		language:  language,
		normalize: normalize,
	}, nil
}

func (t *CodeTokenizer) Name() string {
	return t.name
}

func (t *CodeTokenizer) Tokenize(ctx context.Context, source []byte) ([]string, error) {
	t.mu.Lock()
	tree := t.parser.Parse(source, nil)
	t.mu.Unlock()
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", t.name)
	}
	defer tree.Close()

	tokens := []string{ngram.SentenceStart}
	t.traverseNode(tree.RootNode(), source, &tokens)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append(tokens, ngram.SentenceEnd), nil
}

func (t *CodeTokenizer) traverseNode(node *tree_sitter.Node, source []byte, tokens *[]string) {
	if node == nil {
		return
	}

	kind := node.Kind()
	if strings.Contains(kind, "comment") {
		return
	}
	// literal nodes may have children (string_start, string_content, ...).
	// Anonymous keywords can share a kind with a literal, as the TypeScript
	// `number` type does, so only named nodes are classed.
	if class, ok := t.normalize[kind]; ok && node.IsNamed() {
		*tokens = append(*tokens, class)
		return
	}

	if node.ChildCount() == 0 {
		if token := leafToken(node.Utf8Text(source)); token != "" {
			*tokens = append(*tokens, token)
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		t.traverseNode(node.Child(i), source, tokens)
	}
}

// leafToken drops pure whitespace and maps any leaf that still contains
// whitespace to STR, so tokens never contain spaces.
func leafToken(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if strings.IndexFunc(trimmed, unicode.IsSpace) >= 0 {
		return "STR"
	}
	return trimmed
}
