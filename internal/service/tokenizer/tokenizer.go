package tokenizer

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"lm-go/internal/model/ngram"
)

// Tokenizer turns raw source bytes into the flat token stream the counter
// consumes, bracketed by sentence markers.
type Tokenizer interface {
	Tokenize(ctx context.Context, source []byte) ([]string, error)
	// Name is the registry key, e.g. "text" or "python"
	Name() string
}

// Registry manages tokenizers by name and by file extension
type Registry struct {
	mu         sync.RWMutex
	tokenizers map[string]Tokenizer
	extensions map[string]string // file extension -> tokenizer name
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		tokenizers: make(map[string]Tokenizer),
		extensions: make(map[string]string),
	}
}

// NewDefaultRegistry registers the text tokenizers and every source-code
// tokenizer.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	r.Register(NewTextTokenizer(), []string{".txt", ".text"})
	r.Register(NewMarkupTokenizer(), []string{".xml", ".html", ".htm"})

	constructors := []struct {
		build      func() (*CodeTokenizer, error)
		extensions []string
	}{
		{NewGoTokenizer, []string{".go"}},
		{NewPythonTokenizer, []string{".py"}},
		{NewJavaTokenizer, []string{".java"}},
		{NewJavaScriptTokenizer, []string{".js", ".jsx", ".mjs"}},
		{NewTypeScriptTokenizer, []string{".ts", ".tsx"}},
	}
	for _, c := range constructors {
		t, err := c.build()
		if err != nil {
			return nil, err
		}
		r.Register(t, c.extensions)
	}
	return r, nil
}

// Register adds a tokenizer under its name and the given extensions
func (r *Registry) Register(t Tokenizer, extensions []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokenizers[t.Name()] = t
	for _, ext := range extensions {
		r.extensions[strings.ToLower(ext)] = t.Name()
	}
}

// Get returns the tokenizer registered under name
func (r *Registry) Get(name string) (Tokenizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokenizers[name]
	if !ok {
		return nil, fmt.Errorf("no tokenizer named %q: %w", name, ngram.ErrInvalidConfiguration)
	}
	return t, nil
}

// ForFile returns the tokenizer registered for the extension of path
func (r *Registry) ForFile(path string) (Tokenizer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.extensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, false
	}
	t, ok := r.tokenizers[name]
	return t, ok
}

// Names returns the registered tokenizer names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tokenizers))
	for name := range r.tokenizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TokenizeString tokenizes text with the tokenizer registered under name.
// An empty name selects "text".
func (r *Registry) TokenizeString(ctx context.Context, name, text string) ([]string, error) {
	if name == "" {
		name = "text"
	}
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return t.Tokenize(ctx, []byte(text))
}
