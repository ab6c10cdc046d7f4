package tokenizer

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var pythonClasses = map[string]string{
	"identifier": "ID",
	"integer":    "NUM",
	"float":      "NUM",
	"string":     "STR",
	"true":       "BOOL",
	"false":      "BOOL",
	"none":       "NONE",
}

// NewPythonTokenizer creates a tokenizer for Python source code
func NewPythonTokenizer() (*CodeTokenizer, error) {
	return newCodeTokenizer("python", tree_sitter.NewLanguage(python.Language()), pythonClasses)
}
