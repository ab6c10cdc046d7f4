package tokenizer

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

var goClasses = map[string]string{
	"identifier":                 "ID",
	"field_identifier":           "ID",
	"type_identifier":            "ID",
	"package_identifier":         "ID",
	"int_literal":                "NUM",
	"float_literal":              "NUM",
	"imaginary_literal":          "NUM",
	"raw_string_literal":         "STR",
	"interpreted_string_literal": "STR",
	"rune_literal":               "CHAR",
	"true":                       "BOOL",
	"false":                      "BOOL",
	"nil":                        "NIL",
}

// NewGoTokenizer creates a tokenizer for Go source code
func NewGoTokenizer() (*CodeTokenizer, error) {
	return newCodeTokenizer("go", tree_sitter.NewLanguage(golang.Language()), goClasses)
}
