package tokenizer

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

var javaScriptClasses = map[string]string{
	"identifier":                    "ID",
	"property_identifier":           "ID",
	"shorthand_property_identifier": "ID",
	"number":                        "NUM",
	"string":                        "STR",
	"template_string":               "STR",
	"regex":                         "REGEX",
	"true":                          "BOOL",
	"false":                         "BOOL",
	"null":                          "NULL",
	"undefined":                     "UNDEF",
}

// NewJavaScriptTokenizer creates a tokenizer for JavaScript source code
func NewJavaScriptTokenizer() (*CodeTokenizer, error) {
	return newCodeTokenizer("javascript", tree_sitter.NewLanguage(javascript.Language()), javaScriptClasses)
}
