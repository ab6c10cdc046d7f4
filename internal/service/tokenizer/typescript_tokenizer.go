package tokenizer

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var typeScriptClasses = map[string]string{
	"identifier":                    "ID",
	"type_identifier":               "ID",
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

// NewTypeScriptTokenizer creates a tokenizer for TypeScript source code
func NewTypeScriptTokenizer() (*CodeTokenizer, error) {
	return newCodeTokenizer("typescript", tree_sitter.NewLanguage(typescript.LanguageTypescript()), typeScriptClasses)
}
