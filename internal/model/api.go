package model

// TrainModelRequest trains a model from raw text or a pre-tokenized stream.
// Tokens takes precedence over Text.
type TrainModelRequest struct {
	Name      string   `json:"name" binding:"required"`
	N         int      `json:"n" binding:"required"`
	Strategy  string   `json:"strategy" binding:"required"`
	Text      string   `json:"text,omitempty"`
	Tokens    []string `json:"tokens,omitempty"`
	Tokenizer string   `json:"tokenizer,omitempty"`
}

type TrainModelResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	N         int    `json:"n"`
	Strategy  string `json:"strategy"`
	Tokens    int    `json:"tokens"`
	Windows   int64  `json:"windows"`
	Records   int    `json:"records"`
	Fallbacks int    `json:"fallbacks"`
	Skipped   int    `json:"skipped"`
}

// EvaluateRequest scores held-out text against a stored model
type EvaluateRequest struct {
	Name      string   `json:"name" binding:"required"`
	N         int      `json:"n,omitempty"`
	Text      string   `json:"text,omitempty"`
	Tokens    []string `json:"tokens,omitempty"`
	Tokenizer string   `json:"tokenizer,omitempty"`
}

// PredictRequest asks for the most probable words after an n-1 word prefix
type PredictRequest struct {
	Name   string   `json:"name" binding:"required"`
	Prefix []string `json:"prefix" binding:"required"`
	K      int      `json:"k,omitempty"`
}
