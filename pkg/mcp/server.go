package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"lm-go/internal/model/ngram"
	ngramsvc "lm-go/internal/service/ngram"
	"lm-go/internal/service/tokenizer"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// LanguageModelServer exposes stored n-gram models as MCP tools
type LanguageModelServer struct {
	server   *mcp.Server
	service  *ngramsvc.Service
	registry *tokenizer.Registry
	logger   *zap.Logger
	handler  *mcp.StreamableHTTPHandler
}

type ScoreSentenceParams struct {
	Model     string `json:"model" jsonschema:"the name of the stored model"`
	Text      string `json:"text" jsonschema:"the sentence or passage to score"`
	Tokenizer string `json:"tokenizer,omitempty" jsonschema:"tokenizer name, defaults to text"`
}

type PredictNextParams struct {
	Model  string   `json:"model" jsonschema:"the name of the stored model"`
	Prefix []string `json:"prefix" jsonschema:"the n-1 preceding words"`
	K      int      `json:"k,omitempty" jsonschema:"maximum number of candidates"`
}

func NewLanguageModelServer(service *ngramsvc.Service, registry *tokenizer.Registry, logger *zap.Logger) *LanguageModelServer {
	server := &LanguageModelServer{
		service:  service,
		registry: registry,
		logger:   logger,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "NGramLM",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "scoreSentence",
		Description: "Score a sentence against a stored n-gram model. Returns the sentence probability, its natural log, and how many windows were unseen",
	}, server.handleScoreSentence)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "perplexity",
		Description: "Compute the perplexity of a passage against a stored n-gram model, together with the model's own perplexity",
	}, server.handlePerplexity)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "predictNext",
		Description: "List the most probable next words after an n-1 word prefix",
	}, server.handlePredictNext)

	server.handler = mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	server.server = mcpServer
	return server
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func jsonResult(value any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func (s *LanguageModelServer) evaluate(ctx context.Context, args ScoreSentenceParams) (ngramsvc.Report, *mcp.CallToolResult) {
	tokens, err := s.registry.TokenizeString(ctx, args.Tokenizer, args.Text)
	if err != nil {
		return ngramsvc.Report{}, errorResult("Failed to tokenize text: %v", err)
	}
	report, err := s.service.Evaluate(ctx, args.Model, 0, tokens)
	if err != nil {
		s.logger.Error("Failed to evaluate", zap.String("model", args.Model), zap.Error(err))
		return ngramsvc.Report{}, errorResult("Failed to evaluate against model %s: %v", args.Model, err)
	}
	return report, nil
}

func (s *LanguageModelServer) handleScoreSentence(ctx context.Context, req *mcp.CallToolRequest, args ScoreSentenceParams) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Handling scoreSentence request", zap.String("model", args.Model))

	report, failure := s.evaluate(ctx, args)
	if failure != nil {
		return failure, nil, nil
	}
	result, err := jsonResult(map[string]any{
		"model":                report.Model,
		"windows":              report.Windows,
		"unseen":               report.Unseen,
		"sentence_probability": report.SentenceProbability,
		"log_probability":      report.LogProbability,
	})
	return result, nil, err
}

func (s *LanguageModelServer) handlePerplexity(ctx context.Context, req *mcp.CallToolRequest, args ScoreSentenceParams) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Handling perplexity request", zap.String("model", args.Model))

	report, failure := s.evaluate(ctx, args)
	if failure != nil {
		return failure, nil, nil
	}
	result, err := jsonResult(map[string]any{
		"model":            report.Model,
		"tokens":           report.Tokens,
		"perplexity":       report.Perplexity,
		"model_perplexity": report.ModelPerplexity,
	})
	return result, nil, err
}

func (s *LanguageModelServer) handlePredictNext(ctx context.Context, req *mcp.CallToolRequest, args PredictNextParams) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Handling predictNext request", zap.String("model", args.Model), zap.Strings("prefix", args.Prefix))

	predictions, err := s.service.Predict(ctx, args.Model, ngram.Words(args.Prefix), args.K)
	if err != nil {
		s.logger.Error("Failed to predict", zap.String("model", args.Model), zap.Error(err))
		return errorResult("Failed to predict with model %s: %v", args.Model, err), nil, nil
	}
	result, err := jsonResult(predictions)
	return result, nil, err
}

// Handler returns the streamable HTTP handler
func (s *LanguageModelServer) Handler() http.Handler {
	return s.handler
}

// SetupHTTPRoutes mounts the MCP endpoint on the gin engine
func (s *LanguageModelServer) SetupHTTPRoutes(router *gin.Engine) {
	router.Any("/mcp", gin.WrapH(s.handler))
}
