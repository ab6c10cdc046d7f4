package controller

import (
	"context"
	"errors"
	"net/http"

	"lm-go/internal/model"
	"lm-go/internal/model/ngram"
	ngramsvc "lm-go/internal/service/ngram"
	"lm-go/internal/service/tokenizer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ModelController struct {
	service     *ngramsvc.Service
	registry    *tokenizer.Registry
	predictTopK int
	logger      *zap.Logger
}

func NewModelController(service *ngramsvc.Service, registry *tokenizer.Registry, predictTopK int, logger *zap.Logger) *ModelController {
	return &ModelController{
		service:     service,
		registry:    registry,
		predictTopK: predictTopK,
		logger:      logger,
	}
}

// statusFor maps sentinel errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ngram.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, ngram.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, ngram.ErrResourceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (mc *ModelController) fail(c *gin.Context, message string, err error) {
	mc.logger.Error(message, zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(statusFor(err), gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func (mc *ModelController) tokens(ctx context.Context, tokens []string, tokenizerName, text string) ([]string, error) {
	if len(tokens) > 0 {
		return tokens, nil
	}
	return mc.registry.TokenizeString(ctx, tokenizerName, text)
}

func (mc *ModelController) Train(c *gin.Context) {
	var request model.TrainModelRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		mc.logger.Error("Invalid request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	strategy, err := ngramsvc.ParseStrategy(request.Strategy)
	if err != nil {
		mc.fail(c, "Invalid smoothing strategy", err)
		return
	}
	tokens, err := mc.tokens(c.Request.Context(), request.Tokens, request.Tokenizer, request.Text)
	if err != nil {
		mc.fail(c, "Failed to tokenize training text", err)
		return
	}

	mc.logger.Info("Training model",
		zap.String("name", request.Name),
		zap.Int("n", request.N),
		zap.String("strategy", strategy.String()),
		zap.Int("tokens", len(tokens)))

	result, err := mc.service.Train(c.Request.Context(), ngramsvc.TrainRequest{
		Name:     request.Name,
		N:        request.N,
		Strategy: strategy,
		Tokens:   tokens,
	})
	if err != nil {
		mc.fail(c, "Failed to train model", err)
		return
	}

	c.JSON(http.StatusOK, model.TrainModelResponse{
		ID:        result.Model.ID.String(),
		Name:      result.Model.Name,
		N:         result.Model.N,
		Strategy:  result.Model.Strategy.String(),
		Tokens:    len(tokens),
		Windows:   result.Windows,
		Records:   result.Model.Len(),
		Fallbacks: result.Smoothing.Fallbacks,
		Skipped:   result.Smoothing.Skipped,
	})
}

func (mc *ModelController) Evaluate(c *gin.Context) {
	var request model.EvaluateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		mc.logger.Error("Invalid request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	tokens, err := mc.tokens(c.Request.Context(), request.Tokens, request.Tokenizer, request.Text)
	if err != nil {
		mc.fail(c, "Failed to tokenize held-out text", err)
		return
	}

	report, err := mc.service.Evaluate(c.Request.Context(), request.Name, request.N, tokens)
	if err != nil {
		mc.fail(c, "Failed to evaluate model", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (mc *ModelController) Predict(c *gin.Context) {
	var request model.PredictRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		mc.logger.Error("Invalid request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	k := request.K
	if k == 0 {
		k = mc.predictTopK
	}
	predictions, err := mc.service.Predict(c.Request.Context(), request.Name, ngram.Words(request.Prefix), k)
	if err != nil {
		mc.fail(c, "Failed to predict next word", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":        request.Name,
		"prefix":      request.Prefix,
		"predictions": predictions,
	})
}

func (mc *ModelController) Stats(c *gin.Context) {
	name := c.Param("name")
	stats, err := mc.service.Stats(c.Request.Context(), name)
	if err != nil {
		mc.fail(c, "Failed to load model", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (mc *ModelController) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := mc.service.Delete(c.Request.Context(), name); err != nil {
		mc.fail(c, "Failed to delete model", err)
		return
	}
	mc.logger.Info("Deleted model", zap.String("name", name))
	c.Status(http.StatusNoContent)
}
