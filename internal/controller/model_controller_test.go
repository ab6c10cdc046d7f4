package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lm-go/internal/model"
	ngramsvc "lm-go/internal/service/ngram"
	"lm-go/internal/service/tokenizer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const trainingText = "the cat sat on the mat\nthe cat ran\na dog sat on a mat"

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := ngramsvc.NewTextStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	service, err := ngramsvc.NewService(store, nil, 4, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { service.Close() })

	registry, err := tokenizer.NewDefaultRegistry()
	require.NoError(t, err)

	mc := NewModelController(service, registry, 3, zap.NewNop())
	router := gin.New()
	router.POST("/train", mc.Train)
	router.POST("/evaluate", mc.Evaluate)
	router.POST("/predict", mc.Predict)
	router.GET("/models/:name/stats", mc.Stats)
	router.DELETE("/models/:name", mc.Delete)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func trainTestModel(t *testing.T, router *gin.Engine) model.TrainModelResponse {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/train", model.TrainModelRequest{
		Name:     "pets-kneser-ney-bigrams",
		N:        2,
		Strategy: "kneser-ney",
		Text:     trainingText,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response model.TrainModelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestModelController_Train(t *testing.T) {
	router := setupTestRouter(t)
	response := trainTestModel(t, router)

	assert.Equal(t, "pets-kneser-ney-bigrams", response.Name)
	assert.Equal(t, 2, response.N)
	assert.Equal(t, "kneser-ney", response.Strategy)
	// three lines of 6, 3 and 6 words, each wrapped in sentence markers
	assert.Equal(t, 21, response.Tokens)
	assert.Equal(t, int64(20), response.Windows)
	assert.NotEmpty(t, response.ID)
}

func TestModelController_TrainRejectsBadInput(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/train", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/train", model.TrainModelRequest{
		Name: "x", N: 2, Strategy: "witten-bell", Text: trainingText,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/train", model.TrainModelRequest{
		Name: "x", N: 1, Strategy: "good-turing", Text: trainingText,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/train", model.TrainModelRequest{
		Name: "x", N: 2, Strategy: "good-turing", Text: trainingText, Tokenizer: "cobol",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModelController_EvaluateAndPredict(t *testing.T) {
	router := setupTestRouter(t)
	trainTestModel(t, router)

	w := doJSON(t, router, http.MethodPost, "/evaluate", model.EvaluateRequest{
		Name: "pets-kneser-ney-bigrams",
		N:    2,
		Text: "the cat ran",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report ngramsvc.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 4, report.Windows)
	assert.Zero(t, report.Unseen)
	assert.Greater(t, report.SentenceProbability, 0.0)

	w = doJSON(t, router, http.MethodPost, "/predict", model.PredictRequest{
		Name:   "pets-kneser-ney-bigrams",
		Prefix: []string{"the"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var predictions struct {
		Predictions []ngramsvc.Prediction `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &predictions))
	require.NotEmpty(t, predictions.Predictions)
	assert.Equal(t, "cat", predictions.Predictions[0].Word)

	w = doJSON(t, router, http.MethodPost, "/predict", model.PredictRequest{
		Name:   "pets-kneser-ney-bigrams",
		Prefix: []string{"the", "cat"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModelController_StatsAndDelete(t *testing.T) {
	router := setupTestRouter(t)
	trainTestModel(t, router)

	w := doJSON(t, router, http.MethodGet, "/models/pets-kneser-ney-bigrams/stats", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats ngramsvc.ModelStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.N)
	assert.Equal(t, "kneser-ney", stats.Strategy)

	w = doJSON(t, router, http.MethodDelete, "/models/pets-kneser-ney-bigrams", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/models/pets-kneser-ney-bigrams/stats", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/evaluate", model.EvaluateRequest{Name: "missing", Text: "the cat"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
