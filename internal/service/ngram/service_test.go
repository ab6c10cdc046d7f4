package ngram

import (
	"context"
	"strings"
	"testing"

	"lm-go/internal/config"
	"lm-go/internal/model/ngram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := NewTextStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	service, err := NewService(store, nil, 2, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { service.Close() })
	return service
}

func TestService_TrainEvaluatePredict(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	result, err := service.Train(ctx, TrainRequest{
		Name:     "corpus-kneser-ney-bigrams",
		N:        2,
		Strategy: KneserNey,
		Tokens:   strings.Fields(corpus),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(strings.Fields(corpus))-1), result.Windows)
	assert.Equal(t, result.Model.Len(), result.Smoothing.Records)
	assert.True(t, service.Store().Exists(ctx, "corpus-kneser-ney-bigrams"))

	report, err := service.Evaluate(ctx, "corpus-kneser-ney-bigrams", 2, strings.Fields("<s> the cat ran </s>"))
	require.NoError(t, err)
	assert.Equal(t, 4, report.Windows)
	assert.Zero(t, report.Unseen)

	predictions, err := service.Predict(ctx, "corpus-kneser-ney-bigrams", ngram.Words{"the"}, 1)
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, "cat", predictions[0].Word)

	_, err = service.Predict(ctx, "corpus-kneser-ney-bigrams", ngram.Words{"the", "cat"}, 1)
	assert.ErrorIs(t, err, ngram.ErrInvalidConfiguration)

	stats, err := service.Stats(ctx, "corpus-kneser-ney-bigrams")
	require.NoError(t, err)
	assert.Equal(t, "kneser-ney", stats.Strategy)
}

func TestService_TrainRejectsInvalidRequests(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	_, err := service.Train(ctx, TrainRequest{Name: "m", N: 1, Strategy: GoodTuring, Tokens: []string{"a", "b"}})
	assert.ErrorIs(t, err, ngram.ErrInvalidConfiguration)

	_, err = service.Train(ctx, TrainRequest{Name: "m", N: 2, Strategy: StrategyUnknown, Tokens: []string{"a", "b"}})
	assert.ErrorIs(t, err, ngram.ErrInvalidConfiguration)

	_, err = service.Train(ctx, TrainRequest{N: 2, Strategy: GoodTuring})
	assert.ErrorIs(t, err, ngram.ErrInvalidConfiguration)

	assert.False(t, service.Store().Exists(ctx, "m"))
}

func TestService_LoadMissing(t *testing.T) {
	service := newTestService(t)
	_, err := service.Load(context.Background(), "nothing-good-turing-bigrams", 2)
	assert.ErrorIs(t, err, ngram.ErrModelNotFound)
}

func TestService_TrainOrLoad(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	req := TrainRequest{
		Name:     "corpus-good-turing-bigrams",
		N:        2,
		Strategy: GoodTuring,
		Tokens:   strings.Fields(corpus),
	}

	first, err := service.TrainOrLoad(ctx, req, false)
	require.NoError(t, err)

	// a stored model is loaded, not retrained from the new tokens
	req.Tokens = strings.Fields("<s> something else </s>")
	second, err := service.TrainOrLoad(ctx, req, false)
	require.NoError(t, err)
	assert.Equal(t, first.Len(), second.Len())

	rebuilt, err := service.TrainOrLoad(ctx, req, true)
	require.NoError(t, err)
	assert.Equal(t, 3, rebuilt.Len())
}

func TestService_CacheEvictionReloadsFromStore(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	for _, name := range []string{"a-good-turing-bigrams", "b-good-turing-bigrams", "c-good-turing-bigrams"} {
		_, err := service.Train(ctx, TrainRequest{Name: name, N: 2, Strategy: GoodTuring, Tokens: strings.Fields(corpus)})
		require.NoError(t, err)
	}

	// cache holds two models; the first was evicted and comes back from disk
	model, err := service.Load(ctx, "a-good-turing-bigrams", 2)
	require.NoError(t, err)
	assert.Equal(t, GoodTuring, model.Strategy)

	require.NoError(t, service.Delete(ctx, "a-good-turing-bigrams"))
	_, err = service.Load(ctx, "a-good-turing-bigrams", 2)
	assert.ErrorIs(t, err, ngram.ErrModelNotFound)
}

func TestOpenStore_Backends(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{"text", "msgpack", "sqlite", "kuzu"} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.App.WorkDir = t.TempDir()
			cfg.Store.Backend = backend

			store, err := OpenStore(ctx, cfg, zap.NewNop())
			require.NoError(t, err)
			defer store.Close()
			assert.Equal(t, backend, store.Backend())
		})
	}

	cfg := config.DefaultConfig()
	cfg.Store.Backend = "redis"
	_, err := OpenStore(ctx, cfg, zap.NewNop())
	assert.ErrorIs(t, err, ngram.ErrInvalidConfiguration)
}

func TestService_ReopensCustomNamedModel(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewTextStore(dir, zap.NewNop())
	require.NoError(t, err)
	service, err := NewService(store, nil, 2, zap.NewNop())
	require.NoError(t, err)
	_, err = service.Train(ctx, TrainRequest{Name: "news", N: 2, Strategy: KneserNey, Tokens: strings.Fields(corpus)})
	require.NoError(t, err)
	require.NoError(t, service.Close())

	// a fresh service has nothing cached and the name carries no order
	store, err = NewTextStore(dir, zap.NewNop())
	require.NoError(t, err)
	reopened, err := NewService(store, nil, 2, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	stats, err := reopened.Stats(ctx, "news")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.N)
	assert.Positive(t, stats.NGramCount)

	predictions, err := reopened.Predict(ctx, "news", ngram.Words{"the"}, 1)
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, "cat", predictions[0].Word)

	report, err := reopened.Evaluate(ctx, "news", 0, strings.Fields("<s> the cat ran </s>"))
	require.NoError(t, err)
	assert.Equal(t, 4, report.Windows)
}
