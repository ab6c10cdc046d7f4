package config

import (
	"os"
	"path/filepath"
	"testing"

	"lm-go/internal/model/ngram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Training.N)
	assert.Equal(t, "good-turing", cfg.Training.Strategy)
	assert.Equal(t, "text", cfg.Store.Backend)
	assert.Equal(t, ":memory:", cfg.Store.Kuzu.Path)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	content := `
training:
  corpus: corpus.txt
  n: 3
  strategy: kneser-ney
store:
  backend: sqlite
  sqlite:
    path: lm.db
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Training.N)
	assert.Equal(t, "kneser-ney", cfg.Training.Strategy)
	assert.Equal(t, "corpus.txt", cfg.Training.Corpus)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "lm.db", cfg.Store.SQLite.Path)
	assert.Equal(t, 9090, cfg.Server.Port)
	// untouched sections keep their defaults
	assert.Equal(t, "exact", cfg.Evaluation.MatchPolicy)
	assert.Equal(t, 8, cfg.Store.CacheSize)
}

func TestLoadConfig_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	content := `
[training]
n = 3
strategy = "good-turing"

[evaluation]
match_policy = "legacy-scan"

[store]
backend = "kuzu"

[store.kuzu]
path = ":memory:"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Training.N)
	assert.Equal(t, "legacy-scan", cfg.Evaluation.MatchPolicy)
	assert.Equal(t, "kuzu", cfg.Store.Backend)
	assert.Equal(t, ":memory:", cfg.Store.Kuzu.Path)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ngram.ErrResourceUnavailable)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"order below two", func(c *Config) { c.Training.N = 1 }},
		{"unknown strategy", func(c *Config) { c.Training.Strategy = "witten-bell" }},
		{"unknown match policy", func(c *Config) { c.Evaluation.MatchPolicy = "fuzzy" }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }},
		{"neo4j without uri", func(c *Config) { c.Store.Backend = "neo4j" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ngram.ErrInvalidConfiguration)
		})
	}
}

func TestResolvePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.App.WorkDir = "/data"
	assert.Equal(t, "/data/models", cfg.ResolvePath("models"))
	assert.Equal(t, "/abs/x.db", cfg.ResolvePath("/abs/x.db"))
	assert.Equal(t, ":memory:", cfg.ResolvePath(":memory:"))
}
