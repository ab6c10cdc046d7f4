package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lm-go/internal/model/ngram"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

type Config struct {
	App        AppConfig        `yaml:"app" toml:"app"`
	Training   TrainingConfig   `yaml:"training" toml:"training"`
	Evaluation EvaluationConfig `yaml:"evaluation" toml:"evaluation"`
	Store      StoreConfig      `yaml:"store" toml:"store"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Server     ServerConfig     `yaml:"server" toml:"server"`
}

type AppConfig struct {
	Name    string `yaml:"name" toml:"name"`
	WorkDir string `yaml:"workdir" toml:"workdir"`
}

type TrainingConfig struct {
	// Corpus is the training corpus file
	Corpus string `yaml:"corpus" toml:"corpus"`
	N      int    `yaml:"n" toml:"n"`
	// Strategy is "good-turing" or "kneser-ney"
	Strategy string `yaml:"strategy" toml:"strategy"`
	// Tokenizer is a registry name: "text", "markup", or a language such as "go"
	Tokenizer string `yaml:"tokenizer" toml:"tokenizer"`
	// Rebuild forces training even if a stored model exists
	Rebuild bool `yaml:"rebuild" toml:"rebuild"`
}

type EvaluationConfig struct {
	// Corpus is the held-out corpus file
	Corpus      string `yaml:"corpus" toml:"corpus"`
	MatchPolicy string `yaml:"match_policy" toml:"match_policy"`
	PredictTopK int    `yaml:"predict_top_k" toml:"predict_top_k"`
}

type StoreConfig struct {
	// Backend is one of text, msgpack, sqlite, kuzu, neo4j
	Backend   string       `yaml:"backend" toml:"backend"`
	Dir       string       `yaml:"dir" toml:"dir"`
	CacheSize int          `yaml:"cache_size" toml:"cache_size"`
	SQLite    SQLiteConfig `yaml:"sqlite" toml:"sqlite"`
	Kuzu      KuzuConfig   `yaml:"kuzu" toml:"kuzu"`
	Neo4j     Neo4jConfig  `yaml:"neo4j" toml:"neo4j"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type KuzuConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri" toml:"uri"`
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
	Database string `yaml:"database" toml:"database"`
}

type LoggingConfig struct {
	Level       string   `yaml:"level" toml:"level"`
	OutputPaths []string `yaml:"output_paths" toml:"output_paths"`
	Development bool     `yaml:"development" toml:"development"`
}

type ServerConfig struct {
	Port      int  `yaml:"port" toml:"port"`
	EnableMCP bool `yaml:"enable_mcp" toml:"enable_mcp"`
}

var (
	strategies    = []string{"good-turing", "kneser-ney"}
	matchPolicies = []string{"exact", "legacy-scan"}
	backends      = []string{"text", "msgpack", "sqlite", "kuzu", "neo4j"}
)

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "lm-go",
			WorkDir: ".",
		},
		Training: TrainingConfig{
			Corpus:    "kas-5000.text.txt",
			N:         2,
			Strategy:  "good-turing",
			Tokenizer: "text",
		},
		Evaluation: EvaluationConfig{
			Corpus:      "test.txt",
			MatchPolicy: "exact",
			PredictTopK: 5,
		},
		Store: StoreConfig{
			Backend:   "text",
			Dir:       "models",
			CacheSize: 8,
			SQLite:    SQLiteConfig{Path: "models.db"},
			Kuzu:      KuzuConfig{Path: ":memory:"},
		},
		Logging: LoggingConfig{
			Level:       "info",
			OutputPaths: []string{"stdout"},
		},
		Server: ServerConfig{
			Port:      8080,
			EnableMCP: true,
		},
	}
}

// LoadConfig overlays the file at path on DefaultConfig. Files ending in
// .toml are decoded as TOML, anything else as YAML. An empty path returns
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %v: %w", path, err, ngram.ErrResourceUnavailable)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot train or serve a model
func (c *Config) Validate() error {
	if c.Training.N < 2 {
		return fmt.Errorf("training.n must be at least 2, got %d: %w", c.Training.N, ngram.ErrInvalidConfiguration)
	}
	if !oneOf(c.Training.Strategy, strategies) {
		return fmt.Errorf("unknown training.strategy %q: %w", c.Training.Strategy, ngram.ErrInvalidConfiguration)
	}
	if !oneOf(c.Evaluation.MatchPolicy, matchPolicies) {
		return fmt.Errorf("unknown evaluation.match_policy %q: %w", c.Evaluation.MatchPolicy, ngram.ErrInvalidConfiguration)
	}
	if !oneOf(c.Store.Backend, backends) {
		return fmt.Errorf("unknown store.backend %q: %w", c.Store.Backend, ngram.ErrInvalidConfiguration)
	}
	if c.Store.Backend == "neo4j" && c.Store.Neo4j.URI == "" {
		return fmt.Errorf("store.neo4j.uri is required for the neo4j backend: %w", ngram.ErrInvalidConfiguration)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: %w", c.Server.Port, ngram.ErrInvalidConfiguration)
	}
	return nil
}

// ResolvePath joins relative paths onto the work directory
func (c *Config) ResolvePath(path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.App.WorkDir, path)
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
