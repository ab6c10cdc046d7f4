package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"lm-go/internal/config"
	"lm-go/internal/controller"
	"lm-go/internal/handler"
	"lm-go/internal/logging"
	ngramsvc "lm-go/internal/service/ngram"
	"lm-go/internal/service/tokenizer"
	"lm-go/pkg/mcp"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// application holds the components shared by the menu and the server
type application struct {
	cfg      *config.Config
	service  *ngramsvc.Service
	registry *tokenizer.Registry
	logger   *zap.Logger
}

func main() {
	var configPath = flag.String("config", "", "Path to configuration file (.yaml or .toml)")
	var workDir = flag.String("workdir", "", "Working directory for corpora and models")
	var backend = flag.String("backend", "", "Model store backend: text, msgpack, sqlite, kuzu, neo4j")
	var train = flag.Bool("train", false, "Rebuild models instead of loading stored ones")
	var serve = flag.Bool("serve", false, "Start the HTTP and MCP server instead of the menu")
	var stats = flag.Bool("stats", false, "Print corpus word and vocabulary counts and exit")
	var port = flag.Int("port", 0, "Server port")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	if *workDir != "" {
		cfg.App.WorkDir = *workDir
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *train {
		cfg.Training.Rebuild = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully", zap.Any("config", cfg))

	if *stats {
		if err := printCorpusStats(cfg, os.Stdout); err != nil {
			logger.Fatal("Failed to count corpus", zap.Error(err))
		}
		return
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer app.service.Close()

	if *serve {
		runServer(app)
		return
	}

	if err := runMenu(ctx, os.Stdin, os.Stdout, app); err != nil {
		logger.Fatal("Menu failed", zap.Error(err))
	}
}

func newApplication(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	store, err := ngramsvc.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open model store: %w", err)
	}

	policy, err := ngramsvc.ParseMatchPolicy(cfg.Evaluation.MatchPolicy)
	if err != nil {
		store.Close()
		return nil, err
	}
	service, err := ngramsvc.NewService(store, ngramsvc.NewEvaluator(policy, logger), cfg.Store.CacheSize, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	registry, err := tokenizer.NewDefaultRegistry()
	if err != nil {
		service.Close()
		return nil, fmt.Errorf("failed to initialize tokenizers: %w", err)
	}

	logger.Info("N-gram service initialized successfully",
		zap.String("backend", store.Backend()),
		zap.String("match_policy", policy.String()))

	return &application{cfg: cfg, service: service, registry: registry, logger: logger}, nil
}

func runServer(app *application) {
	modelController := controller.NewModelController(app.service, app.registry, app.cfg.Evaluation.PredictTopK, app.logger)

	var mcpServer *mcp.LanguageModelServer
	if app.cfg.Server.EnableMCP {
		mcpServer = mcp.NewLanguageModelServer(app.service, app.registry, app.logger)
	}
	router := handler.SetupRouter(modelController, mcpServer, app.logger)

	app.logger.Info("Starting server", zap.Int("port", app.cfg.Server.Port))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", app.cfg.Server.Port), router); err != nil {
		app.logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func printCorpusStats(cfg *config.Config, out io.Writer) error {
	stats, err := tokenizer.CountWords(cfg.ResolvePath(cfg.Training.Corpus))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "number of all words in corpus: %s\n", humanize.Comma(int64(stats.Words)))
	fmt.Fprintf(out, "number of words in vocabulary (unique corpus words): %s\n", humanize.Comma(int64(stats.UniqueWords)))
	return nil
}
