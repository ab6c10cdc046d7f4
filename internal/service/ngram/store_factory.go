package ngram

import (
	"context"
	"fmt"

	"lm-go/internal/config"
	"lm-go/internal/model/ngram"
	"lm-go/internal/service/graphdb"

	"go.uber.org/zap"
)

// OpenStore opens the store backend named in the configuration
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Store.Backend {
	case "", "text":
		return NewTextStore(cfg.ResolvePath(cfg.Store.Dir), logger)
	case "msgpack":
		return NewMsgpackStore(cfg.ResolvePath(cfg.Store.Dir), logger)
	case "sqlite":
		return OpenSQLiteStore(ctx, cfg.ResolvePath(cfg.Store.SQLite.Path), logger)
	case "kuzu":
		db, err := graphdb.NewKuzuDatabase(cfg.ResolvePath(cfg.Store.Kuzu.Path), logger)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ngram.ErrResourceUnavailable)
		}
		return NewGraphStore(db, logger), nil
	case "neo4j":
		neo := cfg.Store.Neo4j
		db, err := graphdb.NewNeo4jDatabase(ctx, neo.URI, neo.Username, neo.Password, neo.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ngram.ErrResourceUnavailable)
		}
		return NewGraphStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q: %w", cfg.Store.Backend, ngram.ErrInvalidConfiguration)
	}
}
