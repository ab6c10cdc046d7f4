package ngram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lm-go/internal/model/ngram"
	"lm-go/internal/service/graphdb"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GraphStore keeps models as (:Model)-[:HAS_NGRAM]->(:NGram) subgraphs in
// Kuzu or Neo4j.
type GraphStore struct {
	db     graphdb.GraphDatabase
	logger *zap.Logger
}

// NewGraphStore creates a store over an open graph database
func NewGraphStore(db graphdb.GraphDatabase, logger *zap.Logger) *GraphStore {
	return &GraphStore{db: db, logger: logger}
}

// Backend names the storage backend
func (s *GraphStore) Backend() string {
	return s.db.Dialect()
}

func ngramNodeKey(model string, position int) string {
	return fmt.Sprintf("%s#%d", model, position)
}

// Save replaces any stored model of the same name
func (s *GraphStore) Save(ctx context.Context, model *Model) error {
	if err := s.Delete(ctx, model.Name); err != nil {
		return err
	}

	_, err := s.db.ExecuteWrite(ctx,
		`CREATE (m:Model {name: $name, id: $id, n: $n, strategy: $strategy, createdAt: $createdAt})`,
		map[string]any{
			"name":      model.Name,
			"id":        model.ID.String(),
			"n":         int64(model.N),
			"strategy":  model.Strategy.String(),
			"createdAt": model.CreatedAt.Format(time.RFC3339Nano),
		})
	if err != nil {
		return fmt.Errorf("create model node: %w", err)
	}

	for i, record := range model.records {
		_, err := s.db.ExecuteWrite(ctx,
			`MATCH (m:Model {name: $name})
			 CREATE (m)-[:HAS_NGRAM]->(:NGram {key: $key, model: $name, position: $position, words: $words, count: $count, probability: $probability})`,
			map[string]any{
				"name":        model.Name,
				"key":         ngramNodeKey(model.Name, i),
				"position":    int64(i),
				"words":       record.Words.String(),
				"count":       record.Count,
				"probability": record.Probability,
			})
		if err != nil {
			return fmt.Errorf("create n-gram node %q: %w", record.Words.String(), err)
		}
	}

	s.logger.Info("Saved n-gram model",
		zap.String("model", model.Name),
		zap.String("backend", s.Backend()),
		zap.Int("records", model.Len()))
	return nil
}

// Load reads the model stored under name. n == 0 accepts the stored order.
func (s *GraphStore) Load(ctx context.Context, name string, n int) (*Model, LoadReport, error) {
	var report LoadReport
	rows, err := s.db.ExecuteRead(ctx,
		`MATCH (m:Model) WHERE m.name = $name
		 RETURN m.id AS id, m.n AS n, m.strategy AS strategy, m.createdAt AS createdAt`,
		map[string]any{"name": name})
	if err != nil {
		return NewModel(name, n, StrategyUnknown, nil), report, fmt.Errorf("query model %s: %v: %w", name, err, ngram.ErrResourceUnavailable)
	}
	if len(rows) == 0 {
		return NewModel(name, n, StrategyUnknown, nil), report, fmt.Errorf("%s: %w", name, ngram.ErrModelNotFound)
	}
	meta := rows[0]
	storedN := int(asInt64(meta["n"]))
	if n == 0 {
		n = storedN
	}
	if storedN != n {
		return NewModel(name, n, StrategyUnknown, nil), report,
			fmt.Errorf("model %s holds %d-grams, requested %d: %w", name, storedN, n, ngram.ErrInvalidConfiguration)
	}

	rows, err = s.db.ExecuteRead(ctx,
		`MATCH (m:Model)-[:HAS_NGRAM]->(g:NGram) WHERE m.name = $name
		 RETURN g.words AS words, g.count AS count, g.probability AS probability
		 ORDER BY g.position`,
		map[string]any{"name": name})
	if err != nil {
		return NewModel(name, n, StrategyUnknown, nil), report, fmt.Errorf("query n-grams: %w", err)
	}

	records := make([]ngram.NGram, 0, len(rows))
	for i, row := range rows {
		words, _ := row["words"].(string)
		record := ngram.NGram{
			Words:       ngram.Words(strings.Fields(words)),
			Count:       asInt64(row["count"]),
			Probability: asFloat64(row["probability"]),
		}
		if record.Order() != n || record.Count < 0 || record.Probability < 0 {
			report.skip(fmt.Errorf("row %d %q: %w", i, words, ngram.ErrMalformedRecord))
			continue
		}
		records = append(records, record)
	}
	report.Records = len(records)

	strategyName, _ := meta["strategy"].(string)
	strategy, _ := ParseStrategy(strategyName)
	model := NewModel(name, n, strategy, records)
	if id, ok := meta["id"].(string); ok {
		if parsed, err := uuid.Parse(id); err == nil {
			model.ID = parsed
		}
	}
	if createdAt, ok := meta["createdAt"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			model.CreatedAt = ts
		}
	}

	s.logger.Info("Loaded n-gram model",
		zap.String("model", name),
		zap.String("backend", s.Backend()),
		zap.Int("records", report.Records),
		zap.Int("skipped", report.Skipped))
	return model, report, nil
}

// Exists reports whether a Model node exists for name
func (s *GraphStore) Exists(ctx context.Context, name string) bool {
	rows, err := s.db.ExecuteRead(ctx,
		`MATCH (m:Model) WHERE m.name = $name RETURN m.name AS name`,
		map[string]any{"name": name})
	return err == nil && len(rows) > 0
}

// Delete removes the Model node and its n-grams
func (s *GraphStore) Delete(ctx context.Context, name string) error {
	params := map[string]any{"name": name}
	if _, err := s.db.ExecuteWrite(ctx, `MATCH (g:NGram) WHERE g.model = $name DETACH DELETE g`, params); err != nil {
		return fmt.Errorf("failed to delete n-grams: %w", err)
	}
	if _, err := s.db.ExecuteWrite(ctx, `MATCH (m:Model) WHERE m.name = $name DETACH DELETE m`, params); err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *GraphStore) Close() error {
	return s.db.Close(context.Background())
}

func asInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return -1
}

func asFloat64(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return -1
}
