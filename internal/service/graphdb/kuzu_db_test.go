package graphdb

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestKuzuDatabase_BasicFunctionality(t *testing.T) {
	logger := zap.NewNop()

	db, err := NewKuzuDatabase(":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create Kuzu database: %v", err)
	}
	defer db.Close(context.Background())

	ctx := context.Background()

	if err := db.VerifyConnectivity(ctx); err != nil {
		t.Fatalf("Failed to verify connectivity: %v", err)
	}

	records, err := db.ExecuteRead(ctx, "RETURN 1 as test", nil)
	if err != nil {
		t.Fatalf("Failed to execute simple query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0]["test"] != int64(1) {
		t.Fatalf("Expected test=1, got %v", records[0]["test"])
	}
	if db.Dialect() != "kuzu" {
		t.Fatalf("Expected dialect kuzu, got %s", db.Dialect())
	}
}

func TestKuzuDatabase_ModelSchema(t *testing.T) {
	db, err := NewKuzuDatabase(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create Kuzu database: %v", err)
	}
	defer db.Close(context.Background())

	ctx := context.Background()

	_, err = db.ExecuteWrite(ctx,
		`CREATE (m:Model {name: $name, id: $id, n: $n, strategy: $strategy, createdAt: $createdAt})`,
		map[string]any{"name": "m", "id": "x", "n": int64(2), "strategy": "kneser-ney", "createdAt": "now"})
	if err != nil {
		t.Fatalf("Failed to create model node: %v", err)
	}

	_, err = db.ExecuteWrite(ctx,
		`MATCH (m:Model {name: $name})
		 CREATE (m)-[:HAS_NGRAM]->(:NGram {key: $key, model: $name, position: $position, words: $words, count: $count, probability: $probability})`,
		map[string]any{"name": "m", "key": "m#0", "position": int64(0), "words": "the cat", "count": int64(3), "probability": 0.5})
	if err != nil {
		t.Fatalf("Failed to create n-gram node: %v", err)
	}

	records, err := db.ExecuteRead(ctx,
		`MATCH (m:Model)-[:HAS_NGRAM]->(g:NGram) WHERE m.name = $name RETURN g.words AS words, g.count AS count`,
		map[string]any{"name": "m"})
	if err != nil {
		t.Fatalf("Failed to query n-grams: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 n-gram, got %d", len(records))
	}
	if records[0]["words"] != "the cat" || records[0]["count"] != int64(3) {
		t.Fatalf("Unexpected record %v", records[0])
	}
}
