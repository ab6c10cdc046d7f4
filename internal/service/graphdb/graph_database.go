package graphdb

import "context"

// GraphDatabase runs Cypher queries against an embedded or remote graph
// database and returns rows as column-name maps.
type GraphDatabase interface {
	VerifyConnectivity(ctx context.Context) error
	ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	ExecuteWrite(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	// Dialect names the database, for logging
	Dialect() string
	Close(ctx context.Context) error
}

// Schema statements shared by both databases. Kuzu requires explicit node
// and relationship tables; Neo4j only gets uniqueness constraints.
var kuzuSchema = []string{
	`CREATE NODE TABLE IF NOT EXISTS Model (
		name STRING,
		id STRING,
		n INT64,
		strategy STRING,
		createdAt STRING,
		PRIMARY KEY (name)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS NGram (
		key STRING,
		model STRING,
		position INT64,
		words STRING,
		count INT64,
		probability DOUBLE,
		PRIMARY KEY (key)
	)`,
	`CREATE REL TABLE IF NOT EXISTS HAS_NGRAM (FROM Model TO NGram)`,
}

var neo4jSchema = []string{
	`CREATE CONSTRAINT model_name IF NOT EXISTS FOR (m:Model) REQUIRE m.name IS UNIQUE`,
	`CREATE CONSTRAINT ngram_key IF NOT EXISTS FOR (g:NGram) REQUIRE g.key IS UNIQUE`,
}
