package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4jDatabase implements the GraphDatabase interface against a Neo4j server
type Neo4jDatabase struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewNeo4jDatabase connects to uri with basic auth. An empty database name
// selects the server default.
func NewNeo4jDatabase(ctx context.Context, uri, username, password, database string, logger *zap.Logger) (*Neo4jDatabase, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	db := &Neo4jDatabase{driver: driver, database: database, logger: logger}
	if err := db.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	for _, schema := range neo4jSchema {
		if _, err := db.ExecuteWrite(ctx, schema, nil); err != nil {
			driver.Close(ctx)
			return nil, fmt.Errorf("failed to initialize Neo4j schema: %w", err)
		}
	}
	return db, nil
}

// Dialect names the database
func (db *Neo4jDatabase) Dialect() string {
	return "neo4j"
}

// VerifyConnectivity checks that the server is reachable
func (db *Neo4jDatabase) VerifyConnectivity(ctx context.Context) error {
	if err := db.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}
	return nil
}

// ExecuteRead runs query on a reader and returns the records
func (db *Neo4jDatabase) ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return db.execute(ctx, query, params, neo4j.ExecuteQueryWithReadersRouting())
}

// ExecuteWrite runs query on a writer and returns the records
func (db *Neo4jDatabase) ExecuteWrite(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return db.execute(ctx, query, params, neo4j.ExecuteQueryWithWritersRouting())
}

func (db *Neo4jDatabase) execute(ctx context.Context, query string, params map[string]any, routing neo4j.ExecuteQueryConfigurationOption) ([]map[string]any, error) {
	options := []neo4j.ExecuteQueryConfigurationOption{routing}
	if db.database != "" {
		options = append(options, neo4j.ExecuteQueryWithDatabase(db.database))
	}

	result, err := neo4j.ExecuteQuery(ctx, db.driver, query, params, neo4j.EagerResultTransformer, options...)
	if err != nil {
		db.logger.Error("Failed to execute Neo4j query", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	records := make([]map[string]any, 0, len(result.Records))
	for _, record := range result.Records {
		records = append(records, record.AsMap())
	}
	return records, nil
}

// Close closes the driver
func (db *Neo4jDatabase) Close(ctx context.Context) error {
	return db.driver.Close(ctx)
}
