package graphdb

import (
	"context"
	"fmt"

	"github.com/kuzudb/go-kuzu"
	"go.uber.org/zap"
)

// KuzuDatabase implements the GraphDatabase interface using Kuzu
type KuzuDatabase struct {
	db     *kuzu.Database
	conn   *kuzu.Connection
	logger *zap.Logger
}

// NewKuzuDatabase creates a new Kuzu database instance. An empty path or
// ":memory:" opens an in-memory database.
func NewKuzuDatabase(databasePath string, logger *zap.Logger) (*KuzuDatabase, error) {
	var db *kuzu.Database
	var err error

	if databasePath == ":memory:" || databasePath == "" {
		db, err = kuzu.OpenInMemoryDatabase(kuzu.DefaultSystemConfig())
	} else {
		db, err = kuzu.OpenDatabase(databasePath, kuzu.DefaultSystemConfig())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Kuzu database: %w", err)
	}

	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create Kuzu connection: %w", err)
	}

	kuzuDB := &KuzuDatabase{
		db:     db,
		conn:   conn,
		logger: logger,
	}

	if err := kuzuDB.initializeSchema(); err != nil {
		kuzuDB.Close(context.Background())
		return nil, fmt.Errorf("failed to initialize Kuzu schema: %w", err)
	}

	return kuzuDB, nil
}

// Dialect names the database
func (db *KuzuDatabase) Dialect() string {
	return "kuzu"
}

// VerifyConnectivity checks if the database connection is working
func (db *KuzuDatabase) VerifyConnectivity(ctx context.Context) error {
	result, err := db.conn.Query("RETURN 1")
	if err != nil {
		return fmt.Errorf("failed to verify Kuzu connectivity: %w", err)
	}
	result.Close()
	return nil
}

// Close closes the connection and the database
func (db *KuzuDatabase) Close(ctx context.Context) error {
	if db.conn != nil {
		db.conn.Close()
	}
	if db.db != nil {
		db.db.Close()
	}
	return nil
}

// ExecuteRead executes a read-only Cypher query and returns the raw records
func (db *KuzuDatabase) ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return db.executeQuery(query, params, false)
}

// ExecuteWrite executes a write Cypher query and returns the raw records
func (db *KuzuDatabase) ExecuteWrite(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return db.executeQuery(query, params, true)
}

func (db *KuzuDatabase) executeQuery(query string, params map[string]any, isWrite bool) ([]map[string]any, error) {
	var result *kuzu.QueryResult
	var err error

	if len(params) > 0 {
		preparedStatement, err := db.conn.Prepare(query)
		if err != nil {
			db.logger.Error("Failed to prepare Kuzu query",
				zap.String("query", query),
				zap.Bool("isWrite", isWrite),
				zap.Error(err))
			return nil, fmt.Errorf("failed to prepare query: %w", err)
		}
		defer preparedStatement.Close()

		result, err = db.conn.Execute(preparedStatement, params)
		if err != nil {
			db.logger.Error("Failed to execute Kuzu query",
				zap.String("query", query),
				zap.Bool("isWrite", isWrite),
				zap.Error(err))
			return nil, fmt.Errorf("failed to execute query: %w", err)
		}
	} else {
		result, err = db.conn.Query(query)
		if err != nil {
			db.logger.Error("Failed to execute Kuzu query",
				zap.String("query", query),
				zap.Bool("isWrite", isWrite),
				zap.Error(err))
			return nil, fmt.Errorf("failed to execute query: %w", err)
		}
	}
	defer result.Close()

	var records []map[string]any
	for result.HasNext() {
		tuple, err := result.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to get next result row: %w", err)
		}
		record, err := tuple.GetAsMap()
		if err != nil {
			return nil, fmt.Errorf("failed to convert tuple to map: %w", err)
		}
		converted := make(map[string]any, len(record))
		for key, value := range record {
			converted[key] = convertKuzuValue(value)
		}
		records = append(records, converted)
	}

	return records, nil
}

// convertKuzuValue flattens Kuzu nodes to their property maps
func convertKuzuValue(value any) any {
	if node, ok := value.(kuzu.Node); ok {
		return node.Properties
	}
	return value
}

func (db *KuzuDatabase) initializeSchema() error {
	for _, schema := range kuzuSchema {
		result, err := db.conn.Query(schema)
		if err != nil {
			db.logger.Error("Failed to create table", zap.String("schema", schema), zap.Error(err))
			return fmt.Errorf("failed to create table: %w", err)
		}
		result.Close()
	}
	db.logger.Debug("Initialized Kuzu schema")
	return nil
}
