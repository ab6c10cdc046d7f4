package ngram

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lm-go/internal/model/ngram"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every model in one SQLite database
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenSQLiteStore opens (or creates) the database at path with WAL mode
// and foreign keys enabled.
func OpenSQLiteStore(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %v: %w", path, err, ngram.ErrResourceUnavailable)
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to enable WAL on %s: %v: %w", path, err, ngram.ErrResourceUnavailable)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS models (
	name TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	n INTEGER NOT NULL,
	strategy TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ngrams (
	model TEXT NOT NULL,
	position INTEGER NOT NULL,
	words TEXT NOT NULL,
	count INTEGER NOT NULL,
	probability REAL NOT NULL,
	PRIMARY KEY(model, position),
	FOREIGN KEY(model) REFERENCES models(name) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_ngrams_words ON ngrams(model, words);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Backend names the storage backend
func (s *SQLiteStore) Backend() string {
	return "sqlite"
}

// Save replaces the stored model in a single transaction
func (s *SQLiteStore) Save(ctx context.Context, model *Model) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM models WHERE name = ?", model.Name); err != nil {
		return fmt.Errorf("delete previous model: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO models (name, id, n, strategy, created_at) VALUES (?, ?, ?, ?, ?)",
		model.Name, model.ID.String(), model.N, model.Strategy.String(), model.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert model: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO ngrams (model, position, words, count, probability) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range model.records {
		if _, err := stmt.ExecContext(ctx, model.Name, i, record.Words.String(), record.Count, record.Probability); err != nil {
			return fmt.Errorf("insert n-gram %q: %w", record.Words.String(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("Saved n-gram model",
		zap.String("model", model.Name),
		zap.String("backend", s.Backend()),
		zap.String("path", s.path),
		zap.Int("records", model.Len()))
	return nil
}

// Load reads the model stored under name. n == 0 accepts the stored order.
func (s *SQLiteStore) Load(ctx context.Context, name string, n int) (*Model, LoadReport, error) {
	var report LoadReport
	var (
		id, strategyName, createdAt string
		storedN                     int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, n, strategy, created_at FROM models WHERE name = ?", name,
	).Scan(&id, &storedN, &strategyName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return NewModel(name, n, StrategyUnknown, nil), report, fmt.Errorf("%s: %w", name, ngram.ErrModelNotFound)
	}
	if err != nil {
		return NewModel(name, n, StrategyUnknown, nil), report, fmt.Errorf("query model %s: %v: %w", name, err, ngram.ErrResourceUnavailable)
	}
	if n == 0 {
		n = storedN
	}
	if storedN != n {
		return NewModel(name, n, StrategyUnknown, nil), report,
			fmt.Errorf("model %s holds %d-grams, requested %d: %w", name, storedN, n, ngram.ErrInvalidConfiguration)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT words, count, probability FROM ngrams WHERE model = ? ORDER BY position", name)
	if err != nil {
		return NewModel(name, n, StrategyUnknown, nil), report, fmt.Errorf("query n-grams: %w", err)
	}
	defer rows.Close()

	var records []ngram.NGram
	for rows.Next() {
		var words string
		var record ngram.NGram
		if err := rows.Scan(&words, &record.Count, &record.Probability); err != nil {
			report.skip(fmt.Errorf("scan: %v: %w", err, ngram.ErrMalformedRecord))
			continue
		}
		record.Words = ngram.Words(strings.Fields(words))
		if record.Order() != n || record.Count < 0 || record.Probability < 0 {
			report.skip(fmt.Errorf("n-gram %q: %w", words, ngram.ErrMalformedRecord))
			continue
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return NewModel(name, n, StrategyUnknown, nil), report, fmt.Errorf("iterate n-grams: %w", err)
	}
	report.Records = len(records)

	strategy, _ := ParseStrategy(strategyName)
	model := NewModel(name, n, strategy, records)
	if parsed, err := uuid.Parse(id); err == nil {
		model.ID = parsed
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		model.CreatedAt = ts
	}

	s.logger.Info("Loaded n-gram model",
		zap.String("model", name),
		zap.String("backend", s.Backend()),
		zap.Int("records", report.Records),
		zap.Int("skipped", report.Skipped))
	return model, report, nil
}

// Exists reports whether a model row exists for name
func (s *SQLiteStore) Exists(ctx context.Context, name string) bool {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM models WHERE name = ?", name).Scan(&one)
	return err == nil
}

// Delete removes the model and, through the foreign key, its n-grams
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM models WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
