package ngram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lm-go/internal/model/ngram"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const snapshotVersion = "1.0"

// snapshot is the msgpack-encoded form of a model
type snapshot struct {
	Version   string        `msgpack:"version"`
	ID        string        `msgpack:"id"`
	Name      string        `msgpack:"name"`
	N         int           `msgpack:"n"`
	Strategy  string        `msgpack:"strategy"`
	CreatedAt time.Time     `msgpack:"created_at"`
	Records   []ngram.NGram `msgpack:"records"`
}

// MsgpackStore keeps one binary snapshot per model, including metadata the
// plain-text format cannot carry.
type MsgpackStore struct {
	outputDir string
	logger    *zap.Logger
}

// NewMsgpackStore creates a snapshot store rooted at outputDir
func NewMsgpackStore(outputDir string, logger *zap.Logger) (*MsgpackStore, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &MsgpackStore{outputDir: outputDir, logger: logger}, nil
}

// GetModelPath returns the snapshot path for a model name
func (s *MsgpackStore) GetModelPath(name string) string {
	return filepath.Join(s.outputDir, name+".msgpack")
}

// Backend names the storage backend
func (s *MsgpackStore) Backend() string {
	return "msgpack"
}

// Save encodes the model snapshot to disk
func (s *MsgpackStore) Save(ctx context.Context, model *Model) error {
	path := s.GetModelPath(model.Name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to open %s for writing: %v: %w", path, err, ngram.ErrResourceUnavailable)
	}
	defer file.Close()

	snap := snapshot{
		Version:   snapshotVersion,
		ID:        model.ID.String(),
		Name:      model.Name,
		N:         model.N,
		Strategy:  model.Strategy.String(),
		CreatedAt: model.CreatedAt,
		Records:   model.records,
	}
	if err := msgpack.NewEncoder(file).Encode(&snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	s.logger.Info("Saved n-gram snapshot",
		zap.String("model", model.Name),
		zap.String("path", path),
		zap.Int("records", model.Len()))
	return nil
}

// Load decodes the snapshot stored under name. n == 0 accepts the stored order.
func (s *MsgpackStore) Load(ctx context.Context, name string, n int) (*Model, LoadReport, error) {
	var report LoadReport
	path := s.GetModelPath(name)
	file, err := os.Open(path)
	if err != nil {
		wrapped := fmt.Errorf("unable to open %s: %v: %w", path, err, ngram.ErrResourceUnavailable)
		if errors.Is(err, os.ErrNotExist) {
			wrapped = fmt.Errorf("%w: %w", wrapped, ngram.ErrModelNotFound)
		}
		return NewModel(name, n, StrategyUnknown, nil), report, wrapped
	}
	defer file.Close()

	var snap snapshot
	if err := msgpack.NewDecoder(file).Decode(&snap); err != nil {
		return NewModel(name, n, StrategyUnknown, nil), report, fmt.Errorf("failed to decode snapshot %s: %v: %w", path, err, ngram.ErrMalformedRecord)
	}
	if n == 0 {
		n = snap.N
	}
	if snap.N != n {
		return NewModel(name, n, StrategyUnknown, nil), report,
			fmt.Errorf("snapshot %s holds %d-grams, requested %d: %w", path, snap.N, n, ngram.ErrInvalidConfiguration)
	}

	records := make([]ngram.NGram, 0, len(snap.Records))
	for i, record := range snap.Records {
		if record.Order() != n || record.Count < 0 || record.Probability < 0 {
			report.skip(fmt.Errorf("record %d: %w", i, ngram.ErrMalformedRecord))
			continue
		}
		records = append(records, record)
	}
	report.Records = len(records)

	strategy, _ := ParseStrategy(snap.Strategy)
	model := NewModel(name, n, strategy, records)
	if id, err := uuid.Parse(snap.ID); err == nil {
		model.ID = id
	}
	model.CreatedAt = snap.CreatedAt

	s.logger.Info("Loaded n-gram snapshot",
		zap.String("model", name),
		zap.String("path", path),
		zap.Int("records", report.Records),
		zap.Int("skipped", report.Skipped))
	return model, report, nil
}

// Exists reports whether a snapshot exists for name
func (s *MsgpackStore) Exists(ctx context.Context, name string) bool {
	_, err := os.Stat(s.GetModelPath(name))
	return err == nil
}

// Delete removes the snapshot for name
func (s *MsgpackStore) Delete(ctx context.Context, name string) error {
	if err := os.Remove(s.GetModelPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Close is a no-op for file stores
func (s *MsgpackStore) Close() error {
	return nil
}
