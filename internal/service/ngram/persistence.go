package ngram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lm-go/internal/model/ngram"

	"go.uber.org/zap"
)

// maxReportedErrors caps how many per-record errors a LoadReport keeps
const maxReportedErrors = 10

// Store persists and reloads smoothed models
type Store interface {
	// Save writes the model under its name, replacing any previous version
	Save(ctx context.Context, model *Model) error
	// Load reads the model stored under name. Malformed records are skipped
	// and counted in the report.
	Load(ctx context.Context, name string, n int) (*Model, LoadReport, error)
	// Exists reports whether a model is stored under name
	Exists(ctx context.Context, name string) bool
	// Delete removes the model stored under name
	Delete(ctx context.Context, name string) error
	// Backend names the storage backend
	Backend() string
	Close() error
}

// LoadReport describes how many records a load kept and skipped
type LoadReport struct {
	Records int     `json:"records"`
	Skipped int     `json:"skipped"`
	Errors  []error `json:"-"`
}

func (r *LoadReport) skip(err error) {
	r.Skipped++
	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, err)
	}
}

// ModelName derives the conventional stored name of a model, e.g.
// "kas-5000-good-turing-bigrams" for corpus "kas-5000.text.txt".
func ModelName(corpus string, strategy Strategy, n int) string {
	base := filepath.Base(corpus)
	if dot := strings.Index(base, "."); dot > 0 {
		base = base[:dot]
	}
	var order string
	switch n {
	case 2:
		order = "bigrams"
	case 3:
		order = "trigrams"
	default:
		order = fmt.Sprintf("%d-grams", n)
	}
	return fmt.Sprintf("%s-%s-%s", base, strategy, order)
}

// WriteRecords writes one "w1 ... wn count probability" line per record
func WriteRecords(w io.Writer, records []ngram.NGram) error {
	bw := bufio.NewWriter(w)
	for _, record := range records {
		for _, word := range record.Words {
			if _, err := bw.WriteString(word); err != nil {
				return err
			}
			if err := bw.WriteByte(' '); err != nil {
				return err
			}
		}
		line := strconv.FormatInt(record.Count, 10) + " " + strconv.FormatFloat(record.Probability, 'g', -1, 64) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadRecords parses records of order n. Lines with fewer than n+2 fields
// or non-numeric count/probability fields are skipped; blank lines are
// ignored. The returned error is non-nil only if reading itself fails.
func ReadRecords(r io.Reader, n int) ([]ngram.NGram, LoadReport, error) {
	var report LoadReport
	if n < MinOrder {
		return nil, report, fmt.Errorf("cannot read %d-grams: %w", n, ngram.ErrInvalidConfiguration)
	}

	var records []ngram.NGram
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		record, err := parseRecord(fields, n)
		if err != nil {
			report.skip(fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		key := record.Key()
		if _, dup := seen[key]; dup {
			report.skip(fmt.Errorf("line %d: duplicate n-gram %q: %w", lineNo, record.Words.String(), ngram.ErrMalformedRecord))
			continue
		}
		seen[key] = struct{}{}
		records = append(records, record)
	}
	report.Records = len(records)
	if err := scanner.Err(); err != nil {
		return records, report, err
	}
	return records, report, nil
}

func parseRecord(fields []string, n int) (ngram.NGram, error) {
	if len(fields) < n+2 {
		return ngram.NGram{}, fmt.Errorf("expected %d fields, got %d: %w", n+2, len(fields), ngram.ErrMalformedRecord)
	}
	count, err := strconv.ParseInt(fields[n], 10, 64)
	if err != nil || count < 0 {
		return ngram.NGram{}, fmt.Errorf("bad count %q: %w", fields[n], ngram.ErrMalformedRecord)
	}
	probability, err := strconv.ParseFloat(fields[n+1], 64)
	if err != nil || probability < 0 || math.IsNaN(probability) || math.IsInf(probability, 0) {
		return ngram.NGram{}, fmt.Errorf("bad probability %q: %w", fields[n+1], ngram.ErrMalformedRecord)
	}
	words := make(ngram.Words, n)
	copy(words, fields[:n])
	return ngram.NGram{Words: words, Count: count, Probability: probability}, nil
}

// TextStore keeps one plain-text model file per model in a directory
type TextStore struct {
	outputDir string
	logger    *zap.Logger
}

// NewTextStore creates a text store rooted at outputDir
func NewTextStore(outputDir string, logger *zap.Logger) (*TextStore, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &TextStore{outputDir: outputDir, logger: logger}, nil
}

// GetModelPath returns the file path for a model name
func (s *TextStore) GetModelPath(name string) string {
	return filepath.Join(s.outputDir, name+".txt")
}

// Backend names the storage backend
func (s *TextStore) Backend() string {
	return "text"
}

// Save writes the model as plain text
func (s *TextStore) Save(ctx context.Context, model *Model) error {
	path := s.GetModelPath(model.Name)
	if err := SaveModelFile(model, path); err != nil {
		return err
	}
	s.logger.Info("Saved n-gram model",
		zap.String("model", model.Name),
		zap.String("path", path),
		zap.Int("n", model.N),
		zap.Int("records", model.Len()))
	return nil
}

// Load reads the model file stored under name. n == 0 takes the order from
// a conventional name such as "corpus-kneser-ney-trigrams", or else from the
// first record of the file.
func (s *TextStore) Load(ctx context.Context, name string, n int) (*Model, LoadReport, error) {
	path := s.GetModelPath(name)
	if n == 0 {
		n = orderFromName(name)
	}
	if n == 0 {
		n = orderFromFile(path)
	}
	model, report, err := LoadModelFile(path, name, n)
	if err != nil {
		return model, report, err
	}
	if report.Skipped > 0 {
		s.logger.Warn("Skipped malformed model records",
			zap.String("path", path),
			zap.Int("skipped", report.Skipped),
			zap.Errors("errors", report.Errors))
	}
	s.logger.Info("Loaded n-gram model",
		zap.String("model", name),
		zap.String("path", path),
		zap.Int("n", n),
		zap.Int("records", report.Records))
	return model, report, nil
}

// Exists reports whether a model file exists for name
func (s *TextStore) Exists(ctx context.Context, name string) bool {
	_, err := os.Stat(s.GetModelPath(name))
	return err == nil
}

// Delete removes the model file for name
func (s *TextStore) Delete(ctx context.Context, name string) error {
	if err := os.Remove(s.GetModelPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete model: %w", err)
	}
	s.logger.Info("Deleted n-gram model", zap.String("model", name))
	return nil
}

// Close is a no-op for file stores
func (s *TextStore) Close() error {
	return nil
}

// SaveModelFile writes model records to path in the plain-text format
func SaveModelFile(model *Model, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to open %s for writing: %v: %w", path, err, ngram.ErrResourceUnavailable)
	}
	defer file.Close()

	if err := WriteRecords(file, model.records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// LoadModelFile reads a plain-text model of order n from path. An
// unopenable file yields an empty model and ErrResourceUnavailable.
func LoadModelFile(path, name string, n int) (*Model, LoadReport, error) {
	file, err := os.Open(path)
	if err != nil {
		wrapped := fmt.Errorf("unable to open %s: %v: %w", path, err, ngram.ErrResourceUnavailable)
		if errors.Is(err, os.ErrNotExist) {
			wrapped = fmt.Errorf("%w: %w", wrapped, ngram.ErrModelNotFound)
		}
		return NewModel(name, n, StrategyUnknown, nil), LoadReport{}, wrapped
	}
	defer file.Close()

	records, report, err := ReadRecords(file, n)
	if err != nil {
		return NewModel(name, n, StrategyUnknown, nil), report, err
	}
	return NewModel(name, n, strategyFromName(name), records), report, nil
}

// orderFromName recovers the order from a conventional model name, or 0
func orderFromName(name string) int {
	switch {
	case strings.HasSuffix(name, "-bigrams"):
		return 2
	case strings.HasSuffix(name, "-trigrams"):
		return 3
	case strings.HasSuffix(name, "-grams"):
		trimmed := strings.TrimSuffix(name, "-grams")
		if dash := strings.LastIndex(trimmed, "-"); dash >= 0 {
			if n, err := strconv.Atoi(trimmed[dash+1:]); err == nil {
				return n
			}
		}
	}
	return 0
}

// orderFromFile reads the order off the first non-blank record line: n words
// followed by a count and a probability. Tokens never contain whitespace.
// It returns 0 when the file is unreadable or holds no record.
func orderFromFile(path string) int {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 4 {
			return 0
		}
		return len(fields) - 2
	}
	return 0
}

// strategyFromName recovers the strategy from a conventional model name
func strategyFromName(name string) Strategy {
	for strategy, label := range strategyNames {
		if strategy != StrategyUnknown && strings.Contains(name, label) {
			return strategy
		}
	}
	return StrategyUnknown
}
