package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lm-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.text.txt"), []byte("The cat sat on the mat.\nThe dog sat.\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte("The cat sat.\n"), 0644))

	cfg := config.DefaultConfig()
	cfg.App.WorkDir = dir
	cfg.Training.Corpus = "train.text.txt"
	cfg.Evaluation.Corpus = "test.txt"

	app, err := newApplication(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { app.service.Close() })
	return app
}

func TestRunMenu_TrainsAndReports(t *testing.T) {
	app := newTestApplication(t)
	var out bytes.Buffer

	err := runMenu(context.Background(), strings.NewReader("2\n1\n3\n2\nexit\n"), &out, app)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "building 2-gram model with good-turing smoothing...")
	assert.Contains(t, text, "building 3-gram model with kneser-ney smoothing...")
	assert.Contains(t, text, "probability of sentence:")
	assert.Contains(t, text, "perplexity of 3-gram model:")

	assert.FileExists(t, filepath.Join(app.cfg.App.WorkDir, "models", "train-good-turing-bigrams.txt"))
	assert.FileExists(t, filepath.Join(app.cfg.App.WorkDir, "models", "train-kneser-ney-trigrams.txt"))
}

func TestRunMenu_RejectsUnknownSelections(t *testing.T) {
	app := newTestApplication(t)
	var out bytes.Buffer

	err := runMenu(context.Background(), strings.NewReader("5\n2\n9\nexit\n"), &out, app)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `unknown selection "5"`)
	assert.Contains(t, out.String(), `unknown smoothing "9"`)
}

func TestRunMenu_EndOfInput(t *testing.T) {
	app := newTestApplication(t)
	var out bytes.Buffer
	assert.NoError(t, runMenu(context.Background(), strings.NewReader(""), &out, app))
}

func TestPrintCorpusStats(t *testing.T) {
	app := newTestApplication(t)
	var out bytes.Buffer
	require.NoError(t, printCorpusStats(app.cfg, &out))
	assert.Contains(t, out.String(), "number of all words in corpus: 9")
	assert.Contains(t, out.String(), "(unique corpus words): 7")
}
