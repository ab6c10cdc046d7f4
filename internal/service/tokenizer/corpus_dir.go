package tokenizer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"lm-go/internal/model/ngram"

	"go.uber.org/zap"
)

var skipDirs = map[string]bool{
	".git": true, "node_modules": true, ".vscode": true, ".idea": true, "vendor": true,
	"target": true, "build": true, "dist": true, "__pycache__": true, ".pytest_cache": true,
	"coverage": true, "site-packages": true, ".next": true, ".nuxt": true, "venv": true,
}

// ReadCorpus tokenizes path with the named tokenizer. When path is a
// directory every file with a registered extension is tokenized with the
// tokenizer for that extension, in lexical path order, and the sequences
// are concatenated.
func ReadCorpus(ctx context.Context, r *Registry, path, name string, logger *zap.Logger) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return []string{}, fmt.Errorf("unable to open %s: %v: %w", path, err, ngram.ErrResourceUnavailable)
	}
	if !info.IsDir() {
		if name == "" {
			name = "text"
		}
		t, err := r.Get(name)
		if err != nil {
			return []string{}, err
		}
		return ReadTokens(ctx, path, t)
	}
	return readCorpusDir(ctx, r, path, logger)
}

func readCorpusDir(ctx context.Context, r *Registry, root string, logger *zap.Logger) ([]string, error) {
	tokens := []string{}
	files := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		t, ok := r.ForFile(path)
		if !ok {
			return nil
		}
		fileTokens, err := ReadTokens(ctx, path, t)
		if err != nil {
			rel, _ := filepath.Rel(root, path)
			logger.Warn("Failed to tokenize corpus file",
				zap.String("file", rel),
				zap.String("tokenizer", t.Name()),
				zap.Error(err))
			return nil
		}
		tokens = append(tokens, fileTokens...)
		files++

		if files%100 == 0 {
			logger.Info("Corpus progress",
				zap.String("root", root),
				zap.Int("files", files),
				zap.Int("tokens", len(tokens)))
		}
		return nil
	})
	if err != nil {
		return []string{}, fmt.Errorf("failed to walk corpus %s: %w", root, err)
	}

	logger.Info("Corpus directory tokenized",
		zap.String("root", root),
		zap.Int("files", files),
		zap.Int("tokens", len(tokens)))
	return tokens, nil
}
