package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	ngramsvc "lm-go/internal/service/ngram"
	"lm-go/internal/service/tokenizer"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

func ngramMenu(out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "select n-gram model:")
	fmt.Fprintln(out, "  2 - bigram model")
	fmt.Fprintln(out, "  3 - trigram model")
	fmt.Fprintln(out, "  exit - quit")
	fmt.Fprint(out, "> ")
}

func smoothingMenu(out io.Writer) {
	fmt.Fprintln(out, "select smoothing:")
	fmt.Fprintln(out, "  1 - Good-Turing")
	fmt.Fprintln(out, "  2 - Kneser-Ney")
	fmt.Fprint(out, "> ")
}

// runMenu reads selections from in until "exit" or end of input. Each
// round trains or loads the selected model and reports on the held-out
// corpus.
func runMenu(ctx context.Context, in io.Reader, out io.Writer, app *application) error {
	scanner := bufio.NewScanner(in)
	next := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	for {
		ngramMenu(out)
		selection, ok := next()
		if !ok || strings.EqualFold(selection, "exit") {
			return scanner.Err()
		}

		var n int
		switch selection {
		case "2":
			n = 2
		case "3":
			n = 3
		default:
			fmt.Fprintf(out, "unknown selection %q\n", selection)
			continue
		}

		smoothingMenu(out)
		choice, ok := next()
		if !ok {
			return scanner.Err()
		}
		strategy, err := ngramsvc.ParseStrategy(choice)
		if err != nil || !strategy.Valid() {
			fmt.Fprintf(out, "unknown smoothing %q\n", choice)
			continue
		}

		if err := runModel(ctx, out, app, n, strategy); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			app.logger.Error("Model run failed", zap.Int("n", n), zap.String("strategy", strategy.String()), zap.Error(err))
		}
	}
}

func runModel(ctx context.Context, out io.Writer, app *application, n int, strategy ngramsvc.Strategy) error {
	cfg := app.cfg
	tok, err := app.registry.Get(cfg.Training.Tokenizer)
	if err != nil {
		return err
	}

	corpus := cfg.ResolvePath(cfg.Training.Corpus)
	name := ngramsvc.ModelName(cfg.Training.Corpus, strategy, n)
	fmt.Fprintf(out, "building %d-gram model with %s smoothing...\n", n, strategy)

	trainTokens, err := tokenizer.ReadCorpus(ctx, app.registry, corpus, cfg.Training.Tokenizer, app.logger)
	if err != nil {
		return err
	}
	model, err := app.service.TrainOrLoad(ctx, ngramsvc.TrainRequest{
		Name:     name,
		N:        n,
		Strategy: strategy,
		Tokens:   trainTokens,
	}, cfg.Training.Rebuild)
	if err != nil {
		return err
	}

	testTokens, err := tokenizer.ReadTokens(ctx, cfg.ResolvePath(cfg.Evaluation.Corpus), tok)
	if err != nil {
		return err
	}
	report := app.service.Evaluator().Evaluate(model, testTokens)

	fmt.Fprintf(out, "\nmodel %s: %s n-grams\n", name, humanize.Comma(int64(model.Len())))
	fmt.Fprintf(out, "test tokens: %s, unseen windows: %s of %s\n",
		humanize.Comma(int64(report.Tokens)), humanize.Comma(int64(report.Unseen)), humanize.Comma(int64(report.Windows)))
	fmt.Fprintf(out, "\nprobability of sentence: %g\n", report.SentenceProbability)
	fmt.Fprintf(out, "log probability of sentence: %s\n", humanize.FormatFloat("#,###.####", report.LogProbability))
	fmt.Fprintf(out, "\nperplexity of %d-gram model: %g\n", n, report.Perplexity)
	fmt.Fprintf(out, "model perplexity: %g\n", report.ModelPerplexity)
	return nil
}
