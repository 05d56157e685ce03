package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/kailas-cloud/modeldemo/internal/config"
	"github.com/kailas-cloud/modeldemo/internal/db"
	"github.com/kailas-cloud/modeldemo/internal/domain"
	"github.com/kailas-cloud/modeldemo/internal/provider"
	"github.com/kailas-cloud/modeldemo/internal/usecase/comparator"
	completionuc "github.com/kailas-cloud/modeldemo/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/modeldemo/internal/usecase/health"
)

// app builds services lazily so a command only needs the providers it uses.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer

	cache      db.Store
	completer  domain.Completer
	embedder   domain.Embedder
	completion *completionuc.Service
	comparator *comparator.Service
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "complete":
		return a.runComplete(ctx, args)
	case "embed":
		return a.runEmbed(ctx, args)
	case "similarity":
		return a.runSimilarity(ctx, args)
	case "rank":
		return a.runRank(ctx, args)
	case "serve":
		return a.runServe(ctx)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) completionService() (*completionuc.Service, error) {
	if a.completion == nil {
		c, err := provider.NewCompleter(a.cfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("build completer: %w", err)
		}
		a.completer = c
		a.completion = completionuc.New(c)
	}
	return a.completion, nil
}

func (a *app) comparatorService(ctx context.Context) (*comparator.Service, error) {
	if a.comparator == nil {
		if a.cache == nil {
			store, err := provider.NewCacheStore(ctx, a.cfg.Cache)
			if err != nil {
				return nil, fmt.Errorf("open cache: %w", err)
			}
			a.cache = store
		}

		var kv db.KVStore
		if a.cache != nil {
			kv = a.cache
		}
		e, err := provider.NewEmbedder(a.cfg, kv, a.logger)
		if err != nil {
			return nil, fmt.Errorf("build embedder: %w", err)
		}
		a.embedder = e
		a.comparator = comparator.New(e)
	}
	return a.comparator, nil
}

func (a *app) runComplete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	raw := fs.Bool("raw", false, "print the full result with metadata as JSON")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: complete takes exactly one prompt", errUsage)
	}

	svc, err := a.completionService()
	if err != nil {
		return err
	}
	result, err := svc.Invoke(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("complete: %w", err)
	}

	if *raw {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(result) //nolint:wrapcheck // stdout write
	}
	_, err = fmt.Fprintln(a.out, result.Text)
	return err //nolint:wrapcheck // stdout write
}

func (a *app) runEmbed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("embed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	head := fs.Int("head", 10, "number of leading values to print (0 prints none)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: embed takes exactly one text", errUsage)
	}

	svc, err := a.comparatorService(ctx)
	if err != nil {
		return err
	}
	result, err := svc.Embed(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	fmt.Fprintf(a.out, "Vector dimensions: %d\n", result.Dimensions())
	if n := min(*head, result.Dimensions()); n > 0 {
		fmt.Fprintf(a.out, "First %d dimensions: %v\n", n, result.Embedding[:n])
	}
	return nil
}

func (a *app) runSimilarity(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: similarity needs at least two documents", errUsage)
	}

	svc, err := a.comparatorService(ctx)
	if err != nil {
		return err
	}
	cmp, err := svc.Compare(ctx, args)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	for _, p := range cmp.Pairs {
		fmt.Fprintf(a.out, "Similarity between doc%d and doc%d: %s\n", p.I+1, p.J+1, formatScore(p.Score))
	}
	return nil
}

func (a *app) runRank(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: rank needs a query and at least one document", errUsage)
	}

	svc, err := a.comparatorService(ctx)
	if err != nil {
		return err
	}
	matches, err := svc.Rank(ctx, args[0], args[1:])
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}

	for i, m := range matches {
		fmt.Fprintf(a.out, "%d. %s  doc%d: %s\n", i+1, formatScore(m.Score), m.Index+1, m.Document)
	}
	return nil
}

// healthOf returns v as a health checker, or nil when it cannot report health.
func healthOf(v any) healthuc.ProviderChecker {
	if hc, ok := v.(domain.HealthChecker); ok {
		return hc
	}
	return nil
}

func formatScore(score float64) string {
	if math.IsNaN(score) {
		return "NaN"
	}
	return fmt.Sprintf("%.4f", score)
}
