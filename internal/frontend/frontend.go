// Package frontend runs the parser and splitter over batches of source
// files. Each file gets its own tokenizer and parser, so files are
// processed concurrently.
package frontend

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/electwix/sqlfront/internal/cache"
	"github.com/electwix/sqlfront/internal/fileset"
	"github.com/electwix/sqlfront/internal/logging"
	"github.com/electwix/sqlfront/internal/script"
	"github.com/electwix/sqlfront/internal/sql/ast"
	"github.com/electwix/sqlfront/internal/sql/parser"
	"github.com/electwix/sqlfront/internal/types"
)

// Options configures a batch run.
type Options struct {
	// Workers bounds concurrent files. Zero means GOMAXPROCS.
	Workers int
	// Types replaces the built-in column type table when non-nil.
	Types *types.Registry
	// Variables seeds every parse. Each file gets its own copy.
	Variables *ast.VarTable
	Logger    logging.Logger

	// Cache reuses results for unchanged files across calls. A cache must
	// only be shared between calls with the same Types and Variables. Hits
	// return a clone sharing the cached, read-only syntax tree.
	Cache *cache.Memory[*parser.Result]
}

// FileResult is the parse outcome for one source.
type FileResult struct {
	Path   string
	Result *parser.Result
}

// Kind returns the root statement kind.
func (f FileResult) Kind() string { return ast.KindOf(f.Result.Root) }

// SplitResult is the split outcome for one source. Err is an
// *script.UnbalancedError when the script was rejected.
type SplitResult struct {
	Path     string
	Commands []string
	Err      error
}

// ParseFiles parses every source and returns results in input order. It
// only fails when ctx is cancelled; syntax errors are carried in each
// result's diagnostics.
func ParseFiles(ctx context.Context, sources []fileset.Source, opts Options) ([]FileResult, error) {
	logger := logging.OrNop(opts.Logger)
	results := make([]FileResult, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(opts.Workers))
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := parseSource(src, opts, logger)
			results[i] = FileResult{Path: src.Path, Result: res}
			if res.HasErrors() {
				logger.Warn("parse errors", "path", src.Path, "kind", ast.KindOf(res.Root), "errors", res.ErrorCount)
			} else {
				logger.Debug("parsed", "path", src.Path, "kind", ast.KindOf(res.Root))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseSource(src fileset.Source, opts Options, logger logging.Logger) *parser.Result {
	var key string
	if opts.Cache != nil {
		key = cache.ComputeKey([]byte(src.Path), src.Data)
		if res, ok := opts.Cache.Get(key); ok {
			logger.Debug("parse cache hit", "path", src.Path)
			return res.Clone()
		}
	}
	res := parser.ParseString(src.Path, string(src.Data),
		parser.WithTypes(opts.Types),
		parser.WithVariables(opts.Variables),
		parser.WithLogger(logger.With("path", src.Path)),
	)
	if opts.Cache != nil {
		opts.Cache.Set(key, res)
	}
	return res
}

// SplitFiles splits every source with splitter and returns results in input
// order. A nil splitter splits on ';' only.
func SplitFiles(ctx context.Context, sources []fileset.Source, splitter *script.Splitter, opts Options) ([]SplitResult, error) {
	logger := logging.OrNop(opts.Logger)
	if splitter == nil {
		splitter = script.NewSplitter()
	}
	results := make([]SplitResult, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(opts.Workers))
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			commands, err := splitter.Split(string(src.Data))
			results[i] = SplitResult{Path: src.Path, Commands: commands, Err: err}
			if err != nil {
				logger.Warn("split failed", "path", src.Path, "error", err)
			} else {
				logger.Debug("split", "path", src.Path, "commands", len(commands))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ErrorCount sums the error counts of results.
func ErrorCount(results []FileResult) int {
	total := 0
	for _, r := range results {
		total += r.Result.ErrorCount
	}
	return total
}

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
