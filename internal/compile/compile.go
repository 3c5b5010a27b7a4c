// Package compile drives the front end: lexing, parsing, analysis and Java
// generation for one or many source files.
package compile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/codegen"
	"github.com/plc-lang/plc/internal/diag"
	"github.com/plc-lang/plc/internal/lexer"
	"github.com/plc-lang/plc/internal/parser"
	"github.com/plc-lang/plc/internal/types"
)

// LanguageVersion is the language level accepted by this front end.
const LanguageVersion = "1.0.0"

// Options carries the analysis inputs shared by every file.
type Options struct {
	// Registry resolves type names; nil selects types.NewRegistry.
	Registry *types.Registry
	// Global is the read-only root scope; nil selects types.NewGlobalScope.
	Global *types.Scope
	// Logger receives debug tracing; nil discards it.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Result is an analysed program.
type Result struct {
	Filename string
	Input    string
	Tokens   []lexer.Token
	Source   *ast.Source
	Info     *types.Info
}

// Java writes the generated Java class for the program.
func (r *Result) Java(w io.Writer) error {
	return codegen.Generate(w, r.Source, r.Info)
}

// Compile lexes, parses and analyses input. Errors are the stage errors
// (*lexer.LexError, *parser.ParseError, *types.Error) unwrapped.
func Compile(ctx context.Context, filename, input string, opts Options) (*Result, error) {
	log := opts.logger().With("file", filename)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	lx := lexer.New(input)
	lx.SetFilename(filename)
	tokens, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	log.Debug("lexed", "tokens", len(tokens), "elapsed", time.Since(start))

	start = time.Now()
	src, err := parser.New(tokens, parser.WithFilename(filename)).ParseSource()
	if err != nil {
		return nil, err
	}
	log.Debug("parsed", "fields", len(src.Fields), "methods", len(src.Methods), "elapsed", time.Since(start))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	checker := types.NewChecker(opts.Registry, opts.Global, types.WithLogger(log))
	info, err := checker.Check(src)
	if err != nil {
		return nil, err
	}
	log.Debug("analysed", "expressions", len(info.Types), "elapsed", time.Since(start))

	return &Result{
		Filename: filename,
		Input:    input,
		Tokens:   tokens,
		Source:   src,
		Info:     info,
	}, nil
}

// CompileFile reads path and compiles it.
func CompileFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Compile(ctx, path, string(data), opts)
}

// FileResult is the outcome of checking one file. Err holds the stage error
// of a program that failed to compile.
type FileResult struct {
	Path   string
	Result *Result
	Err    error
}

// CheckFiles compiles every file concurrently. Each file is analysed by its
// own checker against a private child of opts.Global. Compile errors are
// reported per file; the returned error is only set for failures that stop
// the whole run, such as cancellation.
func CheckFiles(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	if opts.Global == nil {
		opts.Global = types.NewGlobalScope()
	}
	if opts.Registry == nil {
		opts.Registry = types.NewRegistry()
	}

	results := make([]FileResult, len(paths))
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex

	for i, path := range paths {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			res, err := CompileFile(gctx, path, opts)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}

			mu.Lock()
			results[i] = FileResult{Path: path, Result: res, Err: err}
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Diagnostic converts a stage error into a diagnostic. ok is false for
// errors that did not come from a compiler stage.
func Diagnostic(err error) (d diag.Diagnostic, ok bool) {
	var conv interface{ ToDiagnostic() diag.Diagnostic }
	if errors.As(err, &conv) {
		return conv.ToDiagnostic(), true
	}
	if errors.As(err, &d) {
		return d, true
	}
	return diag.Diagnostic{}, false
}
