package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/plc-lang/plc/internal/compile"
	"github.com/plc-lang/plc/internal/diag"
)

// SourceExt is the extension of PLC source files.
const SourceExt = ".plc"

// findSources expands each argument into source files. Directories are
// walked for *.plc files, skipping hidden directories; files are taken as
// given. An empty argument list means the current directory.
func findSources(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && path != arg && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if !info.IsDir() && strings.HasSuffix(path, SourceExt) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// reporter prints compile errors, rendering stage errors as diagnostics.
type reporter struct {
	formatter *diag.Formatter
	stderr    io.Writer
}

func (a *app) newReporter(stderr io.Writer) *reporter {
	return &reporter{
		formatter: diag.NewFormatter(stderr, diag.WithColor(!a.noColor)),
		stderr:    stderr,
	}
}

// source registers in-memory text so diagnostics can quote it.
func (r *reporter) source(filename, input string) {
	r.formatter.AddSource(filename, input)
}

func (r *reporter) report(err error) {
	if d, ok := compile.Diagnostic(err); ok {
		r.formatter.Format(d)
		return
	}
	fmt.Fprintf(r.stderr, "error: %v\n", err)
}

// printResults prints one line per file and a summary, returning the number
// of failed files.
func (r *reporter) printResults(out io.Writer, results []compile.FileResult) int {
	failed := 0
	for _, res := range results {
		if res.Err == nil {
			fmt.Fprintf(out, "  ✓ %s\n", res.Path)
			continue
		}
		failed++
		fmt.Fprintf(out, "  ✗ %s\n", res.Path)
		r.report(res.Err)
	}

	fmt.Fprintf(out, "\nResults: %d total, %d passed, %d failed\n", len(results), len(results)-failed, failed)
	return failed
}
