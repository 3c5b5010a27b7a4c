package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/plc-lang/plc/internal/compile"
	"github.com/plc-lang/plc/internal/dump"
	"github.com/plc-lang/plc/internal/lexer"
	"github.com/plc-lang/plc/internal/lsp"
	"github.com/plc-lang/plc/internal/parser"
	"github.com/plc-lang/plc/internal/watch"
)

func (a *app) tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readSource(args[0])
			if err != nil {
				return err
			}
			r := a.newReporter(cmd.ErrOrStderr())
			r.source(args[0], input)

			lx := lexer.New(input)
			lx.SetFilename(args[0])
			tokens, err := lx.Tokenize()
			if err != nil {
				r.report(err)
				return errReported
			}

			out := cmd.OutOrStdout()
			for _, tok := range tokens {
				fmt.Fprintf(out, "%d:%d\t%s\t%s\n", tok.Span.Line, tok.Span.Column, tok.Type, tok.Literal)
			}
			return nil
		},
	}
}

func (a *app) parseCmd() *cobra.Command {
	var untyped bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Print the syntax tree of a file as YAML",
		Long: `Prints the syntax tree as YAML. Expressions and declarations are
annotated with the types and bindings resolved by analysis unless
--untyped is given, in which case the file only has to parse.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readSource(args[0])
			if err != nil {
				return err
			}
			r := a.newReporter(cmd.ErrOrStderr())
			r.source(args[0], input)

			if untyped {
				src, err := parser.ParseString(input, parser.WithFilename(args[0]))
				if err != nil {
					r.report(err)
					return errReported
				}
				return dump.Write(cmd.OutOrStdout(), src, nil)
			}

			res, err := compile.Compile(cmd.Context(), args[0], input, a.opts)
			if err != nil {
				r.report(err)
				return errReported
			}
			return dump.Write(cmd.OutOrStdout(), res.Source, res.Info)
		},
	}

	cmd.Flags().BoolVar(&untyped, "untyped", false, "skip analysis and print the bare syntax tree")
	return cmd
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [files or directories...]",
		Short: "Analyse source files",
		Long: `Analyses every given file, and every *.plc file below each given
directory, concurrently. Defaults to the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := findSources(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No source files found")
				return nil
			}
			return a.checkAll(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), files)
		},
	}
}

// checkAll analyses files and prints the per-file results.
func (a *app) checkAll(ctx context.Context, out, stderr io.Writer, files []string) error {
	fmt.Fprintf(out, "Checking %d file(s)...\n\n", len(files))

	results, err := compile.CheckFiles(ctx, files, a.opts)
	if err != nil {
		return err
	}
	if failed := a.newReporter(stderr).printResults(out, results); failed > 0 {
		return errReported
	}
	return nil
}

func (a *app) genCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "gen <file>",
		Short: "Generate Java for a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readSource(args[0])
			if err != nil {
				return err
			}
			r := a.newReporter(cmd.ErrOrStderr())
			r.source(args[0], input)

			res, err := compile.Compile(cmd.Context(), args[0], input, a.opts)
			if err != nil {
				r.report(err)
				return errReported
			}

			if output == "" {
				if err := res.Java(cmd.OutOrStdout()); err != nil {
					r.report(err)
					return errReported
				}
				return nil
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := res.Java(f); err != nil {
				f.Close()
				r.report(err)
				return errReported
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write Java to this file instead of stdout")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [files or directories...]",
		Short: "Re-check files whenever they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := findSources(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no source files to watch")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			w, err := watch.New(files, watch.WithLogger(a.logger))
			if err != nil {
				return err
			}

			// Failures are reported and watching continues.
			_ = a.checkAll(ctx, out, stderr, files)
			fmt.Fprintf(out, "\nWatching %d file(s). Press Ctrl+C to stop.\n", len(files))

			err = w.Run(ctx, func(path string) {
				fmt.Fprintf(out, "\n%s changed\n", path)
				_ = a.checkAll(ctx, out, stderr, []string{path})
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

func (a *app) lspCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a.logger.Debug("language server starting")
			return lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), a.opts).Run(ctx)
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "plc v%s\n", Version)
			fmt.Fprintf(out, "  Language:   %s\n", compile.LanguageVersion)
			if a.cfg != nil && a.cfg.Language != "" {
				fmt.Fprintf(out, "  Requires:   %s\n", a.cfg.Language)
			}
			fmt.Fprintf(out, "  Go Version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
