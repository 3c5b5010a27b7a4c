package compile

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plc-lang/plc/internal/diag"
	"github.com/plc-lang/plc/internal/lexer"
	"github.com/plc-lang/plc/internal/parser"
	"github.com/plc-lang/plc/internal/types"
)

const validProgram = `
LET greeting: String = "hello";
DEF main(): Integer DO
    print(greeting);
    RETURN 0;
END
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestCompile(t *testing.T) {
	res, err := Compile(context.Background(), "main.plc", validProgram, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Tokens) == 0 || res.Source == nil || res.Info == nil {
		t.Fatalf("expected every stage result to be kept")
	}
	if res.Source.Span().Filename != "main.plc" {
		t.Fatalf("expected filename on spans, got %q", res.Source.Span().Filename)
	}

	var buf bytes.Buffer
	if err := res.Java(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `String greeting = "hello";`) {
		t.Fatalf("unexpected Java output:\n%s", buf.String())
	}
}

func TestCompile_StageErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		stage diag.Stage
		check func(error) bool
	}{
		{"lexer", `LET s: String = "open`, diag.StageLexer, func(err error) bool {
			var e *lexer.LexError
			return errors.As(err, &e)
		}},
		{"parser", `LET x = 1;`, diag.StageParser, func(err error) bool {
			var e *parser.ParseError
			return errors.As(err, &e)
		}},
		{"analyzer", `DEF main(): Integer DO RETURN "x"; END`, diag.StageAnalyzer, func(err error) bool {
			var e *types.Error
			return errors.As(err, &e)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(context.Background(), "x.plc", tt.input, Options{})
			if err == nil || !tt.check(err) {
				t.Fatalf("expected a %s error, got %v", tt.stage, err)
			}
			d, ok := Diagnostic(err)
			if !ok {
				t.Fatalf("expected a diagnostic")
			}
			if d.Stage != tt.stage {
				t.Fatalf("expected stage %s, got %s", tt.stage, d.Stage)
			}
		})
	}
}

func TestCompile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Compile(ctx, "main.plc", validProgram, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCompile_UsesConfiguredScope(t *testing.T) {
	global := types.NewGlobalScope()
	if err := global.DefineFunction(types.NewFunction("twice", "twice", []*types.Type{types.Integer}, types.Integer)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input := `DEF main(): Integer DO RETURN twice(2); END`

	if _, err := Compile(context.Background(), "a.plc", input, Options{}); err == nil {
		t.Fatalf("expected twice/1 to be undefined by default")
	}
	if _, err := Compile(context.Background(), "a.plc", input, Options{Global: global}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "ok.plc", validProgram),
		writeFile(t, dir, "shares.plc", "LET greeting: Integer = 1;\n"+`DEF main(): Integer DO RETURN greeting; END`),
		writeFile(t, dir, "bad.plc", `DEF main(): Decimal DO RETURN 1.0; END`),
		filepath.Join(dir, "missing.plc"),
	}

	results, err := CheckFiles(context.Background(), paths, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}

	for i, r := range results {
		if r.Path != paths[i] {
			t.Fatalf("expected results in input order, got %s at %d", r.Path, i)
		}
	}
	if results[0].Err != nil || results[1].Err != nil {
		t.Fatalf("expected independent files to pass, got %v / %v", results[0].Err, results[1].Err)
	}

	var terr *types.Error
	if !errors.As(results[2].Err, &terr) || terr.Kind != types.ErrEntryPoint {
		t.Fatalf("expected entry point error, got %v", results[2].Err)
	}
	if results[3].Err == nil || !errors.Is(results[3].Err, os.ErrNotExist) {
		t.Fatalf("expected missing file error, got %v", results[3].Err)
	}
	if _, ok := Diagnostic(results[3].Err); ok {
		t.Fatalf("expected I/O errors not to convert to diagnostics")
	}
}
