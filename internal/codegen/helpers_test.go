package codegen

import (
	"strings"
	"testing"

	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/parser"
	"github.com/plc-lang/plc/internal/types"
)

// generateJava parses, analyses and generates Java for the given source.
func generateJava(t *testing.T, src string, global *types.Scope) string {
	t.Helper()
	file, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("parsing failed: %v", err)
	}
	info, err := types.Analyze(file, global)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	out, err := NewGenerator(info).Generate(file)
	if err != nil {
		t.Fatalf("code generation failed: %v", err)
	}
	return out
}

// runCodegenTest verifies that each expected substring appears in the
// generated output.
func runCodegenTest(t *testing.T, src string, checks []string) {
	t.Helper()
	out := generateJava(t, src, nil)
	if strings.TrimSpace(out) == "" {
		t.Fatalf("generated output is empty")
	}
	for _, chk := range checks {
		if !strings.Contains(out, chk) {
			t.Errorf("expected generated code to contain %q, but it was missing.\nGenerated output:\n%s", chk, out)
		}
	}
}

func mustParse(t *testing.T, src string) *ast.Source {
	t.Helper()
	file, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("parsing failed: %v", err)
	}
	return file
}
