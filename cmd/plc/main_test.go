package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const okProgram = `LET limit: Integer = 3;
DEF main(): Integer DO
    print(limit);
    RETURN 0;
END
`

const badProgram = `DEF main(): Integer DO
    RETURN "zero";
END
`

// workspace creates a temporary working directory holding files.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	t.Chdir(dir)
	return dir
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errb bytes.Buffer
	code = run(args, &out, &errb)
	return code, out.String(), errb.String()
}

func TestVersion(t *testing.T) {
	workspace(t, nil)
	code, out, _ := runCLI(t, "version")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out, "plc v"+Version) || !strings.Contains(out, "Language:   1.0.0") {
		t.Fatalf("unexpected version output:\n%s", out)
	}
}

func TestCheck(t *testing.T) {
	workspace(t, map[string]string{
		"ok.plc":              okProgram,
		"src/bad.plc":         badProgram,
		"src/notes.txt":       "not a program",
		".hidden/ignored.plc": badProgram,
	})

	code, out, stderr := runCLI(t, "--no-color", "check")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(out, "Checking 2 file(s)") {
		t.Fatalf("expected two source files, got:\n%s", out)
	}
	if !strings.Contains(out, "✓ ok.plc") || !strings.Contains(out, "✗ "+filepath.Join("src", "bad.plc")) {
		t.Fatalf("unexpected per-file results:\n%s", out)
	}
	if !strings.Contains(out, "Results: 2 total, 1 passed, 1 failed") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(stderr, "Type String is not assignable to Integer.") {
		t.Fatalf("expected diagnostic on stderr, got:\n%s", stderr)
	}
}

func TestCheck_AllPass(t *testing.T) {
	workspace(t, map[string]string{"ok.plc": okProgram})
	code, out, stderr := runCLI(t, "check", "ok.plc")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d\n%s", code, stderr)
	}
	if !strings.Contains(out, "1 passed, 0 failed") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}

func TestGen(t *testing.T) {
	dir := workspace(t, map[string]string{"main.plc": okProgram})

	code, out, stderr := runCLI(t, "gen", "main.plc")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d\n%s", code, stderr)
	}
	for _, want := range []string{"public class Main {", "int limit = 3;", "System.out.println(limit);"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	code, _, stderr = runCLI(t, "gen", "main.plc", "-o", "Main.java")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d\n%s", code, stderr)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Main.java"))
	if err != nil {
		t.Fatalf("expected Main.java to be written: %v", err)
	}
	if string(data) != out {
		t.Fatalf("expected file output to match stdout")
	}
}

func TestGen_DefaultRange(t *testing.T) {
	workspace(t, map[string]string{"main.plc": `DEF main(): Integer DO
    FOR i IN range(0, 3) DO print(i); END
    RETURN 0;
END
`})

	code, out, stderr := runCLI(t, "gen", "main.plc")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d\n%s", code, stderr)
	}
	for _, want := range []string{
		"static Iterable<Integer> range(int start, int end) {",
		"for (int i : range(0, 3)) {",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTokensAndParse(t *testing.T) {
	workspace(t, map[string]string{"main.plc": okProgram})

	code, out, _ := runCLI(t, "tokens", "main.plc")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.HasPrefix(out, "1:1\tIDENTIFIER\tLET\n") {
		t.Fatalf("unexpected token output:\n%s", out)
	}

	code, out, _ = runCLI(t, "parse", "main.plc")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out, "kind: Source") || !strings.Contains(out, "binding: System.out.println") {
		t.Fatalf("unexpected parse output:\n%s", out)
	}
}

func TestParse_UntypedSkipsAnalysis(t *testing.T) {
	workspace(t, map[string]string{"bad.plc": badProgram})

	if code, _, _ := runCLI(t, "parse", "bad.plc"); code != 1 {
		t.Fatalf("expected analysis failure, got exit code %d", code)
	}
	code, out, _ := runCLI(t, "parse", "--untyped", "bad.plc")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out, "kind: Literal") || !strings.Contains(out, "zero") || strings.Contains(out, "type: String") {
		t.Fatalf("unexpected parse output:\n%s", out)
	}
}

func TestConfig(t *testing.T) {
	workspace(t, map[string]string{
		"plc.toml": `
[[builtins]]
name = "sqrt"
binding = "Math.sqrt"
params = ["Decimal"]
returns = "Decimal"
`,
		"main.plc": `DEF main(): Integer DO print(sqrt(2.0)); RETURN 0; END`,
	})

	code, out, stderr := runCLI(t, "gen", "main.plc")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d\n%s", code, stderr)
	}
	if !strings.Contains(out, "System.out.println(Math.sqrt(2.0));") {
		t.Fatalf("expected configured binding in output:\n%s", out)
	}

	code, _, stderr = runCLI(t, "--config", "missing.toml", "version")
	if code != 1 || !strings.Contains(stderr, "failed to load config") {
		t.Fatalf("expected config error, got %d: %s", code, stderr)
	}
}

func TestMissingFile(t *testing.T) {
	workspace(t, nil)
	code, _, stderr := runCLI(t, "gen", "nope.plc")
	if code != 1 || !strings.Contains(stderr, "failed to read nope.plc") {
		t.Fatalf("expected read error, got %d: %s", code, stderr)
	}
}

func TestLSP(t *testing.T) {
	workspace(t, nil)

	var in bytes.Buffer
	for _, body := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	} {
		fmt.Fprintf(&in, "Content-Length: %d\r\n\r\n%s", len(body), body)
	}

	var out, errb bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"lsp"})
	root.SetIn(&in)
	root.SetOut(&out)
	root.SetErr(&errb)
	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, errb.String())
	}
	if !strings.Contains(out.String(), `"name":"plc-lsp"`) {
		t.Fatalf("expected an initialize response, got:\n%s", out.String())
	}
}
