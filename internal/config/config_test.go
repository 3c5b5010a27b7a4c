package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plc-lang/plc/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plc.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	reg, scope, err := Default().Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	printFn, ok := scope.LookupFunction("print", 1)
	if !ok || printFn.ParamTypes[0] != types.Any || printFn.ReturnType != types.Nil {
		t.Fatalf("expected print/1 (Any): Nil")
	}
	if printFn.BindingName != "System.out.println" {
		t.Fatalf("unexpected print binding %q", printFn.BindingName)
	}

	rng, ok := scope.LookupFunction("range", 2)
	if !ok || rng.ReturnType != types.IntegerIterable {
		t.Fatalf("expected range/2 returning IntegerIterable")
	}

	if _, ok := reg.Lookup("Comparable"); !ok {
		t.Fatalf("expected canonical types in the registry")
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
language = "^1.0"
no_color = true

[[builtins]]
name = "sqrt"
binding = "Math.sqrt"
params = ["Decimal"]
returns = "Decimal"

[[types]]
name = "Point"

  [[types.fields]]
  name = "x"
  type = "Integer"

  [[types.fields]]
  name = "origin"
  type = "Point"

  [[types.methods]]
  name = "distance"
  params = ["Point"]
  returns = "Decimal"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.NoColor || cfg.Language != "^1.0" {
		t.Fatalf("unexpected options %+v", cfg)
	}
	if len(cfg.Builtins) != 3 {
		t.Fatalf("expected defaults plus sqrt, got %d builtins", len(cfg.Builtins))
	}

	reg, scope, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	point, ok := reg.Lookup("Point")
	if !ok {
		t.Fatalf("expected Point to be registered")
	}
	if point.BindingName != "Point" {
		t.Fatalf("expected binding to default to the name, got %q", point.BindingName)
	}
	if f, ok := point.Field("origin"); !ok || f.Type != point {
		t.Fatalf("expected self-referencing field")
	}
	m, ok := point.Method("distance", 1)
	if !ok {
		t.Fatalf("expected distance/1")
	}
	if len(m.ParamTypes) != 2 || m.ParamTypes[0] != point || m.ParamTypes[1] != point || m.ReturnType != types.Decimal {
		t.Fatalf("unexpected method signature %s", m)
	}

	if fn, ok := scope.LookupFunction("sqrt", 1); !ok || fn.BindingName != "Math.sqrt" {
		t.Fatalf("expected sqrt/1 bound to Math.sqrt")
	}
}

func TestLoad_OverridesDefaultBuiltin(t *testing.T) {
	path := writeConfig(t, `
[[builtins]]
name = "print"
binding = "Log.info"
params = ["String"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, scope, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, ok := scope.LookupFunction("print", 1)
	if !ok || fn.BindingName != "Log.info" || fn.ParamTypes[0] != types.String || fn.ReturnType != types.Nil {
		t.Fatalf("expected overridden print, got %v", fn)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid toml", `language = `, "failed to parse config"},
		{"unknown key", `colour = true`, "unknown config key"},
		{"bad constraint", `language = "not a version"`, "language constraint"},
		{"unsatisfied constraint", `language = ">= 2.0"`, "does not satisfy"},
		{"unnamed builtin", "[[builtins]]\nparams = [\"Any\"]", "name is required"},
		{"field without type", "[[types]]\nname = \"P\"\n[[types.fields]]\nname = \"x\"", "name and type are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestBuild_UnknownTypes(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"builtin parameter", &Config{Builtins: []Function{{Name: "f", Params: []string{"Number"}}}}},
		{"builtin return", &Config{Builtins: []Function{{Name: "f", Returns: "Number"}}}},
		{"field type", &Config{Types: []TypeDef{{Name: "P", Fields: []FieldDef{{Name: "x", Type: "Number"}}}}}},
		{"method parameter", &Config{Types: []TypeDef{{Name: "P", Methods: []Function{{Name: "m", Params: []string{"Number"}}}}}}},
		{"duplicate type", &Config{Types: []TypeDef{{Name: "Integer"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.cfg.Build(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("expected defaults without a file, got %v", err)
	}
	if len(cfg.Builtins) != 2 {
		t.Fatalf("expected default builtins, got %d", len(cfg.Builtins))
	}

	if _, err := LoadOrDefault(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected an explicit missing path to fail")
	}
}
