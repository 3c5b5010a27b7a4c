// Package config loads plc.toml: the language level, output options and
// the builtins and types available to analysed programs.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	semver "github.com/Masterminds/semver/v3"

	"github.com/plc-lang/plc/internal/compile"
	"github.com/plc-lang/plc/internal/types"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "plc.toml"

// Config is the decoded configuration file.
type Config struct {
	// Language is a semver constraint the front end's language level must
	// satisfy. Empty accepts any level.
	Language string     `toml:"language"`
	NoColor  bool       `toml:"no_color"`
	Builtins []Function `toml:"builtins"`
	Types    []TypeDef  `toml:"types"`
}

// Function declares a builtin function, or a method when listed under a type.
// Methods take their receiver implicitly; Params lists the explicit ones.
type Function struct {
	Name    string   `toml:"name"`
	Binding string   `toml:"binding"`
	Params  []string `toml:"params"`
	Returns string   `toml:"returns"`
}

// TypeDef declares a user type with fields and methods.
type TypeDef struct {
	Name    string     `toml:"name"`
	Binding string     `toml:"binding"`
	Fields  []FieldDef `toml:"fields"`
	Methods []Function `toml:"methods"`
}

// FieldDef declares a field of a user type.
type FieldDef struct {
	Name    string `toml:"name"`
	Binding string `toml:"binding"`
	Type    string `toml:"type"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Builtins: []Function{
			{Name: "print", Binding: "System.out.println", Params: []string{"Any"}, Returns: "Nil"},
			{Name: "range", Binding: "range", Params: []string{"Integer", "Integer"}, Returns: "IntegerIterable"},
		},
	}
}

// Load decodes and validates the file at path. Builtins from the file are
// added to the defaults and replace a default with the same name and arity.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var file Config
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	cfg := Default()
	cfg.Language = file.Language
	cfg.NoColor = file.NoColor
	cfg.Builtins = mergeBuiltins(cfg.Builtins, file.Builtins)
	cfg.Types = file.Types

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists and returns Default otherwise. An
// empty path selects DefaultFile.
func LoadOrDefault(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return Default(), nil
	}
	return Load(path)
}

func mergeBuiltins(defaults, overrides []Function) []Function {
	out := make([]Function, 0, len(defaults)+len(overrides))
	for _, d := range defaults {
		replaced := false
		for _, o := range overrides {
			if o.Name == d.Name && len(o.Params) == len(d.Params) {
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, d)
		}
	}
	return append(out, overrides...)
}

// Validate checks the language constraint and that every entry is named.
// Type references are checked by Registry and GlobalScope.
func (c *Config) Validate() error {
	if err := c.CheckLanguage(compile.LanguageVersion); err != nil {
		return err
	}
	for i, fn := range c.Builtins {
		if fn.Name == "" {
			return fmt.Errorf("builtins[%d]: name is required", i)
		}
	}
	for i, td := range c.Types {
		if td.Name == "" {
			return fmt.Errorf("types[%d]: name is required", i)
		}
		for j, f := range td.Fields {
			if f.Name == "" || f.Type == "" {
				return fmt.Errorf("types[%d].fields[%d]: name and type are required", i, j)
			}
		}
		for j, m := range td.Methods {
			if m.Name == "" {
				return fmt.Errorf("types[%d].methods[%d]: name is required", i, j)
			}
		}
	}
	return nil
}

// CheckLanguage reports whether version satisfies the Language constraint.
func (c *Config) CheckLanguage(version string) error {
	if c.Language == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.Language)
	if err != nil {
		return fmt.Errorf("language constraint %q: %w", c.Language, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("language version %q: %w", version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("language level %s does not satisfy %q", v, c.Language)
	}
	return nil
}

// Registry builds a type registry holding the canonical types and every
// configured type. Types are registered before their members are resolved,
// so fields and methods may refer to any configured type.
func (c *Config) Registry() (*types.Registry, error) {
	reg := types.NewRegistry()

	defined := make([]*types.Type, len(c.Types))
	for i, td := range c.Types {
		t := types.NewType(td.Name, orDefault(td.Binding, td.Name))
		if err := reg.Register(t); err != nil {
			return nil, fmt.Errorf("types[%d]: %w", i, err)
		}
		defined[i] = t
	}

	for i, td := range c.Types {
		t := defined[i]
		for _, f := range td.Fields {
			ft, err := lookup(reg, f.Type)
			if err != nil {
				return nil, fmt.Errorf("type %s field %s: %w", td.Name, f.Name, err)
			}
			if err := t.DefineField(types.NewVariable(f.Name, orDefault(f.Binding, f.Name), ft)); err != nil {
				return nil, err
			}
		}
		for _, m := range td.Methods {
			fn, err := m.resolve(reg, t)
			if err != nil {
				return nil, fmt.Errorf("type %s method %s: %w", td.Name, m.Name, err)
			}
			if err := t.DefineMethod(fn); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}

// GlobalScope builds the root scope holding every configured builtin,
// resolving type names through reg.
func (c *Config) GlobalScope(reg *types.Registry) (*types.Scope, error) {
	scope := types.NewScope(nil)
	for _, b := range c.Builtins {
		fn, err := b.resolve(reg, nil)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", b.Name, err)
		}
		if err := scope.DefineFunction(fn); err != nil {
			return nil, err
		}
	}
	return scope, nil
}

// Build returns the registry and global scope described by the config.
func (c *Config) Build() (*types.Registry, *types.Scope, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, nil, err
	}
	scope, err := c.GlobalScope(reg)
	if err != nil {
		return nil, nil, err
	}
	return reg, scope, nil
}

// resolve turns the declaration into a function symbol. A non-nil receiver
// becomes the first parameter type.
func (f Function) resolve(reg *types.Registry, receiver *types.Type) (*types.Function, error) {
	var params []*types.Type
	if receiver != nil {
		params = append(params, receiver)
	}
	for _, name := range f.Params {
		t, err := lookup(reg, name)
		if err != nil {
			return nil, err
		}
		params = append(params, t)
	}

	returns := types.Nil
	if f.Returns != "" {
		t, err := lookup(reg, f.Returns)
		if err != nil {
			return nil, err
		}
		returns = t
	}
	return types.NewFunction(f.Name, orDefault(f.Binding, f.Name), params, returns), nil
}

func lookup(reg *types.Registry, name string) (*types.Type, error) {
	t, ok := reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
