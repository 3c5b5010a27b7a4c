package codegen

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/diag"
	"github.com/plc-lang/plc/internal/lexer"
	"github.com/plc-lang/plc/internal/types"
)

func TestGenerate_WholeProgram(t *testing.T) {
	src := `
LET count: Integer = 0;
LET label: String;

DEF add(a: Integer, b: Integer): Integer DO
    RETURN a + b;
END

DEF main(): Integer DO
    count = add(count, 2);
    IF count > 1 AND TRUE DO
        print("big");
    ELSE
        print(label);
    END
    RETURN 0;
END
`
	expected := `public class Main {

    int count = 0;
    String label;

    public static void main(String[] args) {
        System.exit(new Main().main());
    }

    int add(int a, int b) {
        return a + b;
    }

    int main() {
        count = add(count, 2);
        if (count > 1 && true) {
            System.out.println("big");
        } else {
            System.out.println(label);
        }
        return 0;
    }

}
`
	if got := generateJava(t, src, nil); got != expected {
		t.Fatalf("unexpected output.\nexpected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestGenerate_NoFields(t *testing.T) {
	expected := `public class Main {

    public static void main(String[] args) {
        System.exit(new Main().main());
    }

    int main() {
        return 0;
    }

}
`
	if got := generateJava(t, `DEF main(): Integer DO RETURN 0; END`, nil); got != expected {
		t.Fatalf("unexpected output.\nexpected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestGenerate_Statements(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		checks []string
	}{
		{
			name: "declarations",
			src: `DEF main(): Integer DO
    LET a: Integer;
    LET b = 1.50;
    LET c = 'x';
    LET d: Any = NIL;
    LET e = "tab\there";
    LET f = FALSE OR b < 2.0;
    RETURN 0;
END`,
			checks: []string{
				"        int a;\n",
				"        double b = 1.50;\n",
				"        char c = 'x';\n",
				"        Object d = null;\n",
				"        String e = \"tab\\there\";\n",
				"        boolean f = false || b < 2.0;\n",
			},
		},
		{
			name: "while loop",
			src: `DEF main(): Integer DO
    LET i = 0;
    WHILE i < 3 DO
        i = i + 1;
    END
    WHILE FALSE DO END
    RETURN i;
END`,
			checks: []string{
				"        while (i < 3) {\n            i = i + 1;\n        }\n",
				"        while (false) {}\n",
			},
		},
		{
			name: "if without else",
			src: `DEF main(): Integer DO
    IF TRUE DO print(1); END
    RETURN 0;
END`,
			checks: []string{"        if (true) {\n            System.out.println(1);\n        }\n"},
		},
		{
			name: "groups and signs",
			src: `DEF main(): Integer DO
    RETURN (1 + -2) * +3;
END`,
			checks: []string{"return (1 + -2) * 3;"},
		},
		{
			name: "void method",
			src: `DEF log(msg: String) DO print(msg); END
DEF nothing() DO RETURN NIL; END
DEF relay(msg: String) DO RETURN log(msg); END
DEF main(): Integer DO log("x"); RETURN 0; END`,
			checks: []string{
				"    void log(String msg) {\n",
				"    void nothing() {\n        return;\n    }\n",
				"    void relay(String msg) {\n        log(msg);\n        return;\n    }\n",
				"log(\"x\");",
			},
		},
		{
			name: "any method returns null",
			src: `DEF maybe(): Any DO RETURN NIL; END
DEF main(): Integer DO RETURN 0; END`,
			checks: []string{"    Object maybe() {\n        return null;\n    }\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCodegenTest(t, tt.src, tt.checks)
		})
	}
}

func TestGenerate_ForLoopAndBindings(t *testing.T) {
	global := types.NewGlobalScope()
	if err := global.DefineFunction(types.NewFunction("range", "Range.of", []*types.Type{types.Integer, types.Integer}, types.IntegerIterable)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := generateJava(t, `DEF main(): Integer DO
    FOR i IN range(0, 5) DO
        print(i);
    END
    RETURN 0;
END`, global)

	want := "        for (int i : Range.of(0, 5)) {\n            System.out.println(i);\n        }\n"
	if !bytes.Contains([]byte(out), []byte(want)) {
		t.Fatalf("expected for loop %q in:\n%s", want, out)
	}
}

func TestGenerate_MissingBinding(t *testing.T) {
	span := lexer.Span{Line: 1, Column: 1}
	call := ast.NewFunctionExpr(nil, "print", []ast.Expr{ast.NewLiteralExpr(ast.IntegerLit, "1", big.NewInt(1), span)}, span)
	src := ast.NewSource(nil, []*ast.Method{
		ast.NewMethod("main", nil, nil, "Integer", []ast.Stmt{ast.NewExprStmt(call, span)}, span),
	}, span)

	var buf bytes.Buffer
	err := Generate(&buf, src, types.NewInfo())
	if err == nil {
		t.Fatalf("expected an error for an unanalysed tree")
	}
	var d diag.Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("expected diag.Diagnostic, got %T", err)
	}
	if d.Stage != diag.StageCodegen || d.Code != diag.CodeGenMissingBinding {
		t.Fatalf("unexpected diagnostic %s/%s", d.Stage, d.Code)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written on error")
	}
}

func TestGenerate_UnsupportedType(t *testing.T) {
	reg := types.NewRegistry()
	opaque := types.NewType("Opaque", "")
	if err := reg.Register(opaque); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file := mustParse(t, `LET o: Opaque;
DEF main(): Integer DO RETURN 0; END`)
	info, err := types.NewChecker(reg, nil).Check(file)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	g := NewGenerator(info)
	if _, err := g.Generate(file); err == nil {
		t.Fatalf("expected unsupported type error")
	}
	if len(g.Errors) != 1 || g.Errors[0].Code != diag.CodeGenUnsupportedType {
		t.Fatalf("unexpected errors %v", g.Errors)
	}
}

func TestGenerate_RangeHelper(t *testing.T) {
	rangeScope := func() *types.Scope {
		global := types.NewGlobalScope()
		if err := global.DefineFunction(types.NewFunction("range", "range", []*types.Type{types.Integer, types.Integer}, types.IntegerIterable)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return global
	}
	helper := "    static Iterable<Integer> range(int start, int end) {\n" +
		"        return () -> java.util.stream.IntStream.range(start, end).iterator();\n" +
		"    }\n"

	out := generateJava(t, `DEF main(): Integer DO
    FOR i IN range(0, 5) DO print(i); END
    RETURN 0;
END`, rangeScope())
	if !strings.Contains(out, helper) {
		t.Fatalf("expected range helper in:\n%s", out)
	}
	if !strings.Contains(out, "for (int i : range(0, 5)) {") {
		t.Fatalf("expected loop over the helper in:\n%s", out)
	}

	out = generateJava(t, `DEF main(): Integer DO RETURN 0; END`, rangeScope())
	if strings.Contains(out, "Iterable<Integer>") {
		t.Fatalf("expected no helper when range is unused:\n%s", out)
	}
}
