package codegen_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/gbfc/pkg/bfvm"
	"github.com/xplshn/gbfc/pkg/codegen"
	"github.com/xplshn/gbfc/pkg/config"
	"github.com/xplshn/gbfc/pkg/lexer"
	"github.com/xplshn/gbfc/pkg/parser"
)

func compileWith(t *testing.T, cfg *config.Config, src string) (string, error) {
	t.Helper()
	tokens := lexer.NewLexer([]rune(src), 0, cfg).Tokenize()
	prog := parser.NewParser(tokens).Parse()
	return codegen.NewGenerator(cfg).Generate(prog)
}

func compile(t *testing.T, src string) (string, error) {
	t.Helper()
	return compileWith(t, config.NewConfig(), src)
}

// runCode compiles src and executes it on the machine, returning the bytes
// the program printed.
func runCode(t *testing.T, src string) []byte {
	t.Helper()
	code, err := compile(t, src)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	m, err := bfvm.New(code)
	if err != nil {
		t.Fatalf("emitted invalid code: %v", err)
	}
	out, err := m.Run()
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	return out
}

func TestLiteralMaterialization(t *testing.T) {
	for _, v := range []int{0, 1, 7, 9, 10, 16, 42, 99, 100, 169, 200, 255} {
		out := runCode(t, fmt.Sprintf("print(%d);", v))
		if diff := cmp.Diff([]byte{byte(v)}, out); diff != "" {
			t.Errorf("print(%d) output mismatch (-want +got):\n%s", v, diff)
		}
	}
}

func TestLiteralLoopShorterThanIncrementRun(t *testing.T) {
	looped, err := compile(t, "print(200);")
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatLoopLiterals, false)
	direct, err := compileWith(t, cfg, "print(200);")
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Repeat(">", cfg.TempBase) + "[-]" + strings.Repeat("+", 200) + "."
	if direct != want {
		t.Errorf("direct materialization mismatch:\n got %q\nwant %q", direct, want)
	}
	if len(looped) >= len(direct) {
		t.Errorf("loop materialization emitted %d instructions, direct form only %d", len(looped), len(direct))
	}
}

func TestGeneratedShape(t *testing.T) {
	cfg := config.NewConfig()
	for _, tt := range []struct {
		src  string
		want string
	}{
		{"print(0);", strings.Repeat(">", cfg.TempBase) + "[-]."},
		{"print(3);", strings.Repeat(">", cfg.TempBase) + "[-]+++."},
	} {
		code, err := compile(t, tt.src)
		if err != nil {
			t.Fatalf("%s: %v", tt.src, err)
		}
		if code != tt.want {
			t.Errorf("%s:\n got %q\nwant %q", tt.src, code, tt.want)
		}
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want byte
	}{
		{"print(10 + 5);", 15},
		{"print(5 - 3);", 2},
		{"print(3 - 5);", 254},
		{"print(0 - 1);", 255},
		{"print(255 + 1);", 0},
		{"print(200 + 100);", 44},
		{"print(1 + 2 + 3 + 4);", 10},
		{"print(((1 + 2) + (3 + 4)) + ((5 + 6) + (7 + 8)));", 36},
	}
	for _, tt := range tests {
		out := runCode(t, tt.src)
		if diff := cmp.Diff([]byte{tt.want}, out); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestComparisons(t *testing.T) {
	pairs := [][2]int{
		{0, 0}, {0, 1}, {1, 0}, {3, 5}, {5, 3}, {7, 7},
		{0, 255}, {255, 0}, {254, 255}, {255, 255},
	}
	ops := []struct {
		sym  string
		eval func(a, b int) bool
	}{
		{"<", func(a, b int) bool { return a < b }},
		{">", func(a, b int) bool { return a > b }},
		{"==", func(a, b int) bool { return a == b }},
		{"!=", func(a, b int) bool { return a != b }},
	}
	for _, pair := range pairs {
		for _, op := range ops {
			want := byte(0)
			if op.eval(pair[0], pair[1]) {
				want = 1
			}
			src := fmt.Sprintf("let a = %d; let b = %d; print(a %s b);", pair[0], pair[1], op.sym)
			out := runCode(t, src)
			if len(out) != 1 || out[0] != want {
				t.Errorf("%d %s %d: got %v, want [%d]", pair[0], op.sym, pair[1], out, want)
			}
		}
	}
}

func TestCopyPreservesSource(t *testing.T) {
	out := runCode(t, "let x = 7; let y = x + 1; print(x); print(y);")
	if diff := cmp.Diff([]byte{7, 8}, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestSelfReferencingAssignment(t *testing.T) {
	out := runCode(t, "let mut n = 3; n = n + n; print(n);")
	if diff := cmp.Diff([]byte{6}, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestIfRunsBodyAtMostOnce(t *testing.T) {
	// A guard of 5 must not run the body five times.
	out := runCode(t, "let mut x = 0; if 5 { x = x + 1; } print(x);")
	if diff := cmp.Diff([]byte{1}, out); diff != "" {
		t.Errorf("nonzero guard (-want +got):\n%s", diff)
	}

	out = runCode(t, "let mut x = 0; if 0 { x = x + 1; } print(x);")
	if diff := cmp.Diff([]byte{0}, out); diff != "" {
		t.Errorf("zero guard (-want +got):\n%s", diff)
	}
}

func TestWhileCountsUp(t *testing.T) {
	out := runCode(t, "let mut i = 0; while i < 3 { print(i); i = i + 1; }")
	if diff := cmp.Diff([]byte{0, 1, 2}, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWhileZeroIterations(t *testing.T) {
	out := runCode(t, "while 0 { print(1); } print(9);")
	if diff := cmp.Diff([]byte{9}, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWhileReevaluatesCondition(t *testing.T) {
	out := runCode(t, "let mut i = 10; while i > 7 { i = i - 1; } print(i);")
	if diff := cmp.Diff([]byte{7}, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedControlFlow(t *testing.T) {
	src := `
		let mut i = 0;
		let mut acc = 0;
		while i < 4 {
			acc = acc + 6;
			if acc > 20 {
				print(acc);
			}
			i = i + 1;
		}
	`
	out := runCode(t, src)
	if diff := cmp.Diff([]byte{24}, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEndToEnd(t *testing.T) {
	src := `
		let x = 10;
		let mut y = 5;
		print(x);
		y = x + y;
		print(y);
	`
	out := runCode(t, src)
	if diff := cmp.Diff([]byte{10, 15}, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestSemanticErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind codegen.ErrorKind
	}{
		{"duplicate declaration", "let x = 1; let x = 2;", codegen.DuplicateDeclaration},
		{"undeclared read", "print(nope);", codegen.UndeclaredVariable},
		{"undeclared assign", "z = 5;", codegen.UndeclaredVariable},
		{"undeclared in initializer", "let x = x;", codegen.UndeclaredVariable},
		{"assign to immutable", "let x = 1; x = 2;", codegen.ImmutableAssignment},
		{"literal too large", "print(256);", codegen.LiteralOutOfRange},
		{"literal in expression", "let y = 300 + 1; print(y);", codegen.LiteralOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.src)
			if err == nil {
				t.Fatalf("expected error, got none")
			}
			var cerr *codegen.Error
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *codegen.Error, got %T: %v", err, err)
			}
			if cerr.Kind != tt.kind {
				t.Errorf("got kind %v, want %v", cerr.Kind, tt.kind)
			}
		})
	}
}

func TestNoOutputOnError(t *testing.T) {
	code, err := compile(t, "print(1); print(oops);")
	if err == nil {
		t.Fatal("expected error, got none")
	}
	if code != "" {
		t.Errorf("expected empty output on error, got %d instructions", len(code))
	}
}

func TestTempSpaceExhausted(t *testing.T) {
	cfg := config.NewConfig()
	cfg.TempLimit = cfg.TempBase + 2
	// The ordering lowering needs more scratch cells than this layout has.
	_, err := compileWith(t, cfg, "let a = 1; let b = 2; print(a < b);")
	var cerr *codegen.Error
	if !errors.As(err, &cerr) || cerr.Kind != codegen.TempSpaceExhausted {
		t.Fatalf("expected temp space exhaustion, got %v", err)
	}
}
