package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/gbfc/pkg/config"
	"github.com/xplshn/gbfc/pkg/token"
)

type tok struct {
	Type  token.Type
	Value string
}

func lex(t *testing.T, src string) []tok {
	t.Helper()
	l := NewLexer([]rune(src), 0, config.NewConfig())
	var out []tok
	for _, tk := range l.Tokenize() {
		out = append(out, tok{tk.Type, tk.Value})
	}
	return out
}

func TestTokenizeStatement(t *testing.T) {
	got := lex(t, "let mut x = 10;")
	want := []tok{
		{token.Let, ""}, {token.Mut, ""}, {token.Ident, "x"},
		{token.Eq, ""}, {token.Number, "10"}, {token.Semi, ""},
		{token.EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestOperators(t *testing.T) {
	got := lex(t, "== = != ! < > + -")
	want := []tok{
		{token.EqEq, ""}, {token.Eq, ""}, {token.Neq, ""}, {token.Not, ""},
		{token.Lt, ""}, {token.Gt, ""}, {token.Plus, ""}, {token.Minus, ""},
		{token.EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestKeywordsVersusIdents(t *testing.T) {
	got := lex(t, "if while print lettuce mutant")
	want := []tok{
		{token.If, ""}, {token.While, ""}, {token.Print, ""},
		{token.Ident, "lettuce"}, {token.Ident, "mutant"},
		{token.EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	src := "let x = 1; // trailing comment\n/* block\ncomment */ print(x);"
	got := lex(t, src)
	want := []tok{
		{token.Let, ""}, {token.Ident, "x"}, {token.Eq, ""},
		{token.Number, "1"}, {token.Semi, ""},
		{token.Print, ""}, {token.LParen, ""}, {token.Ident, "x"},
		{token.RParen, ""}, {token.Semi, ""},
		{token.EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestPositions(t *testing.T) {
	l := NewLexer([]rune("let x\nprint"), 0, config.NewConfig())
	tokens := l.Tokenize()

	if tokens[0].Line != 1 || tokens[0].Column != 1 {
		t.Errorf("let at %d:%d, want 1:1", tokens[0].Line, tokens[0].Column)
	}
	if tokens[1].Line != 1 || tokens[1].Column != 5 {
		t.Errorf("x at %d:%d, want 1:5", tokens[1].Line, tokens[1].Column)
	}
	if tokens[2].Line != 2 || tokens[2].Column != 1 {
		t.Errorf("print at %d:%d, want 2:1", tokens[2].Line, tokens[2].Column)
	}
}
