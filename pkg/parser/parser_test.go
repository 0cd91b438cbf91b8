package parser

import (
	"testing"

	"github.com/xplshn/gbfc/pkg/ast"
	"github.com/xplshn/gbfc/pkg/config"
	"github.com/xplshn/gbfc/pkg/lexer"
	"github.com/xplshn/gbfc/pkg/token"
)

func parse(t *testing.T, src string) []*ast.Node {
	t.Helper()
	tokens := lexer.NewLexer([]rune(src), 0, config.NewConfig()).Tokenize()
	prog := NewParser(tokens).Parse()
	return prog.Data.(ast.ProgramNode).Stmts
}

func TestParseLet(t *testing.T) {
	stmts := parse(t, "let mut x = 1; let y = 2;")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}

	first := stmts[0].Data.(ast.LetNode)
	if first.Name != "x" || !first.Mutable {
		t.Errorf("first let = %+v, want mutable x", first)
	}
	if first.Init.Type != ast.Number || first.Init.Data.(ast.NumberNode).Value != 1 {
		t.Errorf("first init = %+v, want number 1", first.Init)
	}

	second := stmts[1].Data.(ast.LetNode)
	if second.Name != "y" || second.Mutable {
		t.Errorf("second let = %+v, want immutable y", second)
	}
}

func TestPrecedence(t *testing.T) {
	// + binds tighter than ==, so this is (1 + 2) == 3.
	stmts := parse(t, "print(1 + 2 == 3);")
	cmpNode := stmts[0].Data.(ast.PrintNode).Value
	if cmpNode.Type != ast.BinaryOp {
		t.Fatalf("print argument is %d, want BinaryOp", cmpNode.Type)
	}
	cmpData := cmpNode.Data.(ast.BinaryOpNode)
	if cmpData.Op != token.EqEq {
		t.Fatalf("top operator = %d, want EqEq", cmpData.Op)
	}
	addData := cmpData.Left.Data.(ast.BinaryOpNode)
	if addData.Op != token.Plus {
		t.Errorf("left operator = %d, want Plus", addData.Op)
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	stmts := parse(t, "print((1 == 2) + 3);")
	top := stmts[0].Data.(ast.PrintNode).Value.Data.(ast.BinaryOpNode)
	if top.Op != token.Plus {
		t.Fatalf("top operator = %d, want Plus", top.Op)
	}
	left := top.Left.Data.(ast.BinaryOpNode)
	if left.Op != token.EqEq {
		t.Errorf("left operator = %d, want EqEq", left.Op)
	}
}

func TestLeftAssociativity(t *testing.T) {
	// 5 - 3 - 1 is (5 - 3) - 1.
	stmts := parse(t, "print(5 - 3 - 1);")
	top := stmts[0].Data.(ast.PrintNode).Value.Data.(ast.BinaryOpNode)
	if top.Op != token.Minus {
		t.Fatalf("top operator = %d, want Minus", top.Op)
	}
	if top.Right.Data.(ast.NumberNode).Value != 1 {
		t.Errorf("right operand = %+v, want 1", top.Right.Data)
	}
	inner := top.Left.Data.(ast.BinaryOpNode)
	if inner.Left.Data.(ast.NumberNode).Value != 5 {
		t.Errorf("innermost left operand = %+v, want 5", inner.Left.Data)
	}
}

func TestParseControlFlow(t *testing.T) {
	stmts := parse(t, "while i < 3 { if i { print(i); } i = i + 1; }")
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	loop := stmts[0].Data.(ast.WhileNode)
	if loop.Cond.Data.(ast.BinaryOpNode).Op != token.Lt {
		t.Errorf("loop condition operator = %+v, want Lt", loop.Cond.Data)
	}
	if len(loop.Body) != 2 {
		t.Fatalf("loop body has %d statements, want 2", len(loop.Body))
	}
	cond := stmts[0].Data.(ast.WhileNode).Body[0].Data.(ast.IfNode)
	if cond.Cond.Type != ast.Ident {
		t.Errorf("if condition = %+v, want bare ident", cond.Cond)
	}
	if len(cond.Body) != 1 || cond.Body[0].Type != ast.Print {
		t.Errorf("if body = %+v, want single print", cond.Body)
	}
}

func TestSemicolonsAreOptional(t *testing.T) {
	stmts := parse(t, "let x = 1 print(x)")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if stmts[0].Type != ast.Let || stmts[1].Type != ast.Print {
		t.Errorf("statement types = %d, %d; want Let, Print", stmts[0].Type, stmts[1].Type)
	}
}
