// Package ast defines the types used to represent the Abstract Syntax Tree (AST)
package ast

import (
	"github.com/xplshn/gbfc/pkg/config"
	"github.com/xplshn/gbfc/pkg/token"
	"github.com/xplshn/gbfc/pkg/util"
)

// NodeType defines the kind of a node in the AST
type NodeType int

// Node types enum
const (
	// Expressions
	Number NodeType = iota
	Ident
	BinaryOp

	// Statements
	Let
	Assign
	If
	While
	Print

	// Root
	Program
)

// Node represents a node in the Abstract Syntax Tree. The variant sets are
// closed: the code generator switches exhaustively over NodeType.
type Node struct {
	Type   NodeType
	Tok    token.Token
	Parent *Node
	Data   interface{}
}

// --- Node Data Structs ---

type NumberNode struct{ Value int64 }
type IdentNode struct{ Name string }
type BinaryOpNode struct {
	Op          token.Type
	Left, Right *Node
}
type LetNode struct {
	Name    string
	Mutable bool
	Init    *Node
}
type AssignNode struct {
	Name  string
	Value *Node
}
type IfNode struct {
	Cond *Node
	Body []*Node
}
type WhileNode struct {
	Cond *Node
	Body []*Node
}
type PrintNode struct{ Value *Node }
type ProgramNode struct{ Stmts []*Node }

// --- Node Constructors ---

func newNode(tok token.Token, nodeType NodeType, data interface{}, children ...*Node) *Node {
	node := &Node{Type: nodeType, Tok: tok, Data: data}
	for _, child := range children {
		if child != nil {
			child.Parent = node
		}
	}
	return node
}

func NewNumber(tok token.Token, value int64) *Node {
	return newNode(tok, Number, NumberNode{Value: value})
}

func NewIdent(tok token.Token, name string) *Node {
	return newNode(tok, Ident, IdentNode{Name: name})
}

func NewBinaryOp(tok token.Token, op token.Type, left, right *Node) *Node {
	return newNode(tok, BinaryOp, BinaryOpNode{Op: op, Left: left, Right: right}, left, right)
}

func NewLet(tok token.Token, name string, mutable bool, init *Node) *Node {
	return newNode(tok, Let, LetNode{Name: name, Mutable: mutable, Init: init}, init)
}

func NewAssign(tok token.Token, name string, value *Node) *Node {
	return newNode(tok, Assign, AssignNode{Name: name, Value: value}, value)
}

func NewIf(tok token.Token, cond *Node, body []*Node) *Node {
	node := newNode(tok, If, IfNode{Cond: cond, Body: body}, cond)
	for _, s := range body {
		s.Parent = node
	}
	return node
}

func NewWhile(tok token.Token, cond *Node, body []*Node) *Node {
	node := newNode(tok, While, WhileNode{Cond: cond, Body: body}, cond)
	for _, s := range body {
		s.Parent = node
	}
	return node
}

func NewPrint(tok token.Token, value *Node) *Node {
	return newNode(tok, Print, PrintNode{Value: value}, value)
}

func NewProgram(tok token.Token, stmts []*Node) *Node {
	node := newNode(tok, Program, ProgramNode{Stmts: stmts})
	for _, s := range stmts {
		s.Parent = node
	}
	return node
}

// FoldConstants performs compile-time constant evaluation on the AST.
// Arithmetic folds modulo the cell width, matching what the generated code
// would compute at run time.
func FoldConstants(cfg *config.Config, node *Node) *Node {
	if node == nil {
		return nil
	}

	switch d := node.Data.(type) {
	case BinaryOpNode:
		d.Left = FoldConstants(cfg, d.Left)
		d.Right = FoldConstants(cfg, d.Right)
		node.Data = d
	case LetNode:
		d.Init = FoldConstants(cfg, d.Init)
		node.Data = d
	case AssignNode:
		d.Value = FoldConstants(cfg, d.Value)
		node.Data = d
	case PrintNode:
		d.Value = FoldConstants(cfg, d.Value)
		node.Data = d
	case IfNode:
		d.Cond = FoldConstants(cfg, d.Cond)
		for i, s := range d.Body {
			d.Body[i] = FoldConstants(cfg, s)
		}
		node.Data = d
	case WhileNode:
		d.Cond = FoldConstants(cfg, d.Cond)
		for i, s := range d.Body {
			d.Body[i] = FoldConstants(cfg, s)
		}
		node.Data = d
	case ProgramNode:
		for i, s := range d.Stmts {
			d.Stmts[i] = FoldConstants(cfg, s)
		}
		node.Data = d
	}

	if node.Type != BinaryOp {
		return node
	}
	d := node.Data.(BinaryOpNode)
	if d.Left.Type != Number || d.Right.Type != Number {
		return node
	}
	l, r := d.Left.Data.(NumberNode).Value, d.Right.Data.(NumberNode).Value
	if l < 0 || l > 255 || r < 0 || r > 255 {
		// Out-of-range literals are the code generator's error to report.
		return node
	}

	var res int64
	switch d.Op {
	case token.Plus:
		res = (l + r) % 256
		if l+r > 255 && cfg.IsWarningEnabled(config.WarnOverflow) {
			util.Warn(node.Tok, cfg.Warnings[config.WarnOverflow].Name, "constant '%d + %d' wraps to %d", l, r, res)
		}
	case token.Minus:
		res = ((l - r) % 256 + 256) % 256
		if l < r && cfg.IsWarningEnabled(config.WarnOverflow) {
			util.Warn(node.Tok, cfg.Warnings[config.WarnOverflow].Name, "constant '%d - %d' wraps to %d", l, r, res)
		}
	case token.EqEq:
		if l == r {
			res = 1
		}
	case token.Neq:
		if l != r {
			res = 1
		}
	case token.Lt:
		if l < r {
			res = 1
		}
	case token.Gt:
		if l > r {
			res = 1
		}
	default:
		return node
	}
	return NewNumber(node.Tok, res)
}
