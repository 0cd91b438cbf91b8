// Package codegen lowers the AST to the tape machine's eight-instruction
// stream. Generation is a single post-order walk; semantic validation
// (declarations, mutability, literal ranges) happens during the same pass,
// and the first error aborts with no output.
package codegen

import (
	"fmt"

	"github.com/xplshn/gbfc/pkg/ast"
	"github.com/xplshn/gbfc/pkg/config"
	"github.com/xplshn/gbfc/pkg/util"
)

// Generator owns the per-compilation state: the symbol table, the temp
// stack, and the instruction emitter. Generators are single-use and not
// safe for concurrent sharing; parallel compilations each get their own.
type Generator struct {
	cfg   *config.Config
	syms  *SymbolTable
	temps *TempAllocator
	emit  *Emitter
}

func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{
		cfg:   cfg,
		syms:  NewSymbolTable(cfg.TempBase),
		temps: NewTempAllocator(cfg.TempBase, cfg.TempLimit),
		emit:  NewEmitter(),
	}
}

// Generate compiles a Program node into the instruction stream.
func (g *Generator) Generate(prog *ast.Node) (string, error) {
	if prog.Type != ast.Program {
		panic(fmt.Sprintf("codegen: Generate needs a program node, got %d", prog.Type))
	}
	for _, stmt := range prog.Data.(ast.ProgramNode).Stmts {
		if err := g.genStmt(stmt); err != nil {
			return "", err
		}
	}

	if g.cfg.IsWarningEnabled(config.WarnUnusedVar) {
		for _, sym := range g.syms.Unread() {
			util.Warn(sym.Tok, g.cfg.WarningName(config.WarnUnusedVar), "variable '%s' is declared but never read", sym.Name)
		}
	}
	return g.emit.String(), nil
}

func (g *Generator) genStmt(node *ast.Node) error {
	switch node.Type {
	case ast.Let:
		return g.genLet(node)
	case ast.Assign:
		return g.genAssign(node)
	case ast.Print:
		return g.genPrint(node)
	case ast.If:
		return g.genIf(node)
	case ast.While:
		return g.genWhile(node)
	default:
		panic(fmt.Sprintf("codegen: unexpected statement node %d", node.Type))
	}
}

func (g *Generator) genLet(node *ast.Node) error {
	d := node.Data.(ast.LetNode)
	// The initializer is evaluated before the name exists, so 'let x = x'
	// reports the use, not the declaration.
	val, err := g.genExpr(d.Init)
	if err != nil {
		return err
	}
	sym, err := g.syms.Declare(d.Name, d.Mutable, node.Tok)
	if err != nil {
		return err
	}
	g.zeroCell(sym.Addr)
	g.moveCell(val, sym.Addr)
	g.temps.Release(val)
	return nil
}

func (g *Generator) genAssign(node *ast.Node) error {
	d := node.Data.(ast.AssignNode)
	val, err := g.genExpr(d.Value)
	if err != nil {
		return err
	}
	sym, err := g.syms.Assign(d.Name, node.Tok)
	if err != nil {
		return err
	}
	// The value temp is dead after this statement, so a destructive move
	// beats copy-via-restore.
	g.zeroCell(sym.Addr)
	g.moveCell(val, sym.Addr)
	g.temps.Release(val)
	return nil
}

func (g *Generator) genPrint(node *ast.Node) error {
	d := node.Data.(ast.PrintNode)
	val, err := g.genExpr(d.Value)
	if err != nil {
		return err
	}
	g.emit.Goto(val)
	g.emit.Output()
	g.temps.Release(val)
	return nil
}

// genIf lowers 'if' onto the machine's only conditional primitive: a loop
// on the guard cell that force-zeroes the guard as its last act, so the
// body runs at most once however large the guard value was.
func (g *Generator) genIf(node *ast.Node) error {
	d := node.Data.(ast.IfNode)
	guard, err := g.genExpr(d.Cond)
	if err != nil {
		return err
	}
	g.emit.Goto(guard)
	err = g.emit.Loop(func() error {
		for _, stmt := range d.Body {
			if err := g.genStmt(stmt); err != nil {
				return err
			}
		}
		g.zeroCell(guard)
		return nil
	})
	if err != nil {
		return err
	}
	g.temps.Release(guard)
	return nil
}

// genWhile evaluates the condition into a guard cell, loops on it, and
// re-emits the whole condition into the same cell at the loop tail. The
// machine re-tests only the literal current cell at ']', so the condition's
// instruction sequence must appear twice; folding the two emissions into
// one would break loop semantics.
func (g *Generator) genWhile(node *ast.Node) error {
	d := node.Data.(ast.WhileNode)
	guard, err := g.genExpr(d.Cond)
	if err != nil {
		return err
	}
	g.emit.Goto(guard)
	err = g.emit.Loop(func() error {
		for _, stmt := range d.Body {
			if err := g.genStmt(stmt); err != nil {
				return err
			}
		}
		fresh, err := g.genExpr(d.Cond)
		if err != nil {
			return err
		}
		g.zeroCell(guard)
		g.moveCell(fresh, guard)
		g.temps.Release(fresh)
		g.emit.Goto(guard)
		return nil
	})
	if err != nil {
		return err
	}
	g.temps.Release(guard)
	return nil
}
