package codegen

import (
	"fmt"
	"math"

	"github.com/xplshn/gbfc/pkg/ast"
	"github.com/xplshn/gbfc/pkg/config"
	"github.com/xplshn/gbfc/pkg/token"
)

// genExpr emits code leaving the expression's value in a freshly acquired
// temp cell and returns that cell's address. The caller owns the temp and
// must release it; every helper below releases its own internal temps in
// LIFO order so the stack discipline holds across nested expressions.
func (g *Generator) genExpr(node *ast.Node) (int, error) {
	switch node.Type {
	case ast.Number:
		d := node.Data.(ast.NumberNode)
		if d.Value < 0 || d.Value > 255 {
			return 0, &Error{Kind: LiteralOutOfRange, Value: d.Value, Tok: node.Tok}
		}
		t, err := g.temps.Acquire(node.Tok)
		if err != nil {
			return 0, err
		}
		if err := g.genLiteral(t, d.Value, node.Tok); err != nil {
			return 0, err
		}
		return t, nil

	case ast.Ident:
		d := node.Data.(ast.IdentNode)
		sym, err := g.syms.Resolve(d.Name, node.Tok)
		if err != nil {
			return 0, err
		}
		t, err := g.temps.Acquire(node.Tok)
		if err != nil {
			return 0, err
		}
		if err := g.copyCell(sym.Addr, t, node.Tok); err != nil {
			return 0, err
		}
		return t, nil

	case ast.BinaryOp:
		d := node.Data.(ast.BinaryOpNode)
		ta, err := g.genExpr(d.Left)
		if err != nil {
			return 0, err
		}
		tb, err := g.genExpr(d.Right)
		if err != nil {
			return 0, err
		}
		switch d.Op {
		case token.Plus:
			return g.genAdd(ta, tb), nil
		case token.Minus:
			return g.genSub(ta, tb), nil
		case token.EqEq, token.Neq:
			return g.genEquality(ta, tb, d.Op, node.Tok)
		case token.Lt, token.Gt:
			return g.genOrdering(ta, tb, d.Op, node.Tok)
		default:
			panic(fmt.Sprintf("codegen: unexpected binary operator %d", d.Op))
		}

	default:
		panic(fmt.Sprintf("codegen: unexpected expression node %d", node.Type))
	}
}

// loop wraps Emitter.Loop for bodies that cannot fail.
func (g *Generator) loop(body func()) {
	_ = g.emit.Loop(func() error {
		body()
		return nil
	})
}

// zeroCell drains addr to zero. Always correct under wraparound since the
// decrement loop runs until the cell hits zero exactly.
func (g *Generator) zeroCell(addr int) {
	g.emit.Goto(addr)
	g.loop(func() {
		g.emit.Dec()
	})
}

// moveCell drains src into dst, adding to whatever dst holds. src ends
// zero; the cursor ends at src.
func (g *Generator) moveCell(src, dst int) {
	g.emit.Goto(src)
	g.loop(func() {
		g.emit.Dec()
		g.emit.Goto(dst)
		g.emit.Inc()
		g.emit.Goto(src)
	})
}

// copyCell writes src's value into dst without destroying src: the value
// is drained into dst and a scratch simultaneously, then restored from the
// scratch. dst is zeroed first.
func (g *Generator) copyCell(src, dst int, tok token.Token) error {
	scratch, err := g.temps.Acquire(tok)
	if err != nil {
		return err
	}
	g.zeroCell(dst)
	g.zeroCell(scratch)
	g.emit.Goto(src)
	g.loop(func() {
		g.emit.Dec()
		g.emit.Goto(dst)
		g.emit.Inc()
		g.emit.Goto(scratch)
		g.emit.Inc()
		g.emit.Goto(src)
	})
	g.moveCell(scratch, src)
	g.temps.Release(scratch)
	return nil
}

// genLiteral materializes v into addr. Small values get a plain increment
// run; larger ones a k*q+r loop with k near sqrt(v), which caps the
// instruction count around 2*sqrt(v) instead of v.
func (g *Generator) genLiteral(addr int, v int64, tok token.Token) error {
	g.zeroCell(addr)
	if v == 0 {
		return nil
	}
	if v < 10 || !g.cfg.IsFeatureEnabled(config.FeatLoopLiterals) {
		g.emit.Goto(addr)
		g.emit.IncBy(int(v))
		return nil
	}
	k := int64(math.Sqrt(float64(v)))
	q, r := v/k, v%k
	scratch, err := g.temps.Acquire(tok)
	if err != nil {
		return err
	}
	g.zeroCell(scratch)
	g.emit.Goto(scratch)
	g.emit.IncBy(int(q))
	g.loop(func() {
		g.emit.Dec()
		g.emit.Goto(addr)
		g.emit.IncBy(int(k))
		g.emit.Goto(scratch)
	})
	g.temps.Release(scratch)
	if r > 0 {
		g.emit.Goto(addr)
		g.emit.IncBy(int(r))
	}
	return nil
}

// genAdd leaves ta+tb (mod 256) in ta and releases tb.
func (g *Generator) genAdd(ta, tb int) int {
	g.moveCell(tb, ta)
	g.temps.Release(tb)
	return ta
}

// genSub leaves ta-tb (mod 256) in ta and releases tb. Decrementing past
// zero wraps through 255, which is exactly two's-complement subtraction on
// 8-bit cells.
func (g *Generator) genSub(ta, tb int) int {
	g.emit.Goto(tb)
	g.loop(func() {
		g.emit.Dec()
		g.emit.Goto(ta)
		g.emit.Dec()
		g.emit.Goto(tb)
	})
	g.temps.Release(tb)
	return ta
}

// genEquality leaves (ta==tb) or (ta!=tb) as 0/1 in ta. The operands are
// subtracted mod 256, then a once-gated loop on the difference flips a
// flag cell seeded with the operator's "equal" answer.
func (g *Generator) genEquality(ta, tb int, op token.Type, tok token.Token) (int, error) {
	g.emit.Goto(tb)
	g.loop(func() {
		g.emit.Dec()
		g.emit.Goto(ta)
		g.emit.Dec()
		g.emit.Goto(tb)
	})
	tf, err := g.temps.Acquire(tok)
	if err != nil {
		return 0, err
	}
	g.zeroCell(tf)
	if op == token.EqEq {
		g.emit.Goto(tf)
		g.emit.Inc()
	}
	g.emit.Goto(ta)
	g.loop(func() {
		g.emit.Goto(tf)
		if op == token.EqEq {
			g.emit.Dec()
		} else {
			g.emit.Inc()
		}
		g.zeroCell(ta)
	})
	g.moveCell(tf, ta)
	g.temps.Release(tf)
	g.temps.Release(tb)
	return ta, nil
}

// genOrdering leaves (ta<tb) or (ta>tb) as 0/1 in ta. Both operands are
// decremented in lockstep while both remain nonzero; whichever side
// survives decides the answer. The guard is the AND of the two operands'
// nonzero flags, recomputed at the end of every iteration.
func (g *Generator) genOrdering(ta, tb int, op token.Type, tok token.Token) (int, error) {
	tf, err := g.temps.Acquire(tok) // result
	if err != nil {
		return 0, err
	}
	tg, err := g.temps.Acquire(tok) // guard
	if err != nil {
		return 0, err
	}
	th, err := g.temps.Acquire(tok) // scratch
	if err != nil {
		return 0, err
	}
	tk, err := g.temps.Acquire(tok) // scratch
	if err != nil {
		return 0, err
	}
	tm, err := g.temps.Acquire(tok) // second flag
	if err != nil {
		return 0, err
	}

	// Ends with the cursor on tg.
	guard := func() {
		g.nonzeroFlag(tg, ta, th, tk)
		g.nonzeroFlag(tm, tb, th, tk)
		g.andInto(tg, tm, th)
		g.emit.Goto(tg)
	}

	g.zeroCell(tf)
	guard()
	g.loop(func() {
		g.emit.Goto(ta)
		g.emit.Dec()
		g.emit.Goto(tb)
		g.emit.Dec()
		guard()
	})

	// After min(a,b) lockstep steps: a<b leaves tb nonzero, a>b leaves ta
	// nonzero, a==b leaves both zero.
	winner, loser := tb, ta
	if op == token.Gt {
		winner, loser = ta, tb
	}
	g.emit.Goto(winner)
	g.loop(func() {
		g.emit.Goto(tf)
		g.emit.Inc()
		g.zeroCell(winner)
	})
	g.zeroCell(loser)
	g.moveCell(tf, ta)

	g.temps.Release(tm)
	g.temps.Release(tk)
	g.temps.Release(th)
	g.temps.Release(tg)
	g.temps.Release(tf)
	g.temps.Release(tb)
	return ta, nil
}

// nonzeroFlag sets dst to 1 if src is nonzero and 0 otherwise, preserving
// src. s1 carries the copy-restore scratch, s2 the once-gate flag; both
// are zeroed here, so callers may pass dirty cells.
func (g *Generator) nonzeroFlag(dst, src, s1, s2 int) {
	g.zeroCell(dst)
	g.zeroCell(s1)
	g.moveCell(src, s1)
	g.emit.Goto(s1)
	g.loop(func() {
		g.emit.Dec()
		g.emit.Goto(src)
		g.emit.Inc()
		g.emit.Goto(dst)
		g.emit.Inc()
		g.emit.Goto(s1)
	})
	g.zeroCell(s2)
	g.emit.Goto(dst)
	g.loop(func() {
		g.emit.Goto(s2)
		g.emit.Inc()
		g.zeroCell(dst)
	})
	g.moveCell(s2, dst)
}

// andInto sets a to a AND b where both hold 0 or 1. b is consumed and
// left zero; scratch is zeroed here.
func (g *Generator) andInto(a, b, scratch int) {
	g.zeroCell(scratch)
	g.emit.Goto(b)
	g.loop(func() {
		g.emit.Dec()
		g.emit.Goto(a)
		g.loop(func() {
			g.emit.Dec()
			g.emit.Goto(scratch)
			g.emit.Inc()
			g.emit.Goto(a)
		})
		g.emit.Goto(b)
	})
	g.zeroCell(a)
	g.moveCell(scratch, a)
}
