package codegen

import (
	"fmt"
	"strings"
)

// Emitter appends primitive tape-machine instructions while tracking where
// the data pointer will be when the target executes them. The cursor is a
// model of the real machine: every instruction that moves the pointer also
// moves the cursor, and nothing else may touch either.
type Emitter struct {
	out    strings.Builder
	cursor int
}

func NewEmitter() *Emitter { return &Emitter{} }

// Cursor returns the modelled pointer address.
func (e *Emitter) Cursor() int { return e.cursor }

// Goto emits the minimal run of single-step motions from the cursor to addr.
func (e *Emitter) Goto(addr int) {
	if addr > e.cursor {
		e.out.WriteString(strings.Repeat(">", addr-e.cursor))
	} else if addr < e.cursor {
		e.out.WriteString(strings.Repeat("<", e.cursor-addr))
	}
	e.cursor = addr
}

// Inc increments the cell at the cursor.
func (e *Emitter) Inc() { e.out.WriteByte('+') }

// IncBy emits n increments.
func (e *Emitter) IncBy(n int) { e.out.WriteString(strings.Repeat("+", n)) }

// Dec decrements the cell at the cursor.
func (e *Emitter) Dec() { e.out.WriteByte('-') }

// Output emits the current cell as one byte.
func (e *Emitter) Output() { e.out.WriteByte('.') }

// Loop emits a loop over the cell at the cursor: the body runs while that
// cell is nonzero. The machine re-tests only the literal current cell at
// each iteration boundary, so the body must return the cursor to the loop
// cell before it ends; a mismatch means the generator emitted a loop whose
// re-test would read some other cell, which is a bug, not an input error.
func (e *Emitter) Loop(body func() error) error {
	start := e.cursor
	e.out.WriteByte('[')
	if err := body(); err != nil {
		return err
	}
	if e.cursor != start {
		panic(fmt.Sprintf("codegen: unbalanced loop: started at cell %d, body ended at cell %d", start, e.cursor))
	}
	e.out.WriteByte(']')
	return nil
}

// String returns the instruction stream emitted so far.
func (e *Emitter) String() string { return e.out.String() }

// Len returns the number of instructions emitted so far.
func (e *Emitter) Len() int { return e.out.Len() }
