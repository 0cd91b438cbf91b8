// Package bfvm executes the eight-instruction tape machine the compiler
// targets: unbounded cells to the right, 8-bit wrapping arithmetic, and
// matched-bracket loops. It exists so compiled programs can be run
// in-process, both by the -run driver flag and by the test suites, without
// shelling out to an external interpreter.
package bfvm

import (
	"bytes"
	"fmt"
	"io"
)

// DefaultStepLimit bounds execution so a miscompiled loop fails a test run
// instead of hanging it.
const DefaultStepLimit = 50_000_000

// Machine runs one program. Zero value is not usable; construct with New.
type Machine struct {
	code      []byte
	jumps     []int
	tape      []byte
	ptr       int
	out       bytes.Buffer
	in        io.Reader
	stepLimit int
}

type Option func(*Machine)

// WithInput supplies the byte stream consumed by ',' instructions. Reads
// past EOF leave the current cell untouched.
func WithInput(r io.Reader) Option {
	return func(m *Machine) { m.in = r }
}

// WithStepLimit overrides DefaultStepLimit. A limit of 0 means unlimited.
func WithStepLimit(n int) Option {
	return func(m *Machine) { m.stepLimit = n }
}

// New validates the program's brackets and precomputes the jump table.
// Bytes outside the instruction set are ignored, matching the usual
// convention for this machine.
func New(code string, opts ...Option) (*Machine, error) {
	m := &Machine{
		code:      []byte(code),
		jumps:     make([]int, len(code)),
		tape:      make([]byte, 64),
		stepLimit: DefaultStepLimit,
	}
	for _, opt := range opts {
		opt(m)
	}

	var stack []int
	for i, c := range m.code {
		switch c {
		case '[':
			stack = append(stack, i)
		case ']':
			if len(stack) == 0 {
				return nil, fmt.Errorf("bfvm: unmatched ']' at offset %d", i)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			m.jumps[open] = i
			m.jumps[i] = open
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("bfvm: unmatched '[' at offset %d", stack[len(stack)-1])
	}
	return m, nil
}

// Run executes the program to completion and returns everything the '.'
// instructions emitted.
func (m *Machine) Run() ([]byte, error) {
	steps := 0
	for pc := 0; pc < len(m.code); pc++ {
		if m.stepLimit > 0 {
			steps++
			if steps > m.stepLimit {
				return nil, fmt.Errorf("bfvm: step limit of %d exceeded at offset %d", m.stepLimit, pc)
			}
		}
		switch m.code[pc] {
		case '>':
			m.ptr++
			if m.ptr >= len(m.tape) {
				m.tape = append(m.tape, make([]byte, len(m.tape))...)
			}
		case '<':
			m.ptr--
			if m.ptr < 0 {
				return nil, fmt.Errorf("bfvm: pointer moved left of cell 0 at offset %d", pc)
			}
		case '+':
			m.tape[m.ptr]++
		case '-':
			m.tape[m.ptr]--
		case '.':
			m.out.WriteByte(m.tape[m.ptr])
		case ',':
			if m.in != nil {
				var b [1]byte
				if _, err := io.ReadFull(m.in, b[:]); err == nil {
					m.tape[m.ptr] = b[0]
				}
			}
		case '[':
			if m.tape[m.ptr] == 0 {
				pc = m.jumps[pc]
			}
		case ']':
			if m.tape[m.ptr] != 0 {
				pc = m.jumps[pc]
			}
		}
	}
	return m.out.Bytes(), nil
}

// Cell reports the value at tape index i, reading past the touched region
// as zero. Intended for tests inspecting machine state after Run.
func (m *Machine) Cell(i int) byte {
	if i < 0 || i >= len(m.tape) {
		return 0
	}
	return m.tape[i]
}

// Pointer reports the final cursor position.
func (m *Machine) Pointer() int {
	return m.ptr
}
