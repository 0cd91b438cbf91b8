package codegen

import (
	"github.com/xplshn/gbfc/pkg/token"
)

// Symbol records one declared variable and its fixed tape address.
type Symbol struct {
	Name    string
	Addr    int
	Mutable bool
	Tok     token.Token
	read    bool
}

// SymbolTable maps variable names to tape addresses. Addresses are assigned
// sequentially from cell 0 in first-declaration order and are never reused;
// the language has no scoping, so entries live for the whole compilation.
type SymbolTable struct {
	symbols  map[string]*Symbol
	ordered  []*Symbol
	nextAddr int
	tempBase int
}

func NewSymbolTable(tempBase int) *SymbolTable {
	return &SymbolTable{
		symbols:  make(map[string]*Symbol),
		tempBase: tempBase,
	}
}

// Declare enters a new variable and returns its address. Re-declaring a
// name is an error; there is no shadowing.
func (s *SymbolTable) Declare(name string, mutable bool, tok token.Token) (*Symbol, error) {
	if _, ok := s.symbols[name]; ok {
		return nil, &Error{Kind: DuplicateDeclaration, Name: name, Tok: tok}
	}
	if s.nextAddr >= s.tempBase {
		// Variables would run into the temp region.
		return nil, &Error{Kind: TempSpaceExhausted, Value: int64(s.nextAddr), Tok: tok}
	}
	sym := &Symbol{Name: name, Addr: s.nextAddr, Mutable: mutable, Tok: tok}
	s.symbols[name] = sym
	s.ordered = append(s.ordered, sym)
	s.nextAddr++
	return sym, nil
}

// Resolve looks up a name for reading and marks it used.
func (s *SymbolTable) Resolve(name string, tok token.Token) (*Symbol, error) {
	sym, ok := s.symbols[name]
	if !ok {
		return nil, &Error{Kind: UndeclaredVariable, Name: name, Tok: tok}
	}
	sym.read = true
	return sym, nil
}

// Assign looks up a name for writing, enforcing mutability. The initializing
// write of a 'let' goes through Declare, not here.
func (s *SymbolTable) Assign(name string, tok token.Token) (*Symbol, error) {
	sym, ok := s.symbols[name]
	if !ok {
		return nil, &Error{Kind: UndeclaredVariable, Name: name, Tok: tok}
	}
	if !sym.Mutable {
		return nil, &Error{Kind: ImmutableAssignment, Name: name, Tok: tok}
	}
	return sym, nil
}

// Count returns the number of declared variables.
func (s *SymbolTable) Count() int { return s.nextAddr }

// Unread returns the declared-but-never-read symbols in declaration order.
func (s *SymbolTable) Unread() []*Symbol {
	var out []*Symbol
	for _, sym := range s.ordered {
		if !sym.read {
			out = append(out, sym)
		}
	}
	return out
}
