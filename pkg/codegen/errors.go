package codegen

import (
	"fmt"

	"github.com/xplshn/gbfc/pkg/token"
)

// ErrorKind enumerates the semantic errors the generation walk can detect.
// Validation and generation are the same single pass; the first error aborts
// the compilation and no output is produced.
type ErrorKind int

const (
	DuplicateDeclaration ErrorKind = iota
	UndeclaredVariable
	ImmutableAssignment
	LiteralOutOfRange
	TempSpaceExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case DuplicateDeclaration:
		return "duplicate declaration"
	case UndeclaredVariable:
		return "undeclared variable"
	case ImmutableAssignment:
		return "assignment to immutable variable"
	case LiteralOutOfRange:
		return "literal out of range"
	case TempSpaceExhausted:
		return "temp space exhausted"
	default:
		return "unknown error"
	}
}

// Error is a semantic error found during code generation. Tok carries the
// source position when the AST producer supplied one.
type Error struct {
	Kind  ErrorKind
	Name  string
	Value int64
	Tok   token.Token
}

func (e *Error) Error() string {
	switch e.Kind {
	case DuplicateDeclaration:
		return fmt.Sprintf("duplicate declaration of '%s'", e.Name)
	case UndeclaredVariable:
		return fmt.Sprintf("use of undeclared variable '%s'", e.Name)
	case ImmutableAssignment:
		return fmt.Sprintf("cannot assign to immutable variable '%s'; declare it with 'let mut'", e.Name)
	case LiteralOutOfRange:
		return fmt.Sprintf("literal %d is outside the cell range 0..255", e.Value)
	case TempSpaceExhausted:
		return fmt.Sprintf("temp space exhausted at cell %d; raise the temp limit or simplify the expression", e.Value)
	default:
		return e.Kind.String()
	}
}
