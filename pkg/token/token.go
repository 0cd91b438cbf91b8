package token

type Type int

const (
	EOF Type = iota
	Comment
	Ident
	Number
	Let
	Mut
	Print
	If
	While
	LParen
	RParen
	LBrace
	RBrace
	Semi
	Eq
	Plus
	Minus
	EqEq
	Neq
	Lt
	Gt
	Not
)

var KeywordMap = map[string]Type{
	"let":   Let,
	"mut":   Mut,
	"print": Print,
	"if":    If,
	"while": While,
}

var typeStrings = map[Type]string{
	EOF:    "end of file",
	Ident:  "identifier",
	Number: "number",
	Let:    "'let'",
	Mut:    "'mut'",
	Print:  "'print'",
	If:     "'if'",
	While:  "'while'",
	LParen: "'('",
	RParen: "')'",
	LBrace: "'{'",
	RBrace: "'}'",
	Semi:   "';'",
	Eq:     "'='",
	Plus:   "'+'",
	Minus:  "'-'",
	EqEq:   "'=='",
	Neq:    "'!='",
	Lt:     "'<'",
	Gt:     "'>'",
	Not:    "'!'",
}

// String returns a human-readable name for a token type, for diagnostics.
func (t Type) String() string {
	if s, ok := typeStrings[t]; ok {
		return s
	}
	return "unknown token"
}

type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}
