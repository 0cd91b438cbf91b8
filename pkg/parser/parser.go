package parser

import (
	"strconv"

	"github.com/xplshn/gbfc/pkg/ast"
	"github.com/xplshn/gbfc/pkg/token"
	"github.com/xplshn/gbfc/pkg/util"
)

// Parser holds the state for the parsing process
type Parser struct {
	tokens   []token.Token
	pos      int
	current  token.Token
	previous token.Token
}

// NewParser creates and initializes a new Parser from a token stream
func NewParser(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	if len(tokens) > 0 {
		p.current = p.tokens[0]
	}
	return p
}

// Parse consumes the token stream and returns the program root.
func (p *Parser) Parse() *ast.Node {
	rootTok := p.current
	var stmts []*ast.Node
	for !p.check(token.EOF) {
		stmts = append(stmts, p.parseStatement())
	}
	return ast.NewProgram(rootTok, stmts)
}

// Parser helpers
func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.previous = p.current
		p.pos++
		if p.pos < len(p.tokens) {
			p.current = p.tokens[p.pos]
		}
	}
}

func (p *Parser) check(tokType token.Type) bool {
	return p.current.Type == tokType
}

func (p *Parser) match(tokType token.Type) bool {
	if !p.check(tokType) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(tokType token.Type, message string) {
	if p.check(tokType) {
		p.advance()
		return
	}
	util.Error(p.current, message)
}

// Statement parsing

func (p *Parser) parseStatement() *ast.Node {
	switch p.current.Type {
	case token.Let:
		return p.parseLet()
	case token.Print:
		return p.parsePrint()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.Ident:
		return p.parseAssign()
	default:
		util.Error(p.current, "Expected a statement, got %s.", p.current.Type)
		return nil
	}
}

func (p *Parser) parseLet() *ast.Node {
	p.expect(token.Let, "Expected 'let'.")
	mutable := p.match(token.Mut)
	nameTok := p.current
	p.expect(token.Ident, "Expected variable name after 'let'.")
	p.expect(token.Eq, "Expected '=' after variable name.")
	init := p.parseExpr()
	p.match(token.Semi)
	return ast.NewLet(nameTok, nameTok.Value, mutable, init)
}

func (p *Parser) parseAssign() *ast.Node {
	nameTok := p.current
	p.advance()
	p.expect(token.Eq, "Expected '=' in assignment.")
	value := p.parseExpr()
	p.match(token.Semi)
	return ast.NewAssign(nameTok, nameTok.Value, value)
}

func (p *Parser) parsePrint() *ast.Node {
	tok := p.current
	p.advance()
	p.expect(token.LParen, "Expected '(' after 'print'.")
	value := p.parseExpr()
	p.expect(token.RParen, "Expected ')' after expression.")
	p.match(token.Semi)
	return ast.NewPrint(tok, value)
}

func (p *Parser) parseIf() *ast.Node {
	tok := p.current
	p.advance()
	cond := p.parseExpr()
	body := p.parseBlock()
	return ast.NewIf(tok, cond, body)
}

func (p *Parser) parseWhile() *ast.Node {
	tok := p.current
	p.advance()
	cond := p.parseExpr()
	body := p.parseBlock()
	return ast.NewWhile(tok, cond, body)
}

func (p *Parser) parseBlock() []*ast.Node {
	p.expect(token.LBrace, "Expected '{'.")
	var stmts []*ast.Node
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(token.RBrace, "Expected '}'.")
	return stmts
}

// Expression parsing. Precedence, loosest first: == !=, < >, + -.

func (p *Parser) parseExpr() *ast.Node {
	return p.parseEquality()
}

func (p *Parser) parseEquality() *ast.Node {
	expr := p.parseRelational()
	for p.check(token.EqEq) || p.check(token.Neq) {
		opTok := p.current
		p.advance()
		right := p.parseRelational()
		expr = ast.NewBinaryOp(opTok, opTok.Type, expr, right)
	}
	return expr
}

func (p *Parser) parseRelational() *ast.Node {
	expr := p.parseAdditive()
	for p.check(token.Lt) || p.check(token.Gt) {
		opTok := p.current
		p.advance()
		right := p.parseAdditive()
		expr = ast.NewBinaryOp(opTok, opTok.Type, expr, right)
	}
	return expr
}

func (p *Parser) parseAdditive() *ast.Node {
	expr := p.parsePrimary()
	for p.check(token.Plus) || p.check(token.Minus) {
		opTok := p.current
		p.advance()
		right := p.parsePrimary()
		expr = ast.NewBinaryOp(opTok, opTok.Type, expr, right)
	}
	return expr
}

func (p *Parser) parsePrimary() *ast.Node {
	tok := p.current
	if p.match(token.Number) {
		val, err := strconv.ParseInt(p.previous.Value, 10, 64)
		if err != nil {
			util.Error(tok, "Invalid number literal '%s'.", p.previous.Value)
		}
		return ast.NewNumber(tok, val)
	}
	if p.match(token.Ident) {
		return ast.NewIdent(tok, p.previous.Value)
	}
	if p.match(token.LParen) {
		expr := p.parseExpr()
		p.expect(token.RParen, "Expected ')' after expression.")
		return expr
	}
	util.Error(tok, "Expected an expression.")
	return nil
}
