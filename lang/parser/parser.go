// Package parser implements the recursive-descent parser that transforms an
// EmberScript token stream into a tagged ast.Chunk. It accepts both braced
// and indentation-delimited blocks in the same grammar: the compiler and
// interpreter never see which surface a given chunk used.
package parser

import (
	"fmt"

	"github.com/embervm/ember/lang/ast"
	"github.com/embervm/ember/lang/lexer"
	"github.com/embervm/ember/lang/token"
)

// parser holds the mutable state of one parse. Like the teacher's own
// parser, it is unexported: callers only ever see the package-level Parse
// functions and the resulting ast.Chunk or error.
type parser struct {
	filename string
	toks     []token.Token
	pos      int

	errs token.ErrorList
}

// ParseFile lexes and parses src, returning the resulting Chunk or the first
// error encountered. Per the spec's error policy, parsing aborts after the
// first reported error rather than attempting recovery beyond statement
// boundaries.
func ParseFile(filename string, src []byte) (*ast.Chunk, error) {
	l := lexer.New(filename, src)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if errs := l.Errors(); len(errs) > 0 {
		return nil, errs.First()
	}

	p := &parser{filename: filename, toks: toks}
	block := p.parseTopLevel()
	if err := p.errs.Err(); err != nil {
		return nil, p.errs.First()
	}
	return &ast.Chunk{Name: filename, Block: block}, nil
}

func (p *parser) cur() token.Token  { return p.toks[p.pos] }
func (p *parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token.Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it has kind k, else records a
// diagnostic naming what was expected and what was found. It always
// advances, so callers make steady progress toward EOF even after an error
// (best-effort synchronization at statement boundaries, per spec §4.2).
func (p *parser) expect(k token.Kind) token.Token {
	tok := p.cur()
	if tok.Kind != k {
		p.errorf("expected %s, found %s", k, describeTok(tok))
	}
	return p.advance()
}

func describeTok(tok token.Token) string {
	if tok.Lexeme != "" {
		return fmt.Sprintf("%q", tok.Lexeme)
	}
	return tok.Kind.String()
}

func (p *parser) errorf(format string, args ...interface{}) {
	if len(p.errs) > 0 {
		return // first-error-abort: later diagnostics are suppressed
	}
	p.errs.Add(p.cur().Pos, fmt.Sprintf(format, args...))
}

// skipNewlines consumes any run of NEWLINE tokens, used between statements
// at the top level and inside blocks where blank lines are insignificant.
func (p *parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

func (p *parser) parseTopLevel() *ast.Block {
	pos := p.cur().Pos
	b := &ast.Block{Position: pos}
	p.skipNewlines()
	for !p.check(token.EOF) && len(p.errs) == 0 {
		b.Stmts = append(b.Stmts, p.parseStatement())
		p.skipNewlines()
	}
	return b
}

// parseBlock parses a brace-delimited or indentation-delimited block,
// whichever the next token introduces.
func (p *parser) parseBlock() *ast.Block {
	pos := p.cur().Pos
	b := &ast.Block{Position: pos}

	switch {
	case p.match(token.LBRACE):
		// The braces delimit the block, so the INDENT/DEDENT tokens the lexer
		// emits for indented lines inside them are skipped like blank lines.
		skipLayout := func() {
			for p.check(token.NEWLINE) || p.check(token.INDENT) || p.check(token.DEDENT) {
				p.advance()
			}
		}
		skipLayout()
		for !p.check(token.RBRACE) && !p.check(token.EOF) && len(p.errs) == 0 {
			b.Stmts = append(b.Stmts, p.parseStatement())
			skipLayout()
		}
		p.expect(token.RBRACE)
	case p.match(token.INDENT):
		p.skipNewlines()
		for !p.check(token.DEDENT) && !p.check(token.EOF) && len(p.errs) == 0 {
			b.Stmts = append(b.Stmts, p.parseStatement())
			p.skipNewlines()
		}
		p.expect(token.DEDENT)
	default:
		p.errorf("expected '{' or an indented block, found %s", describeTok(p.cur()))
	}
	return b
}

// blockFollows reports whether the current token begins a block. The
// bare-declaration/naked-iterator choice in parseColonStatement is made by
// blockHeaderFollows, which also steps over a NEWLINE before an INDENT.
func (p *parser) blockFollows() bool {
	return p.check(token.LBRACE) || p.check(token.INDENT)
}
