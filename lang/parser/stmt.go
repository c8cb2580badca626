package parser

import (
	"github.com/embervm/ember/lang/ast"
	"github.com/embervm/ember/lang/token"
)

// parseStatement dispatches on the current token to one of the recognized
// top-level statement forms (spec §4.2).
func (p *parser) parseStatement() ast.Stmt {
	switch p.cur().Kind {
	case token.VAR, token.CONST, token.LET:
		return p.parseVarDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.IMPORT, token.USE:
		return p.parseImport()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		pos := p.advance().Pos
		return &ast.BreakStmt{Position: pos}
	case token.CONTINUE:
		pos := p.advance().Pos
		return &ast.ContinueStmt{Position: pos}
	case token.SWITCH:
		return p.parseSwitch()
	case token.IDENT:
		if p.peek().Kind == token.COLON {
			return p.parseColonStatement()
		}
		return p.parseAssignOrExprStmt()
	default:
		return p.parseAssignOrExprStmt()
	}
}

// parseVarDecl parses `var name: expr`, `const name: expr` or `let name:
// expr`. The spec resolves the `let`/`const` ambiguity as: let is an
// immutable binding (contents may still mutate); const is an immutable
// binding whose primitive contents are also immutable (objects are not
// deep-frozen).
func (p *parser) parseVarDecl() ast.Stmt {
	declTok := p.advance()
	pos := declTok.Pos
	name := p.expect(token.IDENT).Lexeme
	p.expect(token.COLON)
	value := p.parseExpression()
	return &ast.VarDeclStmt{
		Position: pos,
		Kind:     declTok.Kind,
		Name:     name,
		Value:    value,
		Mutable:  declTok.Kind == token.VAR,
	}
}

// parseColonStatement handles the family of statements introduced by `IDENT
// ':'`: a bare variable declaration, a named function definition, or a
// naked iterator, disambiguated as described on ast.NakedIteratorStmt.
func (p *parser) parseColonStatement() ast.Stmt {
	nameTok := p.advance()
	pos := nameTok.Pos
	p.expect(token.COLON)

	if p.check(token.FN) {
		fn := p.parseFunctionDef()
		return &ast.FunctionDefStmt{Position: pos, Name: nameTok.Lexeme, Fn: fn}
	}

	value := p.parseExpression()

	if p.blockHeaderFollows() {
		body := p.parseHeaderBlock()
		return &ast.NakedIteratorStmt{Position: pos, Name: nameTok.Lexeme, Source: value, Body: body}
	}

	return &ast.VarDeclStmt{Position: pos, Kind: token.IDENT, Name: nameTok.Lexeme, Value: value, Mutable: true}
}

// blockHeaderFollows reports whether a block header (either `{` directly or
// a NEWLINE then INDENT) follows the current position, without consuming
// any tokens.
func (p *parser) blockHeaderFollows() bool {
	if p.check(token.LBRACE) {
		return true
	}
	return p.check(token.NEWLINE) && p.peek().Kind == token.INDENT
}

// parseHeaderBlock consumes the block introduced after a statement header
// (if/while/for/naked-iterator), stepping over the NEWLINE that separates
// an indented header from its INDENT when present.
func (p *parser) parseHeaderBlock() *ast.Block {
	if p.check(token.NEWLINE) {
		p.advance()
	}
	return p.parseBlock()
}

func (p *parser) parseAssignOrExprStmt() ast.Stmt {
	pos := p.cur().Pos
	expr := p.parseExpression()

	if p.match(token.ASSIGN) {
		value := p.parseExpression()
		switch target := expr.(type) {
		case *ast.VariableExpr:
			return &ast.AssignmentStmt{Position: pos, Name: target.Name, Value: value}
		case *ast.IndexAccessExpr:
			return &ast.IndexAssignmentStmt{Position: pos, Array: target.Array, Index: target.Index, Value: value}
		case *ast.PropertyAccessExpr:
			return &ast.PropertyAssignmentStmt{Position: pos, Object: target.Object, Property: target.Property, Value: value}
		default:
			p.errorf("invalid assignment target")
			return &ast.ExprStmt{Position: pos, X: expr}
		}
	}

	return &ast.ExprStmt{Position: pos, X: expr}
}

func (p *parser) parseIf() ast.Stmt {
	pos := p.advance().Pos // 'if'
	cond := p.parseExpression()
	body := p.parseHeaderBlock()

	stmt := &ast.IfStmt{Position: pos, Cond: cond, Body: body}
	save := p.pos
	p.skipNewlines()
	if p.match(token.ELSE) {
		if p.check(token.IF) {
			elseIf := p.parseIf()
			stmt.Else = &ast.Block{Position: elseIf.Pos(), Stmts: []ast.Stmt{elseIf}}
		} else {
			stmt.Else = p.parseHeaderBlock()
		}
	} else {
		p.pos = save
	}
	return stmt
}

func (p *parser) parseWhile() ast.Stmt {
	pos := p.advance().Pos // 'while'
	cond := p.parseExpression()
	body := p.parseHeaderBlock()
	return &ast.WhileStmt{Position: pos, Cond: cond, Body: body}
}

// parseFor parses the three-clause `for [init]: [cond]: [incr] body` loop.
// Any clause may be empty. An init of the form `name: expr` declares name.
func (p *parser) parseFor() ast.Stmt {
	pos := p.advance().Pos // 'for'
	stmt := &ast.ForStmt{Position: pos}

	if p.check(token.IDENT) && p.peek().Kind == token.COLON {
		nameTok := p.advance()
		p.expect(token.COLON)
		stmt.Init = &ast.VarDeclStmt{Position: nameTok.Pos, Kind: token.IDENT, Name: nameTok.Lexeme, Value: p.parseExpression(), Mutable: true}
	} else if !p.check(token.COLON) {
		stmt.Init = p.parseAssignOrExprStmt()
	}
	p.expect(token.COLON)
	if !p.check(token.COLON) {
		stmt.Cond = p.parseExpression()
	}
	p.expect(token.COLON)
	if !p.blockHeaderFollows() {
		stmt.Post = p.parseAssignOrExprStmt()
	}

	stmt.Body = p.parseHeaderBlock()
	return stmt
}

func (p *parser) parseImport() ast.Stmt {
	pos := p.advance().Pos // 'import' or 'use'
	pathTok := p.expect(token.STRING)
	return &ast.ImportStmt{Position: pos, Path: pathTok.Lexeme}
}

func (p *parser) parseReturn() ast.Stmt {
	pos := p.advance().Pos
	if p.check(token.NEWLINE) || p.check(token.RBRACE) || p.check(token.DEDENT) || p.check(token.EOF) {
		return &ast.ReturnStmt{Position: pos}
	}
	return &ast.ReturnStmt{Position: pos, Value: p.parseExpression()}
}

// parseSwitch parses `switch subject { case expr: body ... [default: body] }`.
// Recognized by the parser; the compiler is not required to lower it (spec
// §3), so no codegen exists for SwitchCaseStmt.
func (p *parser) parseSwitch() ast.Stmt {
	pos := p.advance().Pos // 'switch'
	subject := p.parseExpression()
	p.expect(token.LBRACE)
	p.skipNewlines()

	stmt := &ast.SwitchCaseStmt{Position: pos, Subject: subject}
	for !p.check(token.RBRACE) && !p.check(token.EOF) && len(p.errs) == 0 {
		var c ast.SwitchCase
		if p.match(token.CASE) {
			c.Match = p.parseExpression()
		} else {
			p.expect(token.DEFAULT)
		}
		p.expect(token.COLON)
		c.Body = &ast.Block{Position: p.cur().Pos}
		p.skipNewlines()
		for !p.check(token.CASE) && !p.check(token.DEFAULT) && !p.check(token.RBRACE) && !p.check(token.EOF) && len(p.errs) == 0 {
			c.Body.Stmts = append(c.Body.Stmts, p.parseStatement())
			p.skipNewlines()
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	p.expect(token.RBRACE)
	return stmt
}
