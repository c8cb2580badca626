package parser

import (
	"github.com/embervm/ember/lang/ast"
	"github.com/embervm/ember/lang/token"
)

// parseExpression is the entry point for expression parsing, starting at
// the lowest-precedence operator per spec §4.2: || then && then equality
// then comparison then the range operator then additive then
// multiplicative then unary then primary/postfix.
func (p *parser) parseExpression() ast.Expr {
	return p.parseOr()
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.check(token.OROR) {
		pos := p.advance().Pos
		right := p.parseAnd()
		left = &ast.BinaryOpExpr{Position: pos, Op: token.OROR, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.check(token.ANDAND) {
		pos := p.advance().Pos
		right := p.parseEquality()
		left = &ast.BinaryOpExpr{Position: pos, Op: token.ANDAND, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.check(token.EQ) || p.check(token.NEQ) {
		op := p.advance()
		right := p.parseComparison()
		left = &ast.BinaryOpExpr{Position: op.Pos, Op: op.Kind, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseRange()
	for p.check(token.LT) || p.check(token.GT) || p.check(token.LE) || p.check(token.GE) {
		op := p.advance()
		right := p.parseRange()
		left = &ast.BinaryOpExpr{Position: op.Pos, Op: op.Kind, Left: left, Right: right}
	}
	return left
}

// parseRange handles the inclusive `start..end` range operator, binding
// tighter than comparison but looser than the arithmetic operators so that
// `1+1..4*2` parses as `(1+1)..(4*2)`.
func (p *parser) parseRange() ast.Expr {
	left := p.parseAdditive()
	if p.check(token.RANGE) {
		pos := p.advance().Pos
		right := p.parseAdditive()
		return &ast.RangeExpr{Position: pos, Start: left, End: right}
	}
	return left
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryOpExpr{Position: op.Pos, Op: op.Kind, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.advance()
		right := p.parseUnary()
		left = &ast.BinaryOpExpr{Position: op.Pos, Op: op.Kind, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	if p.check(token.BANG) || p.check(token.MINUS) {
		op := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOpExpr{Position: op.Pos, Op: op.Kind, Operand: operand}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of index
// (`[...]`), property (`.name`) and call (`(...)`)/method-call
// (`.name(...)`) suffixes, e.g. `a.b[c]` (index of property) or
// `obj.x.y` (nested property access).
func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()

	for {
		switch {
		case p.check(token.LBRACK):
			pos := p.advance().Pos
			index := p.parseExpression()
			p.expect(token.RBRACK)
			expr = &ast.IndexAccessExpr{Position: pos, Array: expr, Index: index}

		case p.check(token.DOT):
			pos := p.advance().Pos
			name := p.expect(token.IDENT).Lexeme
			if p.check(token.LPAREN) {
				args := p.parseArgs()
				expr = &ast.MethodCallExpr{Position: pos, Object: expr, Method: name, Args: args}
			} else {
				expr = &ast.PropertyAccessExpr{Position: pos, Object: expr, Property: name}
			}

		case p.check(token.LPAREN):
			// A call on an arbitrary expression is only meaningful for a bare
			// identifier naming a function, per ast.FunctionCallExpr's
			// by-name design; other call targets are not part of the
			// language surface.
			if ident, ok := expr.(*ast.VariableExpr); ok {
				pos := p.cur().Pos
				args := p.parseArgs()
				expr = &ast.FunctionCallExpr{Position: pos, Name: ident.Name, Args: args}
				continue
			}
			return expr

		default:
			return expr
		}
	}
}

func (p *parser) parseArgs() []ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	for !p.check(token.RPAREN) && !p.check(token.EOF) {
		args = append(args, p.parseExpression())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return args
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		return &ast.LiteralExpr{Position: tok.Pos, Kind: token.NUMBER, Text: tok.Lexeme}
	case token.STRING:
		p.advance()
		return &ast.LiteralExpr{Position: tok.Pos, Kind: token.STRING, Text: tok.Lexeme}
	case token.BOOLEAN:
		p.advance()
		return &ast.LiteralExpr{Position: tok.Pos, Kind: token.BOOLEAN, Text: tok.Lexeme}
	case token.NULL:
		p.advance()
		return &ast.LiteralExpr{Position: tok.Pos, Kind: token.NULL, Text: "null"}
	case token.IDENT:
		p.advance()
		return &ast.VariableExpr{Position: tok.Pos, Name: tok.Lexeme}
	case token.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(token.RPAREN)
		return expr
	case token.LBRACK:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.FN:
		return p.parseFunctionDef()
	default:
		p.errorf("unexpected token %s in expression", describeTok(tok))
		p.advance()
		return &ast.LiteralExpr{Position: tok.Pos, Kind: token.NULL, Text: "null"}
	}
}

func (p *parser) parseArrayLiteral() ast.Expr {
	pos := p.advance().Pos // '['
	arr := &ast.ArrayLiteralExpr{Position: pos}
	for !p.check(token.RBRACK) && !p.check(token.EOF) {
		arr.Elements = append(arr.Elements, p.parseExpression())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACK)
	return arr
}

// parseObjectLiteral parses `{ [:[Mixin, ...],] key: value, ... }`. A
// mixin list, if present, must be the first element and starts with a
// colon immediately followed by a bracketed identifier list.
func (p *parser) parseObjectLiteral() ast.Expr {
	pos := p.advance().Pos // '{'
	obj := &ast.ObjectLiteralExpr{Position: pos}
	p.skipNewlines()

	if p.check(token.COLON) && p.peek().Kind == token.LBRACK {
		p.advance() // ':'
		p.advance() // '['
		for !p.check(token.RBRACK) && !p.check(token.EOF) {
			obj.Mixins = append(obj.Mixins, p.expect(token.IDENT).Lexeme)
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RBRACK)
		p.match(token.COMMA)
		p.skipNewlines()
	}

	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		key := p.expect(token.IDENT).Lexeme
		p.expect(token.COLON)
		value := p.parseExpression()
		obj.Properties = append(obj.Properties, ast.ObjectProperty{Key: key, Value: value})
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	p.expect(token.RBRACE)
	return obj
}

// parseFunctionDef parses `fn(params) body`, optionally preceded by an
// event-binding head `<- [ ... ]` that is parsed but has no runtime effect
// (the event system is documented but unimplemented, per spec §1).
func (p *parser) parseFunctionDef() *ast.FunctionDefExpr {
	pos := p.advance().Pos // 'fn'
	p.expect(token.LPAREN)
	var params []string
	for !p.check(token.RPAREN) && !p.check(token.EOF) {
		params = append(params, p.expect(token.IDENT).Lexeme)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)

	fn := &ast.FunctionDefExpr{Position: pos, Params: params}
	if p.match(token.ARROW) {
		p.expect(token.LBRACK)
		for !p.check(token.RBRACK) && !p.check(token.EOF) {
			fn.EventSources = append(fn.EventSources, p.parseExpression())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RBRACK)
	}

	fn.Body = p.parseHeaderBlock()
	return fn
}
