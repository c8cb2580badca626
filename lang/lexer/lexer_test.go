package lexer

import (
	"testing"

	"github.com/embervm/ember/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New("test.ember", []byte(src))
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	require.Empty(t, l.Errors(), "unexpected lexer errors: %v", l.Errors())
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestSimpleAssignment(t *testing.T) {
	toks := scanAll(t, "var a: 2\n")
	require.Equal(t, []token.Kind{
		token.VAR, token.IDENT, token.COLON, token.NUMBER, token.NEWLINE, token.EOF,
	}, kinds(toks))
}

func TestRangeVsDecimal(t *testing.T) {
	toks := scanAll(t, "1..4\n1.5\n")
	require.Equal(t, []token.Kind{
		token.NUMBER, token.RANGE, token.NUMBER, token.NEWLINE,
		token.NUMBER, token.NEWLINE, token.EOF,
	}, kinds(toks))
	require.Equal(t, "1", toks[0].Lexeme)
	require.Equal(t, "4", toks[2].Lexeme)
	require.Equal(t, "1.5", toks[4].Lexeme)
}

func TestIndentation(t *testing.T) {
	src := "i: 1..4\n  sum = sum + i\nprint(sum)\n"
	toks := scanAll(t, src)
	ks := kinds(toks)
	require.Contains(t, ks, token.INDENT)
	require.Contains(t, ks, token.DEDENT)

	// DEDENT must appear before the final `print` identifier.
	var dedentIdx, printIdx int
	for i, tok := range toks {
		if tok.Kind == token.DEDENT {
			dedentIdx = i
		}
		if tok.Kind == token.IDENT && tok.Lexeme == "print" {
			printIdx = i
			break
		}
	}
	require.Less(t, dedentIdx, printIdx)
}

func TestInconsistentIndentationIsError(t *testing.T) {
	l := New("test.ember", []byte("if true\n    a: 1\n  b: 2\n"))
	for {
		tok := l.Next()
		if tok.Kind == token.EOF {
			break
		}
	}
	require.NotEmpty(t, l.Errors())
}

func TestStringEscapes(t *testing.T) {
	toks := scanAll(t, `"hi\n\tthere"`+"\n")
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hi\n\tthere", toks[0].Lexeme)
}

func TestOperators(t *testing.T) {
	toks := scanAll(t, "== != <= >= && || .. <- . !\n")
	require.Equal(t, []token.Kind{
		token.EQ, token.NEQ, token.LE, token.GE, token.ANDAND, token.OROR,
		token.RANGE, token.ARROW, token.DOT, token.BANG, token.NEWLINE, token.EOF,
	}, kinds(toks))
}

func TestComments(t *testing.T) {
	toks := scanAll(t, "var a: 1 // comment\n/* block\ncomment */var b: 2\n")
	ks := kinds(toks)
	require.NotContains(t, ks, token.ILLEGAL)
}

func TestKeywordsAndBooleans(t *testing.T) {
	toks := scanAll(t, "if else while for return break continue var const let true false null import use fn fire\n")
	require.Equal(t, []token.Kind{
		token.IF, token.ELSE, token.WHILE, token.FOR, token.RETURN, token.BREAK,
		token.CONTINUE, token.VAR, token.CONST, token.LET, token.BOOLEAN, token.BOOLEAN,
		token.NULL, token.IMPORT, token.USE, token.FN, token.FIRE, token.NEWLINE, token.EOF,
	}, kinds(toks))
}
