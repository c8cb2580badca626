package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Kind(0); tok < maxKind; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestLookupKw(t *testing.T) {
	for lit, tok := range keywords {
		require.Equal(t, tok, LookupKw(lit))
	}
	require.Equal(t, IDENT, LookupKw("notAKeyword"))
}

func TestGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "if", IF.GoString())
}
