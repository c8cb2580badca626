package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStandardHasMath(t *testing.T) {
	r := Standard()
	require.True(t, r.Has("math"))
	require.False(t, r.Has("nope"))
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()
	r.Register("io")
	r.Register("io")
	require.Equal(t, []string{"io"}, r.Names())
}
