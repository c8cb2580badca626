package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetOrAddIsLenient(t *testing.T) {
	tab := New()
	i1 := tab.GetOrAdd("x", false)
	i2 := tab.GetOrAdd("x", false)
	require.Equal(t, i1, i2)
}

func TestDeclareConflict(t *testing.T) {
	tab := New()
	_, err := tab.Declare("x", true)
	require.NoError(t, err)
	_, err = tab.Declare("x", true)
	require.Error(t, err)
}

func TestGlobalSlotsAreSequential(t *testing.T) {
	tab := New()
	i1, _ := tab.Declare("a", true)
	i2, _ := tab.Declare("b", true)
	require.Equal(t, uint16(0), i1)
	require.Equal(t, uint16(1), i2)
}

func TestFunctionParamsUseLocalsWindow(t *testing.T) {
	tab := New()
	tab.EnterFunction()
	i1, err := tab.Declare("a", true)
	require.NoError(t, err)
	i2, err := tab.Declare("b", true)
	require.NoError(t, err)
	require.Equal(t, uint16(FirstParamSlot), i1)
	require.Equal(t, uint16(FirstParamSlot+1), i2)
	tab.ExitFunction()
}

func TestResetClearsLocalsNotGlobals(t *testing.T) {
	tab := New()
	tab.Declare("g", true)
	tab.EnterFunction()
	tab.Declare("a", true)
	tab.Reset()

	_, ok := tab.Lookup("a")
	require.False(t, ok)
	_, ok = tab.Lookup("g")
	require.True(t, ok)
}

func TestIsMutable(t *testing.T) {
	tab := New()
	tab.Declare("c", false)
	require.False(t, tab.IsMutable("c"))
	require.True(t, tab.IsMutable("unknown"))
}
