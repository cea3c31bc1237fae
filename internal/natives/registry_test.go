package natives

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupKnownNative(t *testing.T) {
	n, ok := Lookup("map-set")
	require.True(t, ok)
	require.True(t, n.Mutates)
	require.True(t, n.SpecialForm)
}

func TestLookupUnknownNative(t *testing.T) {
	_, ok := Lookup("not-a-real-native")
	require.False(t, ok)
}

func TestMutatorSetMatchesSpec(t *testing.T) {
	mutators := []string{
		"map-set", "map-insert", "map-delete", "var-set",
		"ft-mint?", "ft-transfer?", "ft-burn?",
		"nft-mint?", "nft-transfer?",
	}
	for _, name := range mutators {
		require.True(t, IsMutator(name), "%s should be a mutator", name)
	}

	nonMutators := []string{"map-get?", "var-get", "ft-get-balance", "+", "list", "tuple"}
	for _, name := range nonMutators {
		require.False(t, IsMutator(name), "%s should not be a mutator", name)
	}
}

func TestArityAdmits(t *testing.T) {
	require.True(t, exactly(2).Admits(2))
	require.False(t, exactly(2).Admits(3))
	require.True(t, atLeast(1).Admits(100))
	require.False(t, atLeast(1).Admits(0))
	require.True(t, between(1, 2).Admits(1))
	require.True(t, between(1, 2).Admits(2))
	require.False(t, between(1, 2).Admits(3))
}
