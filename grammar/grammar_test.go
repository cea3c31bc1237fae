package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"clarity/grammar"
)

func TestParseLoadCommand(t *testing.T) {
	cmd, err := grammar.ParseCommand(":load ./contracts/vault.clar")
	require.NoError(t, err)
	require.NotNil(t, cmd.Load)
	require.Equal(t, "./contracts/vault.clar", cmd.Load.Path)
}

func TestParseSetCommand(t *testing.T) {
	cmd, err := grammar.ParseCommand(":set sender ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
	require.NoError(t, err)
	require.NotNil(t, cmd.Set)
	require.Equal(t, "sender", cmd.Set.Key)
	require.Equal(t, "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM", cmd.Set.Value)
}

func TestParseTraceCommand(t *testing.T) {
	cmd, err := grammar.ParseCommand(":trace on")
	require.NoError(t, err)
	require.NotNil(t, cmd.Trace)
	require.Equal(t, "on", cmd.Trace.Mode)
}

func TestParseResetAndQuit(t *testing.T) {
	cmd, err := grammar.ParseCommand(":reset")
	require.NoError(t, err)
	require.NotNil(t, cmd.Reset)

	cmd, err = grammar.ParseCommand(":q")
	require.NoError(t, err)
	require.NotNil(t, cmd.Quit)
}

func TestParseUnknownCommandFails(t *testing.T) {
	_, err := grammar.ParseCommand(":frobnicate")
	require.Error(t, err)
}
