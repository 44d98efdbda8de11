package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand_UserKeepsOneConversation(t *testing.T) {
	isolateEnv(t)
	args := withArgs(sqliteArgs(t), "--user", "amina")

	out, err := runCLI(t, withArgs(args, "new")...)
	require.NoError(t, err)
	first := lastField(out, "Started new conversation")
	require.NotEmpty(t, first)
	assert.NotContains(t, out, "replaced")

	out, err = runCLI(t, withArgs(args, "new")...)
	require.NoError(t, err)
	second := lastField(out, "Started new conversation")
	assert.NotEqual(t, first, second)
	assert.Contains(t, out, "Your previous conversation was replaced.")

	out, err = runCLI(t, withArgs(args, "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 1 of 1 conversation(s)")
	assert.Contains(t, out, second)
	assert.NotContains(t, out, first)
}

func TestNewCommand_IdentitiesAreIsolated(t *testing.T) {
	isolateEnv(t)
	storage := sqliteArgs(t)

	out, err := runCLI(t, withArgs(storage, "new", "--user", "amina")...)
	require.NoError(t, err)
	aminaID := lastField(out, "Started new conversation")

	out, err = runCLI(t, withArgs(storage, "list", "--user", "youssef")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No conversations yet")

	out, err = runCLI(t, withArgs(storage, "list")...)
	require.NoError(t, err)
	assert.NotContains(t, out, aminaID)

	_, err = runCLI(t, withArgs(storage, "show", aminaID, "--user", "youssef")...)
	assert.Error(t, err)
}

func TestNewCommand_RejectsArgs(t *testing.T) {
	isolateEnv(t)
	_, err := runCLI(t, withArgs(sqliteArgs(t), "new", "extra")...)
	assert.Error(t, err)
}
