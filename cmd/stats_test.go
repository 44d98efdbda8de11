package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/lawchat/internal"
)

func TestStatsCommand(t *testing.T) {
	isolateEnv(t)
	storage := sqliteArgs(t)
	admin := withArgs(storage, "--user", "admin", "--role", "admin")

	_, err := runCLI(t, withArgs(storage, "say", "guest question")...)
	require.NoError(t, err)
	_, err = runCLI(t, withArgs(admin, "say", "admin question")...)
	require.NoError(t, err)
	_, err = runCLI(t, withArgs(admin, "new")...)
	require.NoError(t, err)

	_, err = runCLI(t, withArgs(storage, "stats")...)
	assert.ErrorIs(t, err, internal.ErrAdminRequired)

	out, err := runCLI(t, withArgs(admin, "stats")...)
	require.NoError(t, err)
	assert.Contains(t, lineContaining(out, "Total Queries"), "2")
	assert.Contains(t, lineContaining(out, "Identities"), "2")
	assert.Contains(t, lineContaining(out, "Conversations"), "3")
	assert.Contains(t, lineContaining(out, "Messages"), "5")
	assert.NotContains(t, out, "Total Documents")
}

func TestStatsCommand_Remote(t *testing.T) {
	isolateEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"documents": []map[string]string{{"filename": "a.pdf"}, {"filename": "b.pdf"}, {"filename": "c.pdf"}},
		})
	}))
	defer srv.Close()

	out, err := runCLI(t, withArgs(sqliteArgs(t), "stats", "--remote", "--user", "admin", "--role", "admin", "--api-url", srv.URL)...)
	require.NoError(t, err)
	assert.Contains(t, lineContaining(out, "Total Documents"), "3")
}

func TestDisplayStats(t *testing.T) {
	var buf bytes.Buffer
	displayStats(&buf, internal.MediumStats{
		Identities:    2,
		Sessions:      3,
		Messages:      9,
		UserQuestions: 4,
		PerIdentity:   map[string]int{"guest": 1, "admin": 2},
	}, 12)

	out := buf.String()
	assert.Contains(t, lineContaining(out, "Total Documents"), "12")
	assert.Contains(t, lineContaining(out, "Total Queries"), "4")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("admin")), bytes.Index(buf.Bytes(), []byte("guest")))
}
