package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectStats_Empty(t *testing.T) {
	stats, err := CollectStats(NewMemoryMedium())
	require.NoError(t, err)
	assert.Zero(t, stats.Identities)
	assert.Zero(t, stats.Sessions)
	assert.Empty(t, stats.PerIdentity)
}

func TestCollectStats(t *testing.T) {
	admin, medium := NewTestStore(Identity{ID: "admin", Role: AccountAdmin})
	first, err := admin.CreateNewChat()
	require.NoError(t, err)
	require.NoError(t, admin.AddMessage(first, NewUserMessage("Question one")))
	require.NoError(t, admin.AddMessage(first, NewAssistantMessage("Answer one")))
	second, err := admin.CreateNewChat()
	require.NoError(t, err)
	require.NoError(t, admin.AddMessage(second, NewUserMessage("Question two")))

	guest := NewSessionStore(NewKVPersistence(medium), GuestIdentity(), StoreOptions{NewID: NewTestIDs("g")})
	_, err = guest.CreateNewChat()
	require.NoError(t, err)

	// undecodable collections count as empty
	require.NoError(t, medium.Set(SessionsKey("broken"), "{not json"))

	stats, err := CollectStats(medium)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Identities)
	assert.Equal(t, 3, stats.Sessions)
	// three welcome messages plus three added
	assert.Equal(t, 6, stats.Messages)
	assert.Equal(t, 2, stats.UserQuestions)
	assert.Equal(t, map[string]int{"admin": 2, "broken": 0, GuestToken: 1}, stats.PerIdentity)
}

type failingKeysMedium struct {
	*MemoryMedium
}

func (f *failingKeysMedium) Keys(string) ([]string, error) {
	return nil, errors.New("listing failed")
}

func TestCollectStats_ReadError(t *testing.T) {
	_, err := CollectStats(&failingKeysMedium{MemoryMedium: NewMemoryMedium()})
	assert.Error(t, err)
}
