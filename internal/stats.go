package internal

// MediumStats summarizes everything persisted on a medium
type MediumStats struct {
	Identities    int
	Sessions      int
	Messages      int
	UserQuestions int
	// PerIdentity maps storage keys to their session count
	PerIdentity map[string]int
}

// CollectStats walks every identity stored on medium. Collections that cannot be
// decoded count as empty, as they would when loaded by a store.
func CollectStats(medium Medium) (MediumStats, error) {
	keys, err := StoredIdentities(medium)
	if err != nil {
		return MediumStats{}, err
	}

	persistence := NewKVPersistence(medium)
	stats := MediumStats{PerIdentity: make(map[string]int, len(keys))}
	for _, key := range keys {
		state := persistence.Load(key)
		stats.Identities++
		stats.Sessions += len(state.Sessions)
		stats.PerIdentity[key] = len(state.Sessions)
		for _, session := range state.Sessions {
			stats.Messages += len(session.Messages)
			stats.UserQuestions += session.UserMessageCount()
		}
	}
	return stats, nil
}
