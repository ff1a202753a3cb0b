package storage

import "surveycore/internal/models"

const SnapshotVersion = 1

// Snapshot is the persisted image of a MemoryStore.
type Snapshot struct {
	Version   int                 `json:"version"`
	Campaigns []*models.Campaign  `json:"campaigns"`
	Tokens    []*models.Token     `json:"tokens"`
	Responses []*models.Response  `json:"responses"`
	Answers   []models.Answer     `json:"answers"`
	Audit     []models.AuditEntry `json:"audit"`
}

// SnapshotterInterface is implemented by stores that live in memory and
// need periodic persistence.
type SnapshotterInterface interface {
	Snapshot() *Snapshot
	Restore(s *Snapshot) error
}

// NewSnapshotter returns the store itself when it keeps state in memory,
// otherwise nil: durable stores need no snapshots.
func NewSnapshotter(store LedgerStoreInterface) SnapshotterInterface {
	if s, ok := store.(SnapshotterInterface); ok {
		return s
	}
	return nil
}
