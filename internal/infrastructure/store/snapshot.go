package store

import (
	"encoding/json"
	"time"
)

// SnapshotThreshold is how many cart events pass between two snapshots.
const SnapshotThreshold = 10

// SnapshotDue reports whether an aggregate at version gets a snapshot.
func SnapshotDue(version int) bool {
	return version > 0 && version%SnapshotThreshold == 0
}

// Snapshot is the serialized state of a cart at Version, so rehydrating a
// session only replays the events after it.
type Snapshot struct {
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"`
	State         json.RawMessage `json:"state"`
	CreatedAt     time.Time       `json:"created_at"`
	// ExpiresAt is set by backends that age out abandoned carts. Zero means
	// the snapshot is kept.
	ExpiresAt time.Time `json:"expires_at"`
}
