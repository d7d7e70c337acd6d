package session

import (
	"encoding/json"
	"time"

	"github.com/vango-dev/plop/internal/errors"
)

// Snapshot is the persisted state of a demo session.
type Snapshot struct {
	// Name identifies the session in a Store.
	Name string `json:"name"`

	// Order lists item ids from first to last.
	Order []string `json:"order"`

	// SavedAt is when the snapshot was taken.
	SavedAt time.Time `json:"saved_at"`

	// Version is the serialization format version.
	Version int `json:"version"`
}

// CurrentSerializationVersion is the current version of the serialization format.
// Increment when making breaking changes to the format.
const CurrentSerializationVersion = 1

// Serialize converts a Snapshot to bytes.
func Serialize(s *Snapshot) ([]byte, error) {
	s.Version = CurrentSerializationVersion
	return json.Marshal(s)
}

// Deserialize converts bytes back to a Snapshot. Snapshots from another
// version or naming an item twice are rejected.
func Deserialize(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.New("E151").Wrap(err)
	}
	if s.Version != CurrentSerializationVersion {
		return nil, errors.New("E151").
			WithDetailf("Snapshot version %d, want %d.", s.Version, CurrentSerializationVersion)
	}
	seen := make(map[string]bool, len(s.Order))
	for _, id := range s.Order {
		if seen[id] {
			return nil, errors.New("E151").WithDetailf("Item %q appears twice.", id)
		}
		seen[id] = true
	}
	return &s, nil
}
