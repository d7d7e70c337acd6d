// Package session persists demo sessions so a restarted server picks up the
// list where it was left.
//
// A Store holds opaque snapshots by name with an expiry:
//
//	store := session.NewMemoryStore()
//	// or, to survive restarts
//	store, err := session.NewFileStore(".plop/state")
//
// Snapshots are serialized with Serialize and read back with Deserialize,
// which rejects unknown versions:
//
//	data, _ := session.Serialize(&session.Snapshot{Name: "default", Order: ids})
//	err := store.Save(ctx, "default", data, time.Now().Add(24*time.Hour))
package session
