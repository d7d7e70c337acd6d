package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/vango-dev/plop/internal/errors"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// FileStore keeps one file per snapshot in a directory, so snapshots
// survive a process restart. Expired files are removed lazily on Load.
type FileStore struct {
	dir string
	now func() time.Time

	mu     sync.Mutex
	closed bool
}

type fileEnvelope struct {
	ExpiresAt time.Time `json:"expires_at"`
	Data      []byte    `json:"data"`
}

// NewFileStore creates dir if needed and returns a store writing into it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New("E150").Wrap(err).WithDetailf("Cannot create %s.", dir)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory snapshots are written to.
func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", errors.New("E150").
			WithDetailf("Session name %q must be 1-64 letters, digits, '-' or '_'.", name)
	}
	return filepath.Join(f.dir, name+".json"), nil
}

// Save writes the snapshot to a temporary file and renames it into place.
func (f *FileStore) Save(ctx context.Context, name string, data []byte, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrStoreClosed{}
	}
	path, err := f.path(name)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(fileEnvelope{ExpiresAt: expiresAt, Data: data})
	if err != nil {
		return errors.New("E150").Wrap(err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.New("E150").Wrap(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.New("E150").Wrap(err)
	}
	return nil
}

// Load reads the snapshot saved under name.
func (f *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrStoreClosed{}
	}
	env, path, err := f.read(name)
	if err != nil || env == nil {
		return nil, err
	}
	if f.now().After(env.ExpiresAt) {
		os.Remove(path)
		return nil, nil
	}
	return env.Data, nil
}

func (f *FileStore) read(name string) (*fileEnvelope, string, error) {
	path, err := f.path(name)
	if err != nil {
		return nil, "", err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, path, nil
	}
	if err != nil {
		return nil, path, errors.New("E150").Wrap(err)
	}
	var env fileEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, path, errors.New("E151").Wrap(err).WithDetailf("Cannot parse %s.", path)
	}
	return &env, path, nil
}

// Delete removes the snapshot file.
func (f *FileStore) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrStoreClosed{}
	}
	path, err := f.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New("E150").Wrap(err)
	}
	return nil
}

// Touch rewrites the snapshot with a new expiry.
func (f *FileStore) Touch(ctx context.Context, name string, expiresAt time.Time) error {
	f.mu.Lock()
	env, _, err := f.read(name)
	closed := f.closed
	f.mu.Unlock()

	if closed {
		return ErrStoreClosed{}
	}
	if err != nil || env == nil {
		return err
	}
	return f.Save(ctx, name, env.Data, expiresAt)
}

// Close marks the store closed. Files are left in place.
func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
