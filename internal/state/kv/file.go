package kv

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/logging"
)

// errCorrupt is the cause of read errors for files that are not valid JSON.
var errCorrupt = errors.New("state file is not valid JSON")

// File is a store kept as one JSON file. Every Set rewrites the file through
// a temporary file and a rename. Set replaces a corrupt file, keeping the old
// contents next to it with a .bad suffix.
type File struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

var _ Store = (*File)(nil)

// NewFile creates a file store at path. The parent directory is created if
// needed; the file itself is created on the first Set.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to make state directory")
	}

	return &File{path: path, now: time.Now}, nil
}

func (f *File) read() (map[string]entry, error) {
	entries := map[string]entry{}

	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, errors.Wrap(err, "failed to read state file")
	}

	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, errors.Wrapf(errCorrupt, "failed to parse state file: %v", err)
	}

	return entries, nil
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return "", err
	}

	e, ok := entries[key]
	if !ok || e.expired(f.now()) {
		return "", nil
	}
	return e.Value, nil
}

func (f *File) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		if errors.Cause(err) != errCorrupt {
			return err
		}

		logging.Warn("Replacing corrupt state file %s: %v", f.path, err)

		if err := os.Rename(f.path, f.path+".bad"); err != nil {
			return errors.Wrap(err, "failed to move corrupt state file")
		}

		entries = map[string]entry{}
	}

	now := f.now()
	for k, e := range entries {
		if e.expired(now) {
			delete(entries, k)
		}
	}
	entries[key] = makeEntry(value, ttl, now)

	b, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "failed to marshal state")
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return errors.Wrap(err, "failed to write state file")
	}

	return errors.Wrap(os.Rename(tmp, f.path), "failed to replace state file")
}

func (f *File) Close() error { return nil }
