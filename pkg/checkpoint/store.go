package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/huddlestats/gridiron/pkg/errors"
)

// Store loads and saves checkpoints for one collection job.
type Store interface {
	// Load returns the prior checkpoint, or an empty one when no prior
	// state exists. A missing file is a first run, not an error.
	Load() (*Checkpoint, error)

	// Save durably persists the checkpoint. A crash mid-save must not
	// corrupt the previously saved state.
	Save(c *Checkpoint) error
}

// FileStore persists checkpoints as YAML at a fixed path. Saves write to a
// temporary file in the same directory and rename into place, so the last
// good checkpoint survives a crash mid-write.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore rooted at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the checkpoint file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the checkpoint file. Missing file yields an empty checkpoint;
// an unreadable or version-mismatched file is a fatal CheckpointError.
func (s *FileStore) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, &errors.CheckpointError{Operation: "load", Path: s.path, Err: err}
	}

	var c Checkpoint
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, &errors.CheckpointError{Operation: "load", Path: s.path, Err: err}
	}

	if c.Version != Version {
		return nil, &errors.CheckpointError{
			Operation: "load",
			Path:      s.path,
			Err:       fmt.Errorf("schema version %d, want %d", c.Version, Version),
		}
	}

	return &c, nil
}

// Save writes the checkpoint atomically. Idempotent: saving the same
// checkpoint twice leaves the same bytes on disk.
func (s *FileStore) Save(c *Checkpoint) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return &errors.CheckpointError{Operation: "save", Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &errors.CheckpointError{Operation: "save", Path: s.path, Err: err}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &errors.CheckpointError{Operation: "save", Path: s.path, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &errors.CheckpointError{Operation: "save", Path: s.path, Err: err}
	}
	return nil
}
