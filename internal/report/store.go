package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound means no sidecar exists at the location. Callers treat
	// this as "nothing to erase", not as corrupt state.
	ErrNotFound = errors.New("report not found")
	// ErrMalformed means a sidecar exists but cannot be parsed.
	ErrMalformed = errors.New("report malformed")
	// ErrVersion means the sidecar was written by an incompatible version.
	ErrVersion = errors.New("report schema version mismatch")
)

// Store persists reports. All sidecar access goes through this interface so
// tests can substitute an in-memory implementation.
type Store interface {
	Save(path string, r *Report) error
	Load(path string) (*Report, error)
	Exists(path string) bool
	Delete(path string) error
}

// FileStore keeps reports as JSON sidecar files on disk.
type FileStore struct{}

// NewFileStore returns the on-disk store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Save writes the report as indented JSON. The write goes to a temporary
// file first and is promoted with a rename so readers never observe a
// half-written sidecar.
func (s *FileStore) Save(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("promote report: %w", err)
	}
	return nil
}

// Load reads and validates a sidecar. It fails with ErrNotFound, ErrMalformed
// or ErrVersion so callers can distinguish "nothing to erase" from corrupt
// state.
func (s *FileStore) Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read report: %w", err)
	}
	return decode(data)
}

// Exists reports whether a sidecar is present at the location.
func (s *FileStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Delete removes the sidecar. Deleting an absent sidecar is not an error.
func (s *FileStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

// decode parses sidecar bytes, checking the version tag before trusting the
// rest of the document.
func decode(data []byte) (*Report, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if probe.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: got version %d, want %d", ErrVersion, probe.Version, SchemaVersion)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i := range r.Groups {
		if err := validateGroup(&r.Groups[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return &r, nil
}

// validateGroup rejects groups an erase could misread. A group without
// exactly one designated original would put the keeper itself on the deletion
// plan, so such a report must never reach the eraser.
func validateGroup(g *Group) error {
	if len(g.Members) < 2 {
		return fmt.Errorf("group %s has %d members, want at least 2", g.ID, len(g.Members))
	}
	originals := 0
	for _, m := range g.Members {
		if m.Original {
			originals++
		}
	}
	if originals != 1 {
		return fmt.Errorf("group %s designates %d originals, want exactly 1", g.ID, originals)
	}
	return nil
}

// MemStore keeps reports in memory, keyed by path. It exists for tests.
type MemStore struct {
	reports map[string][]byte
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{reports: make(map[string][]byte)}
}

func (s *MemStore) Save(path string, r *Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	s.reports[filepath.Clean(path)] = data
	return nil
}

func (s *MemStore) Load(path string) (*Report, error) {
	data, ok := s.reports[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return decode(data)
}

func (s *MemStore) Exists(path string) bool {
	_, ok := s.reports[filepath.Clean(path)]
	return ok
}

func (s *MemStore) Delete(path string) error {
	delete(s.reports, filepath.Clean(path))
	return nil
}
