package erase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type state string

const (
	statePending         state = "pending"
	stateStaged          state = "staged"
	stateRollingBack     state = "rolling_back"
	stateRolledBack      state = "rolled_back"
	stateRollbackPartial state = "rollback_partial"
	stateCommitting      state = "committing"
	stateCommitPartial   state = "commit_partial"
)

// journalEntry maps one original path to its staged location.
type journalEntry struct {
	OriginalPath string `json:"originalPath"`
	StagedPath   string `json:"stagedPath"`
}

// journal records the original-path to staged-path mapping of a batch inside
// the staging directory itself. A crash mid-erase leaves the journal on disk
// next to the staged files, so the halted batch can be inspected or restored
// by hand.
type journal struct {
	Version   int            `json:"version"`
	StartedAt time.Time      `json:"startedAt"`
	State     state          `json:"state"`
	Entries   []journalEntry `json:"entries"`

	dir string
}

// beginJournal creates the staging directory and persists the initial
// journal.
func beginJournal(dir string) (*journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	j := &journal{
		Version:   1,
		StartedAt: time.Now().UTC(),
		State:     statePending,
		dir:       dir,
	}
	if err := j.persist(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *journal) record(original, staged string) {
	j.Entries = append(j.Entries, journalEntry{OriginalPath: original, StagedPath: staged})
	_ = j.persist()
}

func (j *journal) setState(s state) {
	j.State = s
	_ = j.persist()
}

// persist writes the journal through a temporary file and a rename so a
// crash never leaves a truncated journal behind.
func (j *journal) persist() error {
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	tmp := filepath.Join(j.dir, "journal.json.tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(j.dir, "journal.json"))
}
