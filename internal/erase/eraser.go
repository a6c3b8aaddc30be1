// Package erase implements the all-or-nothing deletion of a finalized
// duplicate report.
//
// Deletion has no undo, so the irreversible step is deferred: every planned
// file is first staged out of place with an atomic rename, and only once the
// whole batch has proven movable are the staged copies removed for good. A
// failure while staging rolls every rename back, leaving the filesystem
// exactly as it was; should a restore itself fail, the staged copy is kept
// rather than lost and the error says so.
package erase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/substantialcattle5/mde/internal/hasher"
	"github.com/substantialcattle5/mde/internal/report"
)

// stagingPrefix names the holding directory created inside the target
// directory. Keeping it on the same filesystem makes staging a rename, not a
// copy.
const stagingPrefix = ".mde-staging-"

var (
	// ErrStageFailed means a file could not be staged and the batch was
	// rolled back. No file was deleted.
	ErrStageFailed = errors.New("staging failed")
	// ErrCancelled means the operation was interrupted mid-stage and the
	// batch was rolled back.
	ErrCancelled = errors.New("erase cancelled")
)

// FailedPath records a staged file that could not be removed at commit time.
type FailedPath struct {
	Path string
	Err  error
}

// Result describes the outcome of one erase invocation.
type Result struct {
	// Deleted lists original paths whose duplicates were removed.
	Deleted []string
	// Skipped lists planned paths that no longer existed at erase time.
	Skipped []string
	// Changed lists planned paths whose size or digest drifted since the
	// scan; they are never deleted.
	Changed []string
	// Failed lists staged files that could not be removed at commit time.
	// These are already off their original paths.
	Failed []FailedPath
}

// PartialFailure reports whether some, but not all, removals failed past the
// rollback boundary.
func (r *Result) PartialFailure() bool {
	return len(r.Failed) > 0
}

// Eraser removes the redundant members of a duplicate report from one target
// directory. It is single-threaded and sequential; rollback of a serial
// batch is the simple case and renames are cheap.
type Eraser struct {
	dir string

	// OnStage, if set, is called once per staged file. Used for progress.
	OnStage func(path string)
}

// New returns an eraser whose staging area lives inside dir.
func New(dir string) *Eraser {
	return &Eraser{dir: dir}
}

// plannedFile is one validated deletion.
type plannedFile struct {
	original string
	staged   string
}

// Erase validates the report against the current filesystem state, stages
// every surviving planned file, then commits the removals. The returned
// error is non-nil only when nothing was deleted (staging failure,
// cancellation, or setup errors); commit-time failures are reported through
// Result.Failed instead.
func (e *Eraser) Erase(ctx context.Context, rpt *report.Report) (*Result, error) {
	result := &Result{}

	plan := e.buildPlan(rpt, result)
	if len(plan) == 0 {
		return result, nil
	}

	if err := e.sweepStaleStaging(); err != nil {
		return nil, err
	}

	stagingDir := filepath.Join(e.dir, stagingPrefix+uuid.NewString())
	journal, err := beginJournal(stagingDir)
	if err != nil {
		return nil, err
	}

	if err := e.stage(ctx, plan, journal); err != nil {
		return nil, err
	}

	e.commit(plan, journal, result)
	return result, nil
}

// buildPlan collects every non-original member still matching its scan-time
// identity. Missing files are skipped, changed files dropped; only a file
// whose identity is reconfirmed may be deleted.
func (e *Eraser) buildPlan(rpt *report.Report, result *Result) []*plannedFile {
	var plan []*plannedFile
	for _, group := range rpt.Groups {
		for _, member := range group.Duplicates() {
			info, err := os.Stat(member.Path)
			if err != nil {
				result.Skipped = append(result.Skipped, member.Path)
				continue
			}
			if info.Size() != member.Size {
				result.Changed = append(result.Changed, member.Path)
				continue
			}
			digest, err := hasher.DigestFile(member.Path)
			if err != nil || digest != member.Digest {
				result.Changed = append(result.Changed, member.Path)
				continue
			}
			plan = append(plan, &plannedFile{original: member.Path})
		}
	}
	return plan
}

// stage renames every planned file into the staging directory. The first
// failure, or a cancellation between files, aborts the batch and reverses the
// renames performed so far.
func (e *Eraser) stage(ctx context.Context, plan []*plannedFile, journal *journal) error {
	for i, pf := range plan {
		if err := ctx.Err(); err != nil {
			return e.abort(plan[:i], journal, fmt.Errorf("%w: %v", ErrCancelled, err))
		}

		pf.staged = filepath.Join(journal.dir, fmt.Sprintf("%d", i))
		if err := os.Rename(pf.original, pf.staged); err != nil {
			return e.abort(plan[:i], journal, fmt.Errorf("%w: stage %s: %v", ErrStageFailed, pf.original, err))
		}
		journal.record(pf.original, pf.staged)

		if e.OnStage != nil {
			e.OnStage(pf.original)
		}
	}
	journal.setState(stateStaged)
	return nil
}

// abort rolls the batch back and folds any restore failures into the returned
// error, so a caller never sees a clean rollback claimed when staged copies
// were left behind.
func (e *Eraser) abort(staged []*plannedFile, journal *journal, cause error) error {
	unrestored := e.rollback(staged, journal)
	if len(unrestored) == 0 {
		return fmt.Errorf("%w, all files restored", cause)
	}
	paths := make([]string, 0, len(unrestored))
	for _, f := range unrestored {
		paths = append(paths, f.Path)
	}
	return fmt.Errorf("%w, %d files could not be restored and remain staged under %s: %s",
		cause, len(unrestored), journal.dir, strings.Join(paths, ", "))
}

// rollback renames already-staged files back to their original paths. When
// every restore succeeds the staging directory is torn down; a file that
// cannot be renamed back stays in the staging directory, with the journal kept
// beside it for manual recovery, and is reported to the caller.
func (e *Eraser) rollback(staged []*plannedFile, journal *journal) []FailedPath {
	journal.setState(stateRollingBack)
	var unrestored []FailedPath
	for _, pf := range staged {
		if pf.staged == "" {
			continue
		}
		if err := os.Rename(pf.staged, pf.original); err != nil {
			unrestored = append(unrestored, FailedPath{Path: pf.original, Err: err})
		}
	}
	if len(unrestored) > 0 {
		journal.setState(stateRollbackPartial)
		return unrestored
	}
	journal.setState(stateRolledBack)
	_ = os.RemoveAll(journal.dir)
	return nil
}

// commit permanently removes the staged copies. By this point every file has
// proven movable; a removal failure here is past the rollback boundary and is
// reported per path instead of unwinding the batch.
func (e *Eraser) commit(plan []*plannedFile, journal *journal, result *Result) {
	journal.setState(stateCommitting)
	for _, pf := range plan {
		if err := os.Remove(pf.staged); err != nil {
			result.Failed = append(result.Failed, FailedPath{Path: pf.original, Err: err})
			continue
		}
		result.Deleted = append(result.Deleted, pf.original)
	}

	if len(result.Failed) == 0 {
		_ = os.RemoveAll(journal.dir)
		return
	}
	// Keep the staging directory and journal around so the stuck copies
	// can be recovered by hand.
	journal.setState(stateCommitPartial)
}

// sweepStaleStaging removes holding directories left behind by a previous
// crashed run before a new batch begins.
func (e *Eraser) sweepStaleStaging() error {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return fmt.Errorf("read target directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), stagingPrefix) {
			if err := os.RemoveAll(filepath.Join(e.dir, entry.Name())); err != nil {
				return fmt.Errorf("sweep stale staging %s: %w", entry.Name(), err)
			}
		}
	}
	return nil
}
