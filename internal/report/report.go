// Package report defines the duplicate report, the handoff artifact between
// a scan and a later erase or clean, and the store that persists it.
package report

import (
	"path/filepath"
	"time"
)

// SchemaVersion is the sidecar format version this build reads and writes.
// Readers reject any other version instead of guessing at the contents.
const SchemaVersion = 1

// Filename is the sidecar file written into the scanned directory.
const Filename = "duplicates.json"

// Kind labels how the members of a group relate to each other.
type Kind string

const (
	// KindExact groups byte-identical files.
	KindExact Kind = "exact"
	// KindPerceptual groups visually similar images whose bytes differ.
	KindPerceptual Kind = "perceptual"
	// KindMixed groups joined through both relations.
	KindMixed Kind = "mixed"
)

// Member is one file inside a duplicate group, captured at scan time.
type Member struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Digest   string `json:"digest"`
	Original bool   `json:"original"`
}

// Group is a set of two or more files deemed duplicates of one another, with
// exactly one member designated as the original to keep.
type Group struct {
	ID      string   `json:"id"`
	Kind    Kind     `json:"kind"`
	Members []Member `json:"members"`
}

// OriginalIndex returns the index of the kept member, or -1 if the group is
// malformed and carries none.
func (g *Group) OriginalIndex() int {
	for i, m := range g.Members {
		if m.Original {
			return i
		}
	}
	return -1
}

// Duplicates returns the members slated for deletion, everything except the
// original.
func (g *Group) Duplicates() []Member {
	dupes := make([]Member, 0, len(g.Members)-1)
	for _, m := range g.Members {
		if !m.Original {
			dupes = append(dupes, m)
		}
	}
	return dupes
}

// Report is the full result of one scan. It is the only durable state the
// tool keeps between invocations.
type Report struct {
	Version    int       `json:"version"`
	ScannedAt  time.Time `json:"scanned_at"`
	Roots      []string  `json:"roots"`
	TotalFiles int       `json:"total_files"`
	Errors     int       `json:"errors"`
	Groups     []Group   `json:"groups"`
}

// New returns an empty report stamped with the current schema version.
func New(roots []string) *Report {
	return &Report{
		Version:   SchemaVersion,
		ScannedAt: time.Now().UTC(),
		Roots:     roots,
	}
}

// DuplicateCount returns the number of redundant files across all groups,
// excluding one original per group.
func (r *Report) DuplicateCount() int {
	count := 0
	for _, g := range r.Groups {
		if len(g.Members) > 1 {
			count += len(g.Members) - 1
		}
	}
	return count
}

// DuplicateCountByKind returns the redundant file count for groups of the
// given kind.
func (r *Report) DuplicateCountByKind(kind Kind) int {
	count := 0
	for _, g := range r.Groups {
		if g.Kind == kind && len(g.Members) > 1 {
			count += len(g.Members) - 1
		}
	}
	return count
}

// GroupCountByKind returns how many groups carry the given kind.
func (r *Report) GroupCountByKind(kind Kind) int {
	count := 0
	for _, g := range r.Groups {
		if g.Kind == kind {
			count++
		}
	}
	return count
}

// WastedBytes returns the total size of all redundant copies.
func (r *Report) WastedBytes() int64 {
	var total int64
	for _, g := range r.Groups {
		for _, m := range g.Duplicates() {
			total += m.Size
		}
	}
	return total
}

// SidecarPath returns the default sidecar location for a scanned directory.
func SidecarPath(dir string) string {
	return filepath.Join(dir, Filename)
}
