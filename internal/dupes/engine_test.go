package dupes

import (
	"errors"
	"reflect"
	"testing"

	"github.com/substantialcattle5/mde/internal/hasher"
	"github.com/substantialcattle5/mde/internal/report"
)

func rec(path string, size int64, digest string) hasher.FileRecord {
	return hasher.FileRecord{Path: path, Size: size, Digest: digest}
}

func recFP(path string, size int64, digest string, fp uint64) hasher.FileRecord {
	return hasher.FileRecord{Path: path, Size: size, Digest: digest, Fingerprint: fp, HasFingerprint: true}
}

func singleGroup(t *testing.T, rpt *report.Report) report.Group {
	t.Helper()
	if len(rpt.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(rpt.Groups))
	}
	return rpt.Groups[0]
}

func memberPaths(g report.Group) []string {
	paths := make([]string, len(g.Members))
	for i, m := range g.Members {
		paths[i] = m.Path
	}
	return paths
}

func originalPath(t *testing.T, g report.Group) string {
	t.Helper()
	idx := g.OriginalIndex()
	if idx < 0 {
		t.Fatal("group has no original")
	}
	return g.Members[idx].Path
}

func TestGroupExactPair(t *testing.T) {
	// Two byte-identical files, one a renamed copy of the other.
	records := []hasher.FileRecord{
		rec("/pics/copy.jpg", 100, "aaaa"),
		rec("/pics/a.jpg", 100, "aaaa"),
	}

	rpt := Group(records, []string{"/pics"})
	g := singleGroup(t, rpt)

	if g.Kind != report.KindExact {
		t.Errorf("kind = %s, want exact", g.Kind)
	}
	if len(g.Members) != 2 {
		t.Errorf("got %d members, want 2", len(g.Members))
	}
	if got := originalPath(t, g); got != "/pics/a.jpg" {
		t.Errorf("original = %s, want the lexicographically smallest path", got)
	}
	if dupes := g.Duplicates(); len(dupes) != 1 || dupes[0].Path != "/pics/copy.jpg" {
		t.Errorf("unexpected deletion set: %+v", dupes)
	}
}

func TestGroupPerceptualPair(t *testing.T) {
	// An image and its re-save: different bytes, fingerprint distance 3.
	records := []hasher.FileRecord{
		recFP("/pics/orig.png", 100, "aaaa", 0b0000),
		recFP("/pics/resave.jpg", 90, "bbbb", 0b0111),
	}

	rpt := Group(records, nil)
	g := singleGroup(t, rpt)

	if g.Kind != report.KindPerceptual {
		t.Errorf("kind = %s, want perceptual", g.Kind)
	}
	if got := originalPath(t, g); got != "/pics/orig.png" {
		t.Errorf("original = %s, want smallest path", got)
	}
}

func TestGroupDistantFilesNeverGrouped(t *testing.T) {
	// Digests differ and the fingerprints are 15 bits apart.
	records := []hasher.FileRecord{
		recFP("/pics/a.png", 100, "aaaa", 0),
		recFP("/pics/b.png", 100, "bbbb", 0x7fff),
	}

	rpt := Group(records, nil)
	if len(rpt.Groups) != 0 {
		t.Fatalf("got %d groups, want none", len(rpt.Groups))
	}
}

func TestGroupMixedViaTransitiveMerge(t *testing.T) {
	// A and B are byte-identical; C is perceptually close to B (distance 8)
	// but cannot link to A directly. The merge through B pulls all three
	// into one mixed group.
	records := []hasher.FileRecord{
		rec("/pics/a.mp4", 500, "aaaa"),
		recFP("/pics/b.mp4", 500, "aaaa", 0b11111111),
		recFP("/pics/c.png", 90, "cccc", 0),
	}

	rpt := Group(records, nil)
	g := singleGroup(t, rpt)

	if g.Kind != report.KindMixed {
		t.Errorf("kind = %s, want mixed", g.Kind)
	}
	want := []string{"/pics/a.mp4", "/pics/b.mp4", "/pics/c.png"}
	if got := memberPaths(g); !reflect.DeepEqual(got, want) {
		t.Errorf("members = %v, want %v", got, want)
	}
	// Exactness is the stronger signal: the original comes from the exact
	// pair even though c.png sorts after both.
	if got := originalPath(t, g); got != "/pics/a.mp4" {
		t.Errorf("original = %s, want /pics/a.mp4", got)
	}
}

func TestGroupTransitiveChain(t *testing.T) {
	// X-Y and Y-Z are within the threshold; X-Z is not. Connected
	// components still join all three.
	records := []hasher.FileRecord{
		recFP("/pics/x.png", 10, "xxxx", 0),
		recFP("/pics/y.png", 11, "yyyy", 0b111111),
		recFP("/pics/z.png", 12, "zzzz", 0b111111111111),
	}

	rpt := Group(records, nil)
	g := singleGroup(t, rpt)

	if len(g.Members) != 3 {
		t.Fatalf("got %d members, want 3 via chain", len(g.Members))
	}
	if g.Kind != report.KindPerceptual {
		t.Errorf("kind = %s, want perceptual", g.Kind)
	}
}

func TestGroupZeroByteFiles(t *testing.T) {
	empty := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	records := []hasher.FileRecord{
		rec("/a/one", 0, empty),
		rec("/b/two", 0, empty),
		rec("/c/three", 0, empty),
	}

	rpt := Group(records, nil)
	g := singleGroup(t, rpt)
	if g.Kind != report.KindExact || len(g.Members) != 3 {
		t.Errorf("zero-byte files should form one exact group, got %s with %d members", g.Kind, len(g.Members))
	}
}

func TestGroupErrorsExcludedButCounted(t *testing.T) {
	records := []hasher.FileRecord{
		rec("/pics/a.jpg", 100, "aaaa"),
		rec("/pics/b.jpg", 100, "aaaa"),
		{Path: "/pics/bad.jpg", Size: 100, Err: errors.New("permission denied")},
	}

	rpt := Group(records, nil)
	if rpt.Errors != 1 {
		t.Errorf("errors = %d, want 1", rpt.Errors)
	}
	if rpt.TotalFiles != 3 {
		t.Errorf("total files = %d, want 3", rpt.TotalFiles)
	}
	g := singleGroup(t, rpt)
	for _, m := range g.Members {
		if m.Path == "/pics/bad.jpg" {
			t.Error("failed record must not join any group")
		}
	}
}

func TestGroupUniqueFilesAbsent(t *testing.T) {
	records := []hasher.FileRecord{
		rec("/docs/a.pdf", 10, "aaaa"),
		rec("/docs/b.pdf", 20, "bbbb"),
		recFP("/pics/c.png", 30, "cccc", 0xffff00),
	}

	rpt := Group(records, nil)
	if len(rpt.Groups) != 0 {
		t.Errorf("unique files should form no groups, got %d", len(rpt.Groups))
	}
	if rpt.TotalFiles != 3 {
		t.Errorf("total files = %d, want 3", rpt.TotalFiles)
	}
}

func TestGroupIdempotent(t *testing.T) {
	records := []hasher.FileRecord{
		rec("/m/a.jpg", 100, "aaaa"),
		rec("/m/b.jpg", 100, "aaaa"),
		recFP("/m/c.png", 50, "cccc", 0b1),
		recFP("/m/d.png", 55, "dddd", 0b110),
		rec("/m/unique.mov", 999, "eeee"),
	}

	first := Group(records, []string{"/m"})
	second := Group(records, []string{"/m"})

	if len(first.Groups) != len(second.Groups) {
		t.Fatalf("group counts differ: %d vs %d", len(first.Groups), len(second.Groups))
	}
	for i := range first.Groups {
		a, b := first.Groups[i], second.Groups[i]
		if a.Kind != b.Kind {
			t.Errorf("group %d kind differs: %s vs %s", i, a.Kind, b.Kind)
		}
		if !reflect.DeepEqual(a.Members, b.Members) {
			t.Errorf("group %d members differ: %+v vs %+v", i, a.Members, b.Members)
		}
	}
}

func TestGroupSameDigestAlwaysSameGroup(t *testing.T) {
	// Equal digests land in the same group whose kind is exact or mixed,
	// never perceptual.
	records := []hasher.FileRecord{
		recFP("/p/a.png", 40, "aaaa", 0),
		recFP("/p/b.png", 40, "aaaa", 0),
		recFP("/p/c.png", 44, "cccc", 0b101),
	}

	rpt := Group(records, nil)
	g := singleGroup(t, rpt)
	if g.Kind != report.KindMixed {
		t.Errorf("kind = %s, want mixed", g.Kind)
	}
	if len(g.Members) != 3 {
		t.Errorf("got %d members, want 3", len(g.Members))
	}
}
