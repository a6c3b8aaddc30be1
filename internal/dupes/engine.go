// Package dupes implements the duplicate grouping engine: a two-relation
// classification that partitions scanned files into exact, perceptual and
// mixed duplicate groups.
package dupes

import (
	"sort"

	"github.com/google/uuid"

	"github.com/substantialcattle5/mde/internal/hasher"
	"github.com/substantialcattle5/mde/internal/phash"
	"github.com/substantialcattle5/mde/internal/report"
)

// Group classifies a complete record set into a duplicate report.
//
// Pass 1 buckets records by size, then by digest; digest buckets of two or
// more are exact duplicates. Pass 2 links fingerprinted records whose Hamming
// distance is within the similarity threshold; connected components form the
// perceptual relation, so a chain of near-matches may join files whose
// endpoints exceed the threshold. Pass 3 is free: both relations share one
// union-find, so a component touched by both comes out as a mixed group.
//
// Records that failed to hash are excluded from grouping and counted in the
// report's error counter. Apart from group IDs, the output is a pure function
// of the input: membership, kind and original selection are deterministic.
func Group(records []hasher.FileRecord, roots []string) *report.Report {
	rpt := report.New(roots)
	rpt.TotalFiles = len(records)

	valid := make([]int, 0, len(records))
	for i, rec := range records {
		if rec.Err != nil {
			rpt.Errors++
			continue
		}
		valid = append(valid, i)
	}

	uf := newUnionFind(len(records))

	// Pass 1: exact duplicates. Size is a cheap lossless pre-filter; files
	// of different size cannot be byte-identical.
	bySize := make(map[int64][]int)
	for _, i := range valid {
		bySize[records[i].Size] = append(bySize[records[i].Size], i)
	}
	for _, bucket := range bySize {
		if len(bucket) < 2 {
			continue
		}
		byDigest := make(map[string][]int)
		for _, i := range bucket {
			byDigest[records[i].Digest] = append(byDigest[records[i].Digest], i)
		}
		for _, twins := range byDigest {
			for k := 1; k < len(twins); k++ {
				uf.union(twins[0], twins[k])
			}
		}
	}

	// Pass 2: perceptual duplicates. Every fingerprinted file participates,
	// including members of exact groups, so an exact pair can still be
	// pulled into a larger perceptual cluster.
	printed := make([]int, 0, len(valid))
	for _, i := range valid {
		if records[i].HasFingerprint {
			printed = append(printed, i)
		}
	}
	for a := 0; a < len(printed); a++ {
		for b := a + 1; b < len(printed); b++ {
			i, j := printed[a], printed[b]
			if phash.Similar(records[i].Fingerprint, records[j].Fingerprint) {
				uf.union(i, j)
			}
		}
	}

	// Collect components of two or more members.
	components := make(map[int][]int)
	for _, i := range valid {
		root := uf.find(i)
		components[root] = append(components[root], i)
	}

	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		rpt.Groups = append(rpt.Groups, buildGroup(records, members))
	}

	// Deterministic group order for stable reports and stable summaries.
	sort.Slice(rpt.Groups, func(i, j int) bool {
		return rpt.Groups[i].Members[0].Path < rpt.Groups[j].Members[0].Path
	})

	return rpt
}

// buildGroup assembles one report group from a connected component.
func buildGroup(records []hasher.FileRecord, members []int) report.Group {
	sort.Slice(members, func(a, b int) bool {
		return records[members[a]].Path < records[members[b]].Path
	})

	group := report.Group{
		ID:   uuid.NewString(),
		Kind: classify(records, members),
	}
	for _, i := range members {
		group.Members = append(group.Members, report.Member{
			Path:   records[i].Path,
			Size:   records[i].Size,
			Digest: records[i].Digest,
		})
	}

	group.Members[originalIndex(records, members)].Original = true
	return group
}

// classify recomputes the kind of a merged component: exact when every member
// shares one digest, perceptual when no two share a digest, mixed otherwise.
func classify(records []hasher.FileRecord, members []int) report.Kind {
	digests := make(map[string]int)
	for _, i := range members {
		digests[records[i].Digest]++
	}
	switch {
	case len(digests) == 1:
		return report.KindExact
	case len(digests) == len(members):
		return report.KindPerceptual
	default:
		return report.KindMixed
	}
}

// originalIndex picks the kept member. Exactness is the stronger signal, so
// in a mixed component the original comes from the members that have an exact
// twin; the tie-break within candidates is the lexicographically smallest
// path. Members arrive sorted by path, so the first qualifying one wins.
func originalIndex(records []hasher.FileRecord, members []int) int {
	digests := make(map[string]int)
	for _, i := range members {
		digests[records[i].Digest]++
	}
	for pos, i := range members {
		if digests[records[i].Digest] > 1 {
			return pos
		}
	}
	return 0
}
