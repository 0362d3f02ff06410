package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/mindmap/pkg/graph"
)

// SnapshotDiff describes what changed between two loads of a source.
type SnapshotDiff struct {
	// Added contains conversation IDs present only in the newer snapshot
	Added []int64
	// Removed contains conversation IDs present only in the older snapshot
	Removed []int64
	// Changed contains conversations whose title or bookmark changed
	Changed []int64
	// LinksAdded and LinksRemoved count undirected connections
	LinksAdded   int
	LinksRemoved int
}

// HasChanges returns true if the snapshots differ.
func (d SnapshotDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0 ||
		d.LinksAdded > 0 || d.LinksRemoved > 0
}

// Summary returns a one-line human-readable summary.
func (d SnapshotDiff) Summary() string {
	if !d.HasChanges() {
		return "no changes"
	}
	var parts []string
	if n := len(d.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := len(d.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}
	if n := len(d.Changed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", n))
	}
	if d.LinksAdded > 0 || d.LinksRemoved > 0 {
		parts = append(parts, fmt.Sprintf("links +%d/-%d", d.LinksAdded, d.LinksRemoved))
	}
	return strings.Join(parts, ", ")
}

// Diff compares two snapshots. Links are compared without direction.
func Diff(before, after Snapshot) SnapshotDiff {
	var d SnapshotDiff

	old := make(map[int64]int, len(before.Conversations))
	for i, c := range before.Conversations {
		old[c.ID] = i
	}
	seen := make(map[int64]bool, len(after.Conversations))
	for _, c := range after.Conversations {
		seen[c.ID] = true
		i, ok := old[c.ID]
		if !ok {
			d.Added = append(d.Added, c.ID)
			continue
		}
		prev := before.Conversations[i]
		if prev.Title != c.Title || prev.Bookmarked != c.Bookmarked {
			d.Changed = append(d.Changed, c.ID)
		}
	}
	for _, c := range before.Conversations {
		if !seen[c.ID] {
			d.Removed = append(d.Removed, c.ID)
		}
	}

	linkSet := func(s Snapshot) map[graph.EdgeKey]struct{} {
		m := make(map[graph.EdgeKey]struct{}, len(s.Links))
		for _, l := range s.Links {
			m[graph.NewEdgeKey(l.SourceID, l.TargetID)] = struct{}{}
		}
		return m
	}
	a, b := linkSet(before), linkSet(after)
	for k := range b {
		if _, ok := a[k]; !ok {
			d.LinksAdded++
		}
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			d.LinksRemoved++
		}
	}

	for _, ids := range [][]int64{d.Added, d.Removed, d.Changed} {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return d
}
