package compose

import (
	"path/filepath"
	"sort"

	"github.com/flox/flox-sub009/pkg/priority"
)

// Contribution is one package tree offered to a composition
type Contribution struct {
	// SourceRoot is the absolute path of a realized package tree
	SourceRoot string
	// Included is true for packages the user asked for explicitly.
	// Contributions that are not included are only linked if another
	// package propagates them.
	Included bool
	Priority priority.Priority
}

// Result describes a successful composition
type Result struct {
	// Links is the number of symlinks present in the destination
	Links int
	// Packages lists the explicitly included roots in the order they were linked
	Packages []string
	// Propagated lists the roots linked through propagation, in link order
	Propagated []string
}

// sortContributions returns contributions in application order: rank,
// tie-break, then source path as the last resort.
func sortContributions(contributions []Contribution) []Contribution {
	sorted := make([]Contribution, len(contributions))
	copy(sorted, contributions)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if priority.Less(a.Priority, b.Priority) {
			return true
		}
		if priority.Less(b.Priority, a.Priority) {
			return false
		}
		return a.SourceRoot < b.SourceRoot
	})
	return sorted
}

// normalize fills in the owner of contributions that did not name one
func normalize(c Contribution) Contribution {
	c.SourceRoot = filepath.Clean(c.SourceRoot)
	if c.Priority.Owner == "" {
		c.Priority.Owner = c.SourceRoot
	}
	return c
}
