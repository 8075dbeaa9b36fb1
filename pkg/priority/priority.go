// Package priority defines the precedence of package contributions and the
// single decision function that picks the winner of a leaf collision.
package priority

import "fmt"

// Priority orders contributions to the same destination path.
// A lower Rank wins. Contributions sharing an Owner are outputs of one
// logical package and never conflict; among them a lower TieBreak wins.
type Priority struct {
	Rank     int
	Owner    string
	TieBreak int
}

func (p Priority) String() string {
	return fmt.Sprintf("%d/%s/%d", p.Rank, p.Owner, p.TieBreak)
}

// Decision is the outcome of comparing an existing entry to an incoming one
type Decision int

const (
	// KeepExisting discards the incoming entry
	KeepExisting Decision = iota
	// Replace removes the existing entry in favour of the incoming one
	Replace
	// Identical means the same contribution is linked again; nothing changes
	Identical
	// Conflict means two owners claim the path at the same rank
	Conflict
)

func (d Decision) String() string {
	switch d {
	case KeepExisting:
		return "keep-existing"
	case Replace:
		return "replace"
	case Identical:
		return "identical"
	case Conflict:
		return "conflict"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Compare decides what happens when incoming is linked at a path already
// held by existing.
func Compare(existing, incoming Priority) Decision {
	switch {
	case existing.Rank < incoming.Rank:
		return KeepExisting
	case existing.Rank > incoming.Rank:
		return Replace
	case existing.Owner != incoming.Owner:
		return Conflict
	case existing.TieBreak < incoming.TieBreak:
		return KeepExisting
	case existing.TieBreak > incoming.TieBreak:
		return Replace
	default:
		return Identical
	}
}

// Less orders priorities for application: by Rank, then TieBreak.
// Owner does not participate; callers break remaining ties themselves.
func Less(a, b Priority) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	return a.TieBreak < b.TieBreak
}
