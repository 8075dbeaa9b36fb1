package compose

import "github.com/flox/flox-sub009/pkg/priority"

// ledger records which priority holds each linked destination path.
// Keys are slash-separated paths relative to the destination root.
type ledger struct {
	entries map[string]priority.Priority
	links   int
}

func newLedger() *ledger {
	return &ledger{entries: make(map[string]priority.Priority)}
}

func (l *ledger) lookup(rel string) (priority.Priority, bool) {
	p, ok := l.entries[rel]
	return p, ok
}

// linked records a symlink created at rel
func (l *ledger) linked(rel string, p priority.Priority) {
	l.entries[rel] = p
	l.links++
}

// unlinked records the removal of the symlink at rel
func (l *ledger) unlinked(rel string) {
	delete(l.entries, rel)
	l.links--
}
