package cleanup

import "github.com/signalsfoundry/debridement/core"

// PendingDeletion is one vessel queued for removal.
type PendingDeletion struct {
	VesselID string
	Category core.Category
}

// PendingDeletions is the ordered set of vessels one pass decided to remove.
// Only the scanner appends to it, and it can be drained once.
type PendingDeletions struct {
	entries []PendingDeletion
	seen    map[string]struct{}
	drained bool
}

func newPendingDeletions() *PendingDeletions {
	return &PendingDeletions{seen: make(map[string]struct{})}
}

// add appends a vessel unless it is already queued.
func (p *PendingDeletions) add(id string, c core.Category) bool {
	if _, ok := p.seen[id]; ok {
		return false
	}
	p.seen[id] = struct{}{}
	p.entries = append(p.entries, PendingDeletion{VesselID: id, Category: c})
	return true
}

// Len returns the number of queued vessels.
func (p *PendingDeletions) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Entries returns a copy of the queue in enqueue order.
func (p *PendingDeletions) Entries() []PendingDeletion {
	if p == nil {
		return nil
	}
	return append([]PendingDeletion(nil), p.entries...)
}

// Drained reports whether the queue has already been consumed.
func (p *PendingDeletions) Drained() bool {
	return p != nil && p.drained
}
