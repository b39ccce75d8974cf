package cleanup

import (
	"context"
	"errors"

	"github.com/signalsfoundry/debridement/core"
	"github.com/signalsfoundry/debridement/internal/logging"
)

// Remover deletes vessels from the host world.
type Remover interface {
	RemoveVessel(id string) error
}

// DrainResult summarises one drain of a PendingDeletions queue.
type DrainResult struct {
	// Removed lists the vessels this drain actually deleted, in order.
	Removed []PendingDeletion
	// AlreadyGone counts queued vessels the world no longer knew about.
	AlreadyGone int
	// Failed counts deletions the world refused for any other reason.
	Failed int
	// Deleted counts successful outcomes (removed or already gone) per category.
	Deleted map[core.Category]int
}

// Executor removes queued vessels one at a time, in enqueue order.
type Executor struct {
	log logging.Logger
}

// NewExecutor returns an executor that logs through log.
func NewExecutor(log logging.Logger) *Executor {
	if log == nil {
		log = logging.Noop()
	}
	return &Executor{log: log}
}

// Drain consumes pending. A vessel that is already gone counts as deleted.
// Any other failure is logged and the rest of the queue is still processed.
// Draining an already drained queue does nothing.
func (e *Executor) Drain(ctx context.Context, world Remover, pending *PendingDeletions) DrainResult {
	res := DrainResult{Deleted: make(map[core.Category]int)}
	if pending == nil || pending.Drained() {
		return res
	}
	pending.drained = true

	// Work on a copy so callbacks fired by the world cannot change what this
	// drain removes.
	for _, entry := range pending.Entries() {
		err := world.RemoveVessel(entry.VesselID)
		switch {
		case err == nil:
			res.Removed = append(res.Removed, entry)
			res.Deleted[entry.Category]++
		case errors.Is(err, ErrVesselNotFound):
			res.AlreadyGone++
			res.Deleted[entry.Category]++
			e.log.Debug(ctx, "queued vessel already removed",
				logging.String("vessel_id", entry.VesselID),
				logging.String("category", entry.Category.String()),
			)
		default:
			res.Failed++
			e.log.Warn(ctx, "failed to remove debris",
				logging.String("vessel_id", entry.VesselID),
				logging.String("category", entry.Category.String()),
				logging.Err(err),
			)
		}
	}
	return res
}
