package cleanup

import (
	"context"
	"fmt"

	"github.com/signalsfoundry/debridement/core"
	"github.com/signalsfoundry/debridement/internal/logging"
	"github.com/signalsfoundry/debridement/model"
)

// SalvageResult reports what a manual salvage removed and recovered.
type SalvageResult struct {
	Removed   []string
	Recovered []model.ResourceAmount
	Failed    int
}

// Salvage removes loaded debris within core.MaxSalvageDistance of the
// salvaging vessel and credits it with their resources. Only vessels that
// were actually removed contribute resources.
func (s *Scanner) Salvage(ctx context.Context, world SalvageWorld, salvagerID string) (SalvageResult, error) {
	if world == nil || !world.Ready() {
		return SalvageResult{}, ErrWorldNotReady
	}

	vessels := world.Vessels()
	var salvager model.Vessel
	found := false
	for _, v := range vessels {
		if v.ID == salvagerID {
			salvager, found = v, true
			break
		}
	}
	if !found {
		return SalvageResult{}, fmt.Errorf("salvager %q: %w", salvagerID, ErrVesselNotFound)
	}

	plan := core.PlanSalvage(salvager, vessels, core.MaxSalvageDistance)
	pending := newPendingDeletions()
	for _, id := range plan.Targets {
		pending.add(id, core.CategorySalvage)
	}
	drained := s.executor.Drain(ctx, world, pending)

	removed := make(map[string]struct{}, len(drained.Removed))
	res := SalvageResult{Failed: drained.Failed}
	for _, entry := range drained.Removed {
		removed[entry.VesselID] = struct{}{}
		res.Removed = append(res.Removed, entry.VesselID)
	}

	harvested := make([]model.Vessel, 0, len(removed))
	for _, v := range vessels {
		if _, ok := removed[v.ID]; ok {
			harvested = append(harvested, v)
		}
	}
	res.Recovered = core.PlanSalvage(salvager, harvested, core.MaxSalvageDistance).Recovered

	if len(res.Recovered) > 0 {
		if err := world.AddResources(salvager.ID, res.Recovered); err != nil {
			return res, fmt.Errorf("credit salvage to %q: %w", salvager.ID, err)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordSalvage(len(res.Removed))
	}
	s.log.Info(ctx, "salvaged debris",
		logging.String("salvager_id", salvager.ID),
		logging.Int("count", len(res.Removed)),
		logging.Int("resources", len(res.Recovered)),
	)
	return res, nil
}
