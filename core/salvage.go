package core

import (
	"sort"

	"github.com/signalsfoundry/debridement/model"
)

// MaxSalvageDistance is the reach, in metres, of a manual salvage.
const MaxSalvageDistance = 50.0

// SalvagePlan lists the debris a salvaging vessel may harvest and the
// resources it would recover.
type SalvagePlan struct {
	Targets   []string
	Recovered []model.ResourceAmount
}

// PlanSalvage selects loaded debris on the salvager's body within maxDist of
// it. Unlike automatic cleanup, salvage only applies to loaded vessels, since
// the operator is physically next to them. Only a landed or splashed salvager
// can harvest. Non-positive maxDist falls back to MaxSalvageDistance.
func PlanSalvage(salvager model.Vessel, vessels []model.Vessel, maxDist float64) SalvagePlan {
	if !salvager.Situation.LandedOrSplashed() {
		return SalvagePlan{}
	}
	if maxDist <= 0 {
		maxDist = MaxSalvageDistance
	}
	origin := VecFromPosition(salvager.Position)

	totals := make(map[string]float64)
	var plan SalvagePlan
	for _, v := range vessels {
		if v.ID == salvager.ID || !v.Loaded || !v.IsDebris() || v.MainBody != salvager.MainBody {
			continue
		}
		if VecFromPosition(v.Position).DistanceTo(origin) > maxDist {
			continue
		}
		plan.Targets = append(plan.Targets, v.ID)
		for _, r := range v.Resources {
			if r.Amount > 0 {
				totals[r.Name] += r.Amount
			}
		}
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		plan.Recovered = append(plan.Recovered, model.ResourceAmount{Name: name, Amount: totals[name]})
	}
	return plan
}
