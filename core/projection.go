package core

import (
	"math"

	"github.com/signalsfoundry/debridement/model"
)

// Projection is a diagnostic snapshot of how close a debris vessel is to
// being cleaned up. Fields not relevant to the vessel's category are zero.
type Projection struct {
	VesselID   string
	VesselName string
	Category   Category
	Eligible   bool

	// Landed category.
	DistanceFactor float64
	Distance       float64
	GeometryKnown  bool

	// Decay category.
	TotalAtmosphereSeconds    float64
	AtmosphereSecondsPerOrbit float64

	// TimeLeft is the mission time remaining until the vessel becomes
	// eligible, in seconds. It is negative once overdue and +Inf when the
	// vessel never accumulates exposure at its current orbit.
	TimeLeft float64
}

// Project computes the diagnostic projection for v. Vessels that fall under
// neither heuristic get CategoryNone.
func (p *Policy) Project(v model.Vessel, body model.CelestialBody) Projection {
	verdict := p.Classify(v, body)
	proj := Projection{
		VesselID:   v.ID,
		VesselName: v.Name,
		Category:   verdict.Category,
		Eligible:   verdict.Eligible,
	}

	switch verdict.Category {
	case CategoryLanded:
		factor, ok := p.ref.DistanceFactor(v, body)
		proj.GeometryKnown = ok
		if !ok {
			proj.TimeLeft = math.Inf(1)
			return proj
		}
		proj.DistanceFactor = factor
		proj.Distance, _ = p.ref.Distance(v, body)
		proj.TimeLeft = p.deadlineForFactor(factor, v.Situation) - v.MissionTime
	case CategoryDecay:
		total := TotalAtmosphereSeconds(body, v)
		proj.TotalAtmosphereSeconds = total
		proj.AtmosphereSecondsPerOrbit = AtmosphereSecondsPerOrbit(body, v.Orbit)
		rate := AtmosphereSecondsPerSecond(body, v.Orbit)
		if rate <= 0 {
			proj.TimeLeft = math.Inf(1)
		} else {
			proj.TimeLeft = (p.cfg.AtmosphereThreshold - total) / rate
		}
	}
	return proj
}
