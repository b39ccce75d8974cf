package core

import (
	"math"

	"github.com/signalsfoundry/debridement/model"
)

// AtmosphericDensity returns the local density at the given altitude above
// body using an exponential falloff. It is zero for bodies without an
// atmosphere and at or above the top of the atmosphere. Negative altitudes
// are accepted and simply yield a density above the sea-level multiplier.
func AtmosphericDensity(body model.CelestialBody, altitude float64) float64 {
	if !body.HasAtmosphere || altitude >= body.MaxAtmosphereAltitude {
		return 0
	}
	scaleHeight := body.AtmosphereScaleHeightKm * 1000
	return body.AtmosphereMultiplier * math.Exp(-altitude/scaleHeight)
}

// AtmosphereSecondsPerOrbit estimates density-weighted exposure over one full
// orbit.
//
// This is a two-point blend of the densities at periapsis and apoapsis, not an
// integral over true anomaly. The periapsis weight is 1 - sqrt(e), so circular
// orbits are dominated by periapsis and highly eccentric ones by apoapsis.
func AtmosphereSecondsPerOrbit(body model.CelestialBody, orbit model.Orbit) float64 {
	if !validPeriod(orbit.Period) {
		return 0
	}
	peDensity := AtmosphericDensity(body, orbit.PeriapsisAltitude)
	apDensity := AtmosphericDensity(body, orbit.ApoapsisAltitude)

	peWeight := 1.0 - math.Sqrt(orbit.Eccentricity)
	avg := peDensity*peWeight + apDensity*(1.0-peWeight)
	return avg * orbit.Period
}

// AtmosphereSecondsPerSecond is the average exposure rate along the orbit.
func AtmosphereSecondsPerSecond(body model.CelestialBody, orbit model.Orbit) float64 {
	if !validPeriod(orbit.Period) {
		return 0
	}
	return AtmosphereSecondsPerOrbit(body, orbit) / orbit.Period
}

// TotalAtmosphereSeconds extrapolates the per-orbit exposure linearly over the
// number of orbits completed since the vessel was created. A zero or undefined
// period yields zero exposure.
func TotalAtmosphereSeconds(body model.CelestialBody, v model.Vessel) float64 {
	if !validPeriod(v.Orbit.Period) {
		return 0
	}
	orbits := v.MissionTime / v.Orbit.Period
	return AtmosphereSecondsPerOrbit(body, v.Orbit) * orbits
}

func validPeriod(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
