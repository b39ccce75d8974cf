package kb

import (
	"errors"
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/debridement/core"
	"github.com/signalsfoundry/debridement/model"
)

// ErrDegenerateState indicates a propagated state vector that cannot be turned
// into orbital elements.
var ErrDegenerateState = errors.New("degenerate orbital state")

// TLEPropagator uses a TLE and SGP4 to keep a vessel's orbit and position
// current. go-satellite works in kilometres; the world uses metres.
type TLEPropagator struct {
	sat satellite.Satellite
}

// NewTLEPropagator constructs a propagator from TLE lines.
func NewTLEPropagator(line1, line2 string) *TLEPropagator {
	return &TLEPropagator{sat: satellite.TLEToSat(line1, line2, satellite.GravityWGS72)}
}

// UpdateVessel propagates to simTime and rewrites v's position, orbit and
// situation relative to body.
func (p *TLEPropagator) UpdateVessel(simTime time.Time, body model.CelestialBody, v *model.Vessel) error {
	simTime = simTime.UTC()
	year, month, day := simTime.Date()
	hour, min, sec := simTime.Clock()

	posECI, velECI := satellite.Propagate(p.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	const kmToM = 1000.0
	r := core.Vec3{X: posECI.X, Y: posECI.Y, Z: posECI.Z}.Scale(kmToM)
	vel := core.Vec3{X: velECI.X, Y: velECI.Y, Z: velECI.Z}.Scale(kmToM)

	orbit, situation, err := ElementsFromState(r, vel, body)
	if err != nil {
		return err
	}

	v.Position = model.Position{
		X: body.Position.X + posECEF.X*kmToM,
		Y: body.Position.Y + posECEF.Y*kmToM,
		Z: body.Position.Z + posECEF.Z*kmToM,
	}
	v.Orbit = orbit
	v.Situation = situation
	return nil
}

// ElementsFromState derives the orbital elements used by the cleanup
// heuristics from a body-relative position and velocity (metres, m/s).
// Unbound trajectories are reported as escaping with a zero period.
func ElementsFromState(r, vel core.Vec3, body model.CelestialBody) (model.Orbit, model.Situation, error) {
	mu := body.GravParameter
	rMag := r.Norm()
	if mu <= 0 {
		return model.Orbit{}, model.SituationUnknown, fmt.Errorf("%w: body %q has no gravitational parameter", ErrDegenerateState, body.Name)
	}
	if rMag == 0 || math.IsNaN(rMag) || math.IsNaN(vel.Norm()) {
		return model.Orbit{}, model.SituationUnknown, fmt.Errorf("%w: invalid position", ErrDegenerateState)
	}

	h := r.Cross(vel)
	eVec := vel.Cross(h).Scale(1 / mu).Sub(r.Scale(1 / rMag))
	e := eVec.Norm()

	orbit := model.Orbit{
		Eccentricity: e,
		Altitude:     rMag - body.Radius,
	}

	energy := vel.Dot(vel)/2 - mu/rMag
	if energy >= 0 || e >= 1 {
		hMag := h.Norm()
		orbit.PeriapsisAltitude = hMag*hMag/(mu*(1+e)) - body.Radius
		orbit.ApoapsisAltitude = math.Inf(1)
		return orbit, model.SituationEscaping, nil
	}

	a := -mu / (2 * energy)
	orbit.PeriapsisAltitude = a*(1-e) - body.Radius
	orbit.ApoapsisAltitude = a*(1+e) - body.Radius
	orbit.Period = 2 * math.Pi * math.Sqrt(a*a*a/mu)

	situation := model.SituationOrbiting
	if orbit.PeriapsisAltitude < 0 {
		situation = model.SituationSubOrbital
	}
	return orbit, situation, nil
}
