package core

import (
	"math"

	"github.com/signalsfoundry/debridement/model"
)

// BodyRegistry looks up celestial bodies by name.
type BodyRegistry interface {
	Body(name string) (model.CelestialBody, bool)
}

// ReferencePoint caches the unit vector from the home body's centre to a fixed
// surface site. It resolves once, the first time the home body is available,
// and stays fixed until Reset is called for a new world session.
//
// Distances are measured against this single direction no matter which body
// a vessel belongs to. For vessels of other bodies the result is only an
// approximation.
type ReferencePoint struct {
	BodyName  string
	Latitude  float64
	Longitude float64

	resolved bool
	unit     Vec3
}

// NewReferencePoint returns an unresolved reference point.
func NewReferencePoint(body string, lat, lon float64) *ReferencePoint {
	return &ReferencePoint{BodyName: body, Latitude: lat, Longitude: lon}
}

// Resolved reports whether the cached direction is available.
func (r *ReferencePoint) Resolved() bool {
	return r.resolved
}

// Resolve seeds the cached direction from the registry. It is a no-op once
// resolved and returns false while the home body is missing.
func (r *ReferencePoint) Resolve(reg BodyRegistry) bool {
	if r.resolved {
		return true
	}
	if reg == nil {
		return false
	}
	body, ok := reg.Body(r.BodyName)
	if !ok {
		return false
	}
	site := VecFromPosition(body.SurfacePosition(r.Latitude, r.Longitude, 0))
	unit, ok := site.Sub(VecFromPosition(body.Position)).Normalized()
	if !ok {
		return false
	}
	r.unit = unit
	r.resolved = true
	return true
}

// Reset discards the cached direction.
func (r *ReferencePoint) Reset() {
	r.resolved = false
	r.unit = Vec3{}
}

// DistanceFactor is the great-circle angle between the vessel's direction from
// body's centre and the reference direction, divided by pi. It is 0 at the
// reference site and 1 at its antipode.
func (r *ReferencePoint) DistanceFactor(v model.Vessel, body model.CelestialBody) (float64, bool) {
	if !r.resolved {
		return 0, false
	}
	dir, ok := VecFromPosition(v.Position).Sub(VecFromPosition(body.Position)).Normalized()
	if !ok {
		return 0, false
	}
	return angleBetweenUnit(dir, r.unit) / math.Pi, true
}

// Distance is the arc length from the reference site measured along a great
// circle of the vessel's own main body.
func (r *ReferencePoint) Distance(v model.Vessel, body model.CelestialBody) (float64, bool) {
	factor, ok := r.DistanceFactor(v, body)
	if !ok {
		return 0, false
	}
	return factor * math.Pi * body.Radius, true
}
