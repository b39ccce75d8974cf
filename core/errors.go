package core

import "errors"

// ErrVesselNotFound indicates a vessel is not (or no longer) part of the world.
// Host worlds return it, possibly wrapped, from removals of unknown vessels.
var ErrVesselNotFound = errors.New("vessel not found")
