// Package cleanup scans the host world for debris, queues eligible vessels and
// removes them once the scan is complete.
package cleanup

import (
	"errors"

	"github.com/signalsfoundry/debridement/core"
	"github.com/signalsfoundry/debridement/model"
)

// ErrWorldNotReady indicates the host world has no active session.
var ErrWorldNotReady = errors.New("world not ready")

// ErrVesselNotFound is re-exported so callers can depend on cleanup.* when
// implementing World.
var ErrVesselNotFound = core.ErrVesselNotFound

// World is the host simulation as seen by the cleanup engine.
type World interface {
	core.BodyRegistry

	// Ready reports whether a world session is loaded and queryable.
	Ready() bool
	// Vessels returns a snapshot of every vessel known to the world.
	Vessels() []model.Vessel
	// RemoveVessel permanently deletes a vessel.
	RemoveVessel(id string) error
}

// SalvageWorld is a World that can credit resources to a vessel.
type SalvageWorld interface {
	World
	AddResources(vesselID string, res []model.ResourceAmount) error
}
