package kb

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/signalsfoundry/debridement/core"
	"github.com/signalsfoundry/debridement/model"
)

var (
	// ErrBodyExists indicates a celestial body with the same name already exists.
	ErrBodyExists = errors.New("celestial body already exists")
	// ErrBodyNotFound indicates a requested celestial body was not found.
	ErrBodyNotFound = errors.New("celestial body not found")
	// ErrVesselExists indicates a vessel with the same ID already exists.
	ErrVesselExists = errors.New("vessel already exists")
	// ErrVesselNotFound indicates a requested vessel was not found.
	ErrVesselNotFound = core.ErrVesselNotFound
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventVesselAdded EventType = iota
	EventVesselRemoved
)

// Event is emitted to subscribers when a vessel enters or leaves the world.
type Event struct {
	Type   EventType
	Vessel model.Vessel
}

// KnowledgeBase is an in-memory, thread-safe world of celestial bodies and
// vessels. Vessels are listed in insertion order.
type KnowledgeBase struct {
	mu sync.RWMutex

	ready bool

	bodies  map[string]model.CelestialBody
	vessels map[string]*model.Vessel
	order   []string

	// propagators drive vessels whose orbit comes from a TLE.
	propagators map[string]*TLEPropagator

	subs    []subscriber
	nextSub uint64
}

type subscriber struct {
	id uint64
	fn func(Event)
}

// NewKnowledgeBase constructs an empty, not-ready KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		bodies:      make(map[string]model.CelestialBody),
		vessels:     make(map[string]*model.Vessel),
		propagators: make(map[string]*TLEPropagator),
	}
}

// SetReady marks whether the world is loaded and may be queried by cleanup.
func (kb *KnowledgeBase) SetReady(ready bool) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.ready = ready
}

// Ready reports whether a world session is active.
func (kb *KnowledgeBase) Ready() bool {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.ready
}

// AddBody registers a celestial body.
func (kb *KnowledgeBase) AddBody(b model.CelestialBody) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, exists := kb.bodies[b.Name]; exists {
		return fmt.Errorf("%w: %q", ErrBodyExists, b.Name)
	}
	kb.bodies[b.Name] = b
	return nil
}

// Body returns the body with the given name.
func (kb *KnowledgeBase) Body(name string) (model.CelestialBody, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	b, ok := kb.bodies[name]
	return b, ok
}

// AddVessel adds a vessel. Its main body must already be registered.
func (kb *KnowledgeBase) AddVessel(v model.Vessel) error {
	kb.mu.Lock()
	if _, exists := kb.vessels[v.ID]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrVesselExists, v.ID)
	}
	if _, ok := kb.bodies[v.MainBody]; !ok {
		kb.mu.Unlock()
		return fmt.Errorf("%w: %q for vessel %q", ErrBodyNotFound, v.MainBody, v.ID)
	}
	stored := v
	kb.vessels[v.ID] = &stored
	kb.order = append(kb.order, v.ID)
	subs := kb.snapshotSubs()
	kb.mu.Unlock()

	kb.notify(subs, Event{Type: EventVesselAdded, Vessel: v})
	return nil
}

// AttachPropagator drives the vessel's orbit and position from a TLE on every
// call to Advance.
func (kb *KnowledgeBase) AttachPropagator(id string, p *TLEPropagator) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, ok := kb.vessels[id]; !ok {
		return fmt.Errorf("%w: %q", ErrVesselNotFound, id)
	}
	kb.propagators[id] = p
	return nil
}

// GetVessel returns a copy of the vessel with the given ID.
func (kb *KnowledgeBase) GetVessel(id string) (model.Vessel, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	v, ok := kb.vessels[id]
	if !ok {
		return model.Vessel{}, false
	}
	return *v, true
}

// Vessels returns a snapshot of every vessel in insertion order. Mutating
// the KB afterwards does not affect the returned slice.
func (kb *KnowledgeBase) Vessels() []model.Vessel {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]model.Vessel, 0, len(kb.order))
	for _, id := range kb.order {
		res = append(res, *kb.vessels[id])
	}
	return res
}

// UpdateVessel applies fn to the stored vessel under the write lock. The
// vessel ID cannot be changed.
func (kb *KnowledgeBase) UpdateVessel(id string, fn func(*model.Vessel)) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	v, ok := kb.vessels[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrVesselNotFound, id)
	}
	fn(v)
	v.ID = id
	return nil
}

// RemoveVessel permanently deletes a vessel from the world.
func (kb *KnowledgeBase) RemoveVessel(id string) error {
	kb.mu.Lock()
	v, ok := kb.vessels[id]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrVesselNotFound, id)
	}
	delete(kb.vessels, id)
	delete(kb.propagators, id)
	for i, oid := range kb.order {
		if oid == id {
			kb.order = append(kb.order[:i], kb.order[i+1:]...)
			break
		}
	}
	removed := *v
	subs := kb.snapshotSubs()
	kb.mu.Unlock()

	kb.notify(subs, Event{Type: EventVesselRemoved, Vessel: removed})
	return nil
}

// AddResources credits resources to a vessel, merging by resource name.
func (kb *KnowledgeBase) AddResources(id string, res []model.ResourceAmount) error {
	return kb.UpdateVessel(id, func(v *model.Vessel) {
		for _, r := range res {
			merged := false
			for i := range v.Resources {
				if v.Resources[i].Name == r.Name {
					v.Resources[i].Amount += r.Amount
					merged = true
					break
				}
			}
			if !merged {
				v.Resources = append(v.Resources, r)
			}
		}
	})
}

// Advance moves the world forward by dt: every vessel ages by dt and
// TLE-driven vessels are propagated to simTime.
func (kb *KnowledgeBase) Advance(simTime time.Time, dt time.Duration) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	var errs []error
	for _, id := range kb.order {
		v := kb.vessels[id]
		v.MissionTime += dt.Seconds()

		p, ok := kb.propagators[id]
		if !ok {
			continue
		}
		body, ok := kb.bodies[v.MainBody]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q for vessel %q", ErrBodyNotFound, v.MainBody, id))
			continue
		}
		if err := p.UpdateVessel(simTime, body, v); err != nil {
			errs = append(errs, fmt.Errorf("propagate vessel %q: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Clear drops every body and vessel and marks the world not ready, as when a
// world session ends.
func (kb *KnowledgeBase) Clear() {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	kb.ready = false
	kb.bodies = make(map[string]model.CelestialBody)
	kb.vessels = make(map[string]*model.Vessel)
	kb.propagators = make(map[string]*TLEPropagator)
	kb.order = nil
}

// Subscribe registers a callback for KB events. It returns an unsubscribe
// function; calling it more than once is a no-op.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.nextSub++
	id := kb.nextSub
	kb.subs = append(kb.subs, subscriber{id: id, fn: fn})

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		for i, sub := range kb.subs {
			if sub.id == id {
				kb.subs = append(kb.subs[:i], kb.subs[i+1:]...)
				return
			}
		}
	}
}

// snapshotSubs copies the subscriber callbacks. Callers must hold kb.mu.
func (kb *KnowledgeBase) snapshotSubs() []func(Event) {
	subs := make([]func(Event), 0, len(kb.subs))
	for _, sub := range kb.subs {
		subs = append(subs, sub.fn)
	}
	return subs
}

// notify runs subscribers outside the lock to avoid deadlocks.
func (kb *KnowledgeBase) notify(subs []func(Event), e Event) {
	for _, sub := range subs {
		sub(e)
	}
}
