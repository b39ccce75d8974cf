package cleanup

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/debridement/core"
	"github.com/signalsfoundry/debridement/internal/logging"
	"github.com/signalsfoundry/debridement/model"
)

// fakeWorld is an in-memory World. When keep is set, RemoveVessel records the
// call but leaves the vessel in place.
type fakeWorld struct {
	mu        sync.Mutex
	ready     bool
	keep      bool
	bodies    map[string]model.CelestialBody
	vessels   []model.Vessel
	removeErr map[string]error
	removed   []string
	credited  map[string][]model.ResourceAmount
	onRemove  func(id string)
}

func newFakeWorld(bodies ...model.CelestialBody) *fakeWorld {
	w := &fakeWorld{
		ready:     true,
		bodies:    make(map[string]model.CelestialBody),
		removeErr: make(map[string]error),
		credited:  make(map[string][]model.ResourceAmount),
	}
	for _, b := range bodies {
		w.bodies[b.Name] = b
	}
	return w
}

func (w *fakeWorld) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready
}

func (w *fakeWorld) Body(name string) (model.CelestialBody, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[name]
	return b, ok
}

func (w *fakeWorld) Vessels() []model.Vessel {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.Vessel(nil), w.vessels...)
}

func (w *fakeWorld) add(vs ...model.Vessel) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.vessels = append(w.vessels, vs...)
}

func (w *fakeWorld) RemoveVessel(id string) error {
	w.mu.Lock()
	if err, ok := w.removeErr[id]; ok {
		w.mu.Unlock()
		return err
	}
	idx := -1
	for i, v := range w.vessels {
		if v.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return fmt.Errorf("remove %q: %w", id, ErrVesselNotFound)
	}
	w.removed = append(w.removed, id)
	if !w.keep {
		w.vessels = append(w.vessels[:idx], w.vessels[idx+1:]...)
	}
	cb := w.onRemove
	w.mu.Unlock()

	if cb != nil {
		cb(id)
	}
	return nil
}

func (w *fakeWorld) AddResources(id string, res []model.ResourceAmount) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.credited[id] = append(w.credited[id], res...)
	return nil
}

func (w *fakeWorld) removedIDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.removed...)
}

// recordingMetrics captures what the scanner reports.
type recordingMetrics struct {
	mu       sync.Mutex
	passes   int
	skipped  int
	deleted  map[string]int
	triggers map[string][]bool
	salvaged int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{deleted: map[string]int{}, triggers: map[string][]bool{}}
}

func (m *recordingMetrics) RecordPass(_, deleted map[string]int, _, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passes++
	for k, v := range deleted {
		m.deleted[k] += v
	}
}

func (m *recordingMetrics) RecordSkippedPass() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped++
}

func (m *recordingMetrics) RecordTrigger(action string, accepted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers[action] = append(m.triggers[action], accepted)
}

func (m *recordingMetrics) RecordSalvage(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.salvaged += n
}

func kerbin() model.CelestialBody {
	return model.CelestialBody{
		Name:                    "Kerbin",
		HasAtmosphere:           true,
		AtmosphereScaleHeightKm: 5,
		AtmosphereMultiplier:    1,
		MaxAtmosphereAltitude:   70000,
		Radius:                  600000,
		GravParameter:           3.5316e12,
	}
}

// newTestScanner builds a scanner whose home site is the +X axis of an
// origin-centred Kerbin.
func newTestScanner(t *testing.T, opts ...ScannerOption) *Scanner {
	t.Helper()
	cfg := core.DefaultPolicyConfig()
	cfg.HomeLatitude = 0
	cfg.HomeLongitude = 0
	policy, err := core.NewPolicy(cfg)
	require.NoError(t, err)
	return NewScanner(policy, logging.Noop(), opts...)
}

// landed returns unattended landed debris at the given distance factor from
// the home site.
func landed(id string, factor, missionTime float64) model.Vessel {
	body := kerbin()
	return model.Vessel{
		ID:          id,
		Name:        id,
		Situation:   model.SituationLanded,
		MainBody:    body.Name,
		MissionTime: missionTime,
		Position:    body.SurfacePosition(0, factor*180, 0),
	}
}

// orbiting returns unattended debris on a circular 30 km orbit. Against
// kerbin() its exposure is about 0.00248 per second of mission time.
func orbiting(id string, missionTime float64) model.Vessel {
	const alt = 30000.0
	return model.Vessel{
		ID:          id,
		Name:        id,
		Situation:   model.SituationOrbiting,
		MainBody:    "Kerbin",
		MissionTime: missionTime,
		Orbit: model.Orbit{
			PeriapsisAltitude: alt,
			ApoapsisAltitude:  alt,
			Period:            2000,
			Altitude:          alt,
		},
	}
}
