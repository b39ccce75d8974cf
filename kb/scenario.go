package kb

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/debridement/model"
)

// Scenario is the YAML description of a world: its bodies and the vessels
// present at load time.
type Scenario struct {
	Ready   bool                  `yaml:"ready"`
	Epoch   time.Time             `yaml:"epoch"`
	Bodies  []model.CelestialBody `yaml:"bodies"`
	Vessels []ScenarioVessel      `yaml:"vessels"`
}

// SurfaceSite places a vessel by surface coordinate instead of world position.
type SurfaceSite struct {
	Latitude  float64 `yaml:"lat"`
	Longitude float64 `yaml:"lon"`
	Altitude  float64 `yaml:"alt"`
}

// ScenarioVessel is one vessel entry in a scenario file.
type ScenarioVessel struct {
	ID          string                 `yaml:"id"`
	Name        string                 `yaml:"name"`
	Commandable bool                   `yaml:"commandable"`
	Loaded      bool                   `yaml:"loaded"`
	Situation   model.Situation        `yaml:"situation"`
	Body        string                 `yaml:"body"`
	MissionTime float64                `yaml:"missionTime"`
	Position    *model.Position        `yaml:"position"`
	Surface     *SurfaceSite           `yaml:"surface"`
	Orbit       model.Orbit            `yaml:"orbit"`
	TLE         []string               `yaml:"tle"`
	Resources   []model.ResourceAmount `yaml:"resources"`
}

// ScenarioSummary reports what LoadScenario added.
type ScenarioSummary struct {
	Bodies    int
	Vessels   int
	TLEDriven int
	// Epoch is the simulation time the scenario was propagated to.
	Epoch time.Time
}

// LoadScenario decodes a YAML scenario from r and adds its contents to kb.
// Vessels without an ID get a random UUID. TLE-driven vessels are propagated
// to the scenario epoch (or now, if unset) before being added.
func LoadScenario(kb *KnowledgeBase, r io.Reader) (ScenarioSummary, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && err != io.EOF {
		return ScenarioSummary{}, fmt.Errorf("decode scenario: %w", err)
	}

	epoch := sc.Epoch
	if epoch.IsZero() {
		epoch = time.Now().UTC()
	}

	sum := ScenarioSummary{Epoch: epoch}
	for _, b := range sc.Bodies {
		if err := kb.AddBody(b); err != nil {
			return sum, err
		}
		sum.Bodies++
	}

	for i, sv := range sc.Vessels {
		v, prop, err := sv.toVessel(kb, epoch)
		if err != nil {
			return sum, fmt.Errorf("vessel %d (%s): %w", i, sv.Name, err)
		}
		if err := kb.AddVessel(v); err != nil {
			return sum, err
		}
		sum.Vessels++
		if prop != nil {
			if err := kb.AttachPropagator(v.ID, prop); err != nil {
				return sum, err
			}
			sum.TLEDriven++
		}
	}

	kb.SetReady(sc.Ready)
	return sum, nil
}

func (sv ScenarioVessel) toVessel(kb *KnowledgeBase, epoch time.Time) (model.Vessel, *TLEPropagator, error) {
	body, ok := kb.Body(sv.Body)
	if !ok {
		return model.Vessel{}, nil, fmt.Errorf("%w: %q", ErrBodyNotFound, sv.Body)
	}

	v := model.Vessel{
		ID:          sv.ID,
		Name:        sv.Name,
		Commandable: sv.Commandable,
		Loaded:      sv.Loaded,
		Situation:   sv.Situation,
		MainBody:    sv.Body,
		Orbit:       sv.Orbit,
		MissionTime: sv.MissionTime,
		Resources:   sv.Resources,
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	switch {
	case sv.Surface != nil:
		v.Position = body.SurfacePosition(sv.Surface.Latitude, sv.Surface.Longitude, sv.Surface.Altitude)
	case sv.Position != nil:
		v.Position = *sv.Position
	}

	if len(sv.TLE) == 0 {
		return v, nil, nil
	}
	if len(sv.TLE) != 2 {
		return model.Vessel{}, nil, fmt.Errorf("tle must have exactly 2 lines, got %d", len(sv.TLE))
	}
	prop := NewTLEPropagator(sv.TLE[0], sv.TLE[1])
	if err := prop.UpdateVessel(epoch, body, &v); err != nil {
		return model.Vessel{}, nil, err
	}
	return v, prop, nil
}
