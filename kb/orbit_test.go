package kb

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/debridement/core"
	"github.com/signalsfoundry/debridement/model"
)

func earth() model.CelestialBody {
	return model.CelestialBody{
		Name:                    "Earth",
		HasAtmosphere:           true,
		AtmosphereScaleHeightKm: 8.5,
		AtmosphereMultiplier:    1.225,
		MaxAtmosphereAltitude:   140000,
		Radius:                  6371000,
		GravParameter:           3.986004418e14,
	}
}

func TestElementsFromState_Circular(t *testing.T) {
	body := kerbin()
	r := body.Radius + 100000
	speed := math.Sqrt(body.GravParameter / r)

	orbit, situation, err := ElementsFromState(core.Vec3{X: r}, core.Vec3{Y: speed}, body)
	if err != nil {
		t.Fatalf("ElementsFromState error: %v", err)
	}
	if situation != model.SituationOrbiting {
		t.Fatalf("situation = %v, want ORBITING", situation)
	}
	if orbit.Eccentricity > 1e-9 {
		t.Fatalf("eccentricity = %v, want ~0", orbit.Eccentricity)
	}
	for name, alt := range map[string]float64{"pe": orbit.PeriapsisAltitude, "ap": orbit.ApoapsisAltitude, "alt": orbit.Altitude} {
		if math.Abs(alt-100000) > 1e-3 {
			t.Fatalf("%s altitude = %v, want 100000", name, alt)
		}
	}
	wantPeriod := 2 * math.Pi * math.Sqrt(r*r*r/body.GravParameter)
	if math.Abs(orbit.Period-wantPeriod) > 1e-6 {
		t.Fatalf("period = %v, want %v", orbit.Period, wantPeriod)
	}
}

func TestElementsFromState_Escaping(t *testing.T) {
	body := kerbin()
	r := body.Radius + 100000
	escape := math.Sqrt(2 * body.GravParameter / r)

	orbit, situation, err := ElementsFromState(core.Vec3{X: r}, core.Vec3{Y: escape * 1.1}, body)
	if err != nil {
		t.Fatalf("ElementsFromState error: %v", err)
	}
	if situation != model.SituationEscaping || orbit.Period != 0 {
		t.Fatalf("expected escaping with zero period, got %v %+v", situation, orbit)
	}
}

func TestElementsFromState_SubOrbital(t *testing.T) {
	body := kerbin()
	r := body.Radius + 1000
	_, situation, err := ElementsFromState(core.Vec3{X: r}, core.Vec3{Y: 500}, body)
	if err != nil {
		t.Fatalf("ElementsFromState error: %v", err)
	}
	if situation != model.SituationSubOrbital {
		t.Fatalf("situation = %v, want SUB_ORBITAL", situation)
	}
}

func TestElementsFromState_Degenerate(t *testing.T) {
	body := kerbin()
	if _, _, err := ElementsFromState(core.Vec3{}, core.Vec3{Y: 1}, body); !errors.Is(err, ErrDegenerateState) {
		t.Fatalf("expected ErrDegenerateState for zero position, got %v", err)
	}
	body.GravParameter = 0
	if _, _, err := ElementsFromState(core.Vec3{X: 1}, core.Vec3{Y: 1}, body); !errors.Is(err, ErrDegenerateState) {
		t.Fatalf("expected ErrDegenerateState without mu, got %v", err)
	}
}

// We don't assert exact SGP4 values (those belong to go-satellite); we check
// the derived elements look like a low Earth orbit.
func TestTLEPropagator_ISS(t *testing.T) {
	tle1 := "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	tle2 := "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
	p := NewTLEPropagator(tle1, tle2)

	v := model.Vessel{ID: "iss", MainBody: "Earth"}
	at := time.Date(2021, time.October, 2, 14, 0, 0, 0, time.UTC)
	if err := p.UpdateVessel(at, earth(), &v); err != nil {
		t.Fatalf("UpdateVessel error: %v", err)
	}

	if v.Situation != model.SituationOrbiting {
		t.Fatalf("situation = %v, want ORBITING", v.Situation)
	}
	if v.Orbit.Period < 5400 || v.Orbit.Period > 5700 {
		t.Fatalf("period = %v s, want ~92 minutes", v.Orbit.Period)
	}
	if v.Orbit.PeriapsisAltitude < 300000 || v.Orbit.ApoapsisAltitude > 500000 {
		t.Fatalf("unexpected altitudes pe=%v ap=%v", v.Orbit.PeriapsisAltitude, v.Orbit.ApoapsisAltitude)
	}
	if r := core.VecFromPosition(v.Position).Norm(); r < 6.6e6 || r > 6.9e6 {
		t.Fatalf("position radius = %v m, want ~6.8e6", r)
	}
}
