package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/debridement/model"
)

type mapRegistry map[string]model.CelestialBody

func (m mapRegistry) Body(name string) (model.CelestialBody, bool) {
	b, ok := m[name]
	return b, ok
}

func TestReferencePoint_ResolveOnceBodyAvailable(t *testing.T) {
	ref := NewReferencePoint("Kerbin", 0, 0)

	if ref.Resolve(mapRegistry{}) {
		t.Fatalf("expected resolve to fail without the home body")
	}
	if _, ok := ref.DistanceFactor(model.Vessel{Position: model.Position{X: 1}}, testKerbin()); ok {
		t.Fatalf("expected distance factor to be unavailable before resolve")
	}

	body := testKerbin()
	if !ref.Resolve(mapRegistry{"Kerbin": body}) {
		t.Fatalf("expected resolve to succeed")
	}
	onSite := model.Vessel{Position: body.SurfacePosition(0, 0, 0)}
	quarter := model.Vessel{Position: body.SurfacePosition(0, 90, 0)}
	if f, ok := ref.DistanceFactor(onSite, body); !ok || math.Abs(f) > 1e-9 {
		t.Fatalf("factor at reference site = %v (ok=%v), want 0", f, ok)
	}

	// Moving the body afterwards must not change the cached direction.
	moved := body
	moved.Position = model.Position{X: 1e9}
	moved.Radius = 1
	ref.Resolve(mapRegistry{"Kerbin": moved})
	if f, _ := ref.DistanceFactor(quarter, body); math.Abs(f-0.5) > 1e-9 {
		t.Fatalf("factor a quarter turn away = %v, want 0.5", f)
	}
	if f, _ := ref.DistanceFactor(onSite, body); math.Abs(f) > 1e-9 {
		t.Fatalf("direction recomputed after resolve: factor %v", f)
	}

	ref.Reset()
	if ref.Resolved() {
		t.Fatalf("expected reset to clear resolution")
	}
}

func TestReferencePoint_DistanceFactorBounds(t *testing.T) {
	body := testKerbin()
	body.Position = model.Position{X: 1000, Y: -500, Z: 42}
	ref := NewReferencePoint("Kerbin", 10, 20)
	ref.Resolve(mapRegistry{"Kerbin": body})

	atSite := model.Vessel{Position: body.SurfacePosition(10, 20, 0)}
	if f, ok := ref.DistanceFactor(atSite, body); !ok || math.Abs(f) > 1e-6 {
		t.Fatalf("factor at site = %v (ok=%v), want 0", f, ok)
	}

	// Same direction, higher up.
	above := model.Vessel{Position: body.SurfacePosition(10, 20, 80000)}
	if f, _ := ref.DistanceFactor(above, body); math.Abs(f) > 1e-6 {
		t.Fatalf("factor above site = %v, want 0", f)
	}

	antipode := model.Vessel{Position: body.SurfacePosition(-10, 200, 0)}
	if f, ok := ref.DistanceFactor(antipode, body); !ok || math.Abs(f-1) > 1e-6 {
		t.Fatalf("factor at antipode = %v (ok=%v), want 1", f, ok)
	}

	centre := model.Vessel{Position: body.Position}
	if _, ok := ref.DistanceFactor(centre, body); ok {
		t.Fatalf("expected factor to be unavailable at body centre")
	}
}

func TestReferencePoint_DistanceScalesWithRadius(t *testing.T) {
	body := testKerbin()
	ref := NewReferencePoint("Kerbin", 0, 0)
	ref.Resolve(mapRegistry{"Kerbin": body})

	v := model.Vessel{Position: body.SurfacePosition(0, 90, 0)}
	d, ok := ref.Distance(v, body)
	if !ok {
		t.Fatalf("expected distance to be available")
	}
	want := math.Pi / 2 * body.Radius
	if math.Abs(d-want) > 1e-3 {
		t.Fatalf("quarter-turn distance = %v, want %v", d, want)
	}

	bigger := body
	bigger.Radius *= 3
	d3, _ := ref.Distance(v, bigger)
	if math.Abs(d3-3*d) > 1e-3 {
		t.Fatalf("distance on 3x body = %v, want %v", d3, 3*d)
	}
}
