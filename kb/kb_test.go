package kb

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/signalsfoundry/debridement/model"
)

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

func newStore(t *testing.T) *KnowledgeBase {
	t.Helper()
	store := NewKnowledgeBase()
	if err := store.AddBody(kerbin()); err != nil {
		t.Fatalf("AddBody error: %v", err)
	}
	return store
}

func TestAddAndGetVessel(t *testing.T) {
	store := newStore(t)
	if err := store.AddVessel(model.Vessel{ID: "v1", Name: "Stage", MainBody: "Kerbin"}); err != nil {
		t.Fatalf("AddVessel error: %v", err)
	}
	got, ok := store.GetVessel("v1")
	if !ok || got.Name != "Stage" {
		t.Fatalf("GetVessel returned %#v, want name Stage", got)
	}
}

func TestAddVesselValidation(t *testing.T) {
	store := newStore(t)
	if err := store.AddVessel(model.Vessel{ID: "v1", MainBody: "Duna"}); !errors.Is(err, ErrBodyNotFound) {
		t.Fatalf("expected ErrBodyNotFound, got %v", err)
	}
	if err := store.AddVessel(model.Vessel{ID: "v1", MainBody: "Kerbin"}); err != nil {
		t.Fatalf("AddVessel error: %v", err)
	}
	if err := store.AddVessel(model.Vessel{ID: "v1", MainBody: "Kerbin"}); !errors.Is(err, ErrVesselExists) {
		t.Fatalf("expected ErrVesselExists, got %v", err)
	}
	if err := store.AddBody(kerbin()); !errors.Is(err, ErrBodyExists) {
		t.Fatalf("expected ErrBodyExists, got %v", err)
	}
}

func TestVesselsSnapshotKeepsInsertionOrder(t *testing.T) {
	store := newStore(t)
	for i := range 5 {
		if err := store.AddVessel(model.Vessel{ID: fmt.Sprintf("v-%d", i), MainBody: "Kerbin"}); err != nil {
			t.Fatalf("AddVessel error: %v", err)
		}
	}
	if err := store.RemoveVessel("v-2"); err != nil {
		t.Fatalf("RemoveVessel error: %v", err)
	}

	snap := store.Vessels()
	want := []string{"v-0", "v-1", "v-3", "v-4"}
	if len(snap) != len(want) {
		t.Fatalf("snapshot len=%d, want %d", len(snap), len(want))
	}
	for i, v := range snap {
		if v.ID != want[i] {
			t.Fatalf("snapshot[%d] = %s, want %s", i, v.ID, want[i])
		}
	}

	// The snapshot is detached from the store.
	if err := store.RemoveVessel("v-0"); err != nil {
		t.Fatalf("RemoveVessel error: %v", err)
	}
	if snap[0].ID != "v-0" {
		t.Fatalf("snapshot mutated by later removal")
	}
}

func TestRemoveVesselNotFound(t *testing.T) {
	store := newStore(t)
	if err := store.RemoveVessel("ghost"); !errors.Is(err, ErrVesselNotFound) {
		t.Fatalf("expected ErrVesselNotFound, got %v", err)
	}
}

func TestRemoveVesselNotifiesSubscribers(t *testing.T) {
	store := newStore(t)
	if err := store.AddVessel(model.Vessel{ID: "v1", MainBody: "Kerbin"}); err != nil {
		t.Fatalf("AddVessel error: %v", err)
	}

	var got []Event
	unsubscribe := store.Subscribe(func(e Event) { got = append(got, e) })

	if err := store.RemoveVessel("v1"); err != nil {
		t.Fatalf("RemoveVessel error: %v", err)
	}
	if len(got) != 1 || got[0].Type != EventVesselRemoved || got[0].Vessel.ID != "v1" {
		t.Fatalf("unexpected events: %#v", got)
	}

	unsubscribe()
	if err := store.AddVessel(model.Vessel{ID: "v2", MainBody: "Kerbin"}); err != nil {
		t.Fatalf("AddVessel error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unsubscribed callback still invoked: %#v", got)
	}
}

func TestUnsubscribeRemovesOnlyThatCallback(t *testing.T) {
	store := newStore(t)

	var a, b, c int
	unA := store.Subscribe(func(Event) { a++ })
	unB := store.Subscribe(func(Event) { b++ })
	store.Subscribe(func(Event) { c++ })

	unA()
	unB()
	unA()

	if err := store.AddVessel(model.Vessel{ID: "v1", MainBody: "Kerbin"}); err != nil {
		t.Fatalf("AddVessel error: %v", err)
	}
	if a != 0 || b != 0 || c != 1 {
		t.Fatalf("callbacks fired a=%d b=%d c=%d, want a=0 b=0 c=1", a, b, c)
	}
}

func TestAdvanceAgesVessels(t *testing.T) {
	store := newStore(t)
	if err := store.AddVessel(model.Vessel{ID: "v1", MainBody: "Kerbin", MissionTime: 10}); err != nil {
		t.Fatalf("AddVessel error: %v", err)
	}
	if err := store.Advance(time.Now(), 5*time.Second); err != nil {
		t.Fatalf("Advance error: %v", err)
	}
	got, _ := store.GetVessel("v1")
	if got.MissionTime != 15 {
		t.Fatalf("mission time = %v, want 15", got.MissionTime)
	}
}

func TestAddResourcesMerges(t *testing.T) {
	store := newStore(t)
	if err := store.AddVessel(model.Vessel{ID: "v1", MainBody: "Kerbin",
		Resources: []model.ResourceAmount{{Name: "LiquidFuel", Amount: 1}}}); err != nil {
		t.Fatalf("AddVessel error: %v", err)
	}
	err := store.AddResources("v1", []model.ResourceAmount{
		{Name: "LiquidFuel", Amount: 2},
		{Name: "Ore", Amount: 3},
	})
	if err != nil {
		t.Fatalf("AddResources error: %v", err)
	}
	got, _ := store.GetVessel("v1")
	if len(got.Resources) != 2 || got.Resources[0].Amount != 3 || got.Resources[1].Name != "Ore" {
		t.Fatalf("unexpected resources: %#v", got.Resources)
	}
}

func TestClearResetsSession(t *testing.T) {
	store := newStore(t)
	store.SetReady(true)
	if err := store.AddVessel(model.Vessel{ID: "v1", MainBody: "Kerbin"}); err != nil {
		t.Fatalf("AddVessel error: %v", err)
	}
	store.Clear()
	if _, ok := store.Body("Kerbin"); ok {
		t.Fatalf("expected bodies to be dropped by Clear")
	}
	if store.Ready() || len(store.Vessels()) != 0 {
		t.Fatalf("expected empty, not-ready store after Clear")
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := newStore(t)
	for i := range 10 {
		if err := store.AddVessel(model.Vessel{ID: fmt.Sprintf("v-%d", i), MainBody: "Kerbin"}); err != nil {
			t.Fatalf("AddVessel error: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = store.Vessels()
			_, _ = store.Body("Kerbin")
		}()
		go func() {
			defer wg.Done()
			_ = store.Advance(time.Now(), time.Second)
		}()
		go func() {
			defer wg.Done()
			_ = store.RemoveVessel(fmt.Sprintf("v-%d", i))
		}()
	}
	wg.Wait()

	if got := len(store.Vessels()); got != 0 {
		t.Fatalf("expected all vessels removed, %d left", got)
	}
}
