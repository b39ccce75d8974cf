package cleanup

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/debridement/kb"
	"github.com/signalsfoundry/debridement/model"
)

var _ SalvageWorld = (*kb.KnowledgeBase)(nil)

const integrationScenario = `
ready: true
bodies:
  - name: Kerbin
    atmosphere: true
    scaleHeightKm: 5
    multiplier: 1
    maxAtmosphereAltitude: 70000
    radius: 600000
    gravParameter: 3.5316e12
vessels:
  - id: near-stage
    situation: landed
    body: Kerbin
    missionTime: 1000
    surface: {lat: 0, lon: 3.6}
  - id: splashed-stage
    situation: splashed
    body: Kerbin
    missionTime: 3000
    surface: {lat: 0, lon: 3.6}
  - id: fairing
    situation: orbiting
    body: Kerbin
    missionTime: 3000
    orbit: {periapsis: 30000, apoapsis: 30000, period: 2000, altitude: 30000}
`

func TestCleanupAgainstKnowledgeBase(t *testing.T) {
	world := kb.NewKnowledgeBase()
	_, err := kb.LoadScenario(world, strings.NewReader(integrationScenario))
	require.NoError(t, err)

	var removed []string
	unsubscribe := world.Subscribe(func(e kb.Event) {
		if e.Type == kb.EventVesselRemoved {
			removed = append(removed, e.Vessel.ID)
		}
	})
	defer unsubscribe()

	scanner := newTestScanner(t)

	// Landed deadline is 1728 s, splashed 3456 s; the fairing is too young.
	res, err := scanner.RunCleanupPass(context.Background(), world)
	require.NoError(t, err)
	assert.Empty(t, res.Queued)

	require.NoError(t, world.UpdateVessel("near-stage", func(v *model.Vessel) { v.MissionTime = 2000 }))
	res, err = scanner.RunCleanupPass(context.Background(), world)
	require.NoError(t, err)
	assert.Equal(t, 1, res.LandedDeleted)
	assert.Equal(t, []string{"near-stage"}, removed)

	for _, id := range []string{"splashed-stage", "fairing"} {
		require.NoError(t, world.UpdateVessel(id, func(v *model.Vessel) { v.MissionTime = 7200 }))
	}
	res, err = scanner.RunCleanupPass(context.Background(), world)
	require.NoError(t, err)
	assert.Equal(t, 1, res.LandedDeleted)
	assert.Equal(t, 1, res.DecayDeleted)
	assert.Empty(t, world.Vessels())
}
