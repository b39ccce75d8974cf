package core

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/signalsfoundry/debridement/model"
)

// ErrInvalidConfig indicates a PolicyConfig failed validation.
var ErrInvalidConfig = errors.New("invalid cleanup policy config")

// Default home site: the launch complex on Kerbin.
const (
	DefaultHomeBody      = "Kerbin"
	DefaultHomeLatitude  = -0.102668048653556
	DefaultHomeLongitude = -74.5753856554463
)

// PolicyConfig holds the tunable cleanup thresholds. Delays are in seconds of
// mission time.
type PolicyConfig struct {
	// Interval between scheduled cleanup passes.
	// Default: 5 seconds
	Interval time.Duration

	// LandedMinDelay is the minimum age before landed debris may be removed.
	// Default: 900
	LandedMinDelay float64

	// LandedDistanceDelay scales the distance factor into a delay, so debris
	// at the antipode of the home site waits this long.
	// Default: 86400
	LandedDistanceDelay float64

	// SplashFactor multiplies the landed deadline for splashed debris.
	// Default: 2.0
	SplashFactor float64

	// OrbitMinDelay is the minimum age before orbital decay is considered.
	// Default: 3600
	OrbitMinDelay float64

	// AtmosphereThreshold is the exposure, in atmosphere-seconds, above which
	// orbiting debris is removed.
	// Default: 4.0
	AtmosphereThreshold float64

	HomeBody      string
	HomeLatitude  float64
	HomeLongitude float64
}

// DefaultPolicyConfig returns the stock thresholds.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Interval:            5 * time.Second,
		LandedMinDelay:      15 * 60,
		LandedDistanceDelay: 24 * 3600,
		SplashFactor:        2.0,
		OrbitMinDelay:       3600,
		AtmosphereThreshold: 4.0,
		HomeBody:            DefaultHomeBody,
		HomeLatitude:        DefaultHomeLatitude,
		HomeLongitude:       DefaultHomeLongitude,
	}
}

// Validate reports the first invalid field.
func (c PolicyConfig) Validate() error {
	switch {
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidConfig, c.Interval)
	case c.LandedMinDelay < 0:
		return fmt.Errorf("%w: landed min delay must not be negative", ErrInvalidConfig)
	case c.LandedDistanceDelay < 0:
		return fmt.Errorf("%w: landed distance delay must not be negative", ErrInvalidConfig)
	case c.SplashFactor < 1:
		return fmt.Errorf("%w: splash factor must be at least 1, got %g", ErrInvalidConfig, c.SplashFactor)
	case c.OrbitMinDelay < 0:
		return fmt.Errorf("%w: orbit min delay must not be negative", ErrInvalidConfig)
	case c.AtmosphereThreshold < 0:
		return fmt.Errorf("%w: atmosphere threshold must not be negative", ErrInvalidConfig)
	case c.HomeBody == "":
		return fmt.Errorf("%w: home body is required", ErrInvalidConfig)
	case math.Abs(c.HomeLatitude) > 90:
		return fmt.Errorf("%w: home latitude out of range", ErrInvalidConfig)
	}
	return nil
}

// Category is the cleanup heuristic a vessel falls under.
type Category int

const (
	CategoryNone Category = iota
	CategoryLanded
	CategoryDecay
	// CategorySalvage marks vessels removed by a manual salvage. Classify
	// never returns it.
	CategorySalvage
)

// String implements fmt.Stringer.
func (c Category) String() string {
	switch c {
	case CategoryLanded:
		return "landed"
	case CategoryDecay:
		return "decay"
	case CategorySalvage:
		return "salvage"
	default:
		return "none"
	}
}

// Verdict is the outcome of classifying one vessel.
type Verdict struct {
	Category Category
	Eligible bool
}

// Policy evaluates vessels against PolicyConfig. It owns the reference point
// used by the landed heuristic.
type Policy struct {
	cfg PolicyConfig
	ref *ReferencePoint
}

// NewPolicy validates cfg and returns a Policy with an unresolved reference
// point.
func NewPolicy(cfg PolicyConfig) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Policy{
		cfg: cfg,
		ref: NewReferencePoint(cfg.HomeBody, cfg.HomeLatitude, cfg.HomeLongitude),
	}, nil
}

// Config returns the policy thresholds.
func (p *Policy) Config() PolicyConfig { return p.cfg }

// Reference returns the policy's reference point.
func (p *Policy) Reference() *ReferencePoint { return p.ref }

// Resolve attempts to seed the reference point from reg.
func (p *Policy) Resolve(reg BodyRegistry) bool { return p.ref.Resolve(reg) }

// Reset forgets the reference point so it is re-resolved in a new session.
func (p *Policy) Reset() { p.ref.Reset() }

// IsLandedCandidate reports whether v is unattended debris resting on the home
// body.
func (p *Policy) IsLandedCandidate(v model.Vessel) bool {
	return v.Unattended() && v.Situation.LandedOrSplashed() && v.MainBody == p.cfg.HomeBody
}

// IsDecayCandidate reports whether v is unattended debris in an orbit that
// dips into body's atmosphere.
func (p *Policy) IsDecayCandidate(v model.Vessel, body model.CelestialBody) bool {
	return v.Unattended() &&
		v.Situation == model.SituationOrbiting &&
		v.MainBody == body.Name &&
		body.HasAtmosphere &&
		v.Orbit.PeriapsisAltitude < body.MaxAtmosphereAltitude
}

// DistanceFactor delegates to the reference point.
func (p *Policy) DistanceFactor(v model.Vessel, body model.CelestialBody) (float64, bool) {
	return p.ref.DistanceFactor(v, body)
}

// LandedCleanupDeadline returns the mission time after which landed debris is
// removed. Debris far from the home site gets longer, splashed debris longer
// still. The second return is false while the reference point is unresolved.
func (p *Policy) LandedCleanupDeadline(v model.Vessel, body model.CelestialBody) (float64, bool) {
	factor, ok := p.ref.DistanceFactor(v, body)
	if !ok {
		return 0, false
	}
	return p.deadlineForFactor(factor, v.Situation), true
}

func (p *Policy) deadlineForFactor(factor float64, s model.Situation) float64 {
	splash := 1.0
	if s == model.SituationSplashed {
		splash = p.cfg.SplashFactor
	}
	return math.Max(p.cfg.LandedMinDelay, p.cfg.LandedDistanceDelay*factor) * splash
}

// IsLandedEligible reports whether landed debris has outlived its deadline.
// Unknown geometry never makes a vessel eligible.
func (p *Policy) IsLandedEligible(v model.Vessel, body model.CelestialBody) bool {
	if !p.IsLandedCandidate(v) {
		return false
	}
	deadline, ok := p.LandedCleanupDeadline(v, body)
	return ok && v.MissionTime > deadline
}

// IsDecayEligible reports whether orbiting debris is currently inside the
// atmosphere and has accumulated enough exposure.
func (p *Policy) IsDecayEligible(v model.Vessel, body model.CelestialBody) bool {
	return p.IsDecayCandidate(v, body) &&
		v.MissionTime > p.cfg.OrbitMinDelay &&
		v.Orbit.Altitude < body.MaxAtmosphereAltitude &&
		TotalAtmosphereSeconds(body, v) > p.cfg.AtmosphereThreshold
}

// Classify evaluates the landed heuristic first and the decay heuristic only
// when the vessel is not a landed candidate.
func (p *Policy) Classify(v model.Vessel, body model.CelestialBody) Verdict {
	switch {
	case p.IsLandedCandidate(v):
		return Verdict{Category: CategoryLanded, Eligible: p.IsLandedEligible(v, body)}
	case p.IsDecayCandidate(v, body):
		return Verdict{Category: CategoryDecay, Eligible: p.IsDecayEligible(v, body)}
	default:
		return Verdict{}
	}
}
