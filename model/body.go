package model

import "math"

// Position is a world-space position in metres.
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// CelestialBody is the read-only view of a planet or moon that vessels orbit
// or rest on.
type CelestialBody struct {
	Name string `yaml:"name"`

	HasAtmosphere bool `yaml:"atmosphere"`
	// AtmosphereScaleHeightKm is the exponential scale height in kilometres.
	AtmosphereScaleHeightKm float64 `yaml:"scaleHeightKm"`
	// AtmosphereMultiplier is the density at sea level.
	AtmosphereMultiplier float64 `yaml:"multiplier"`
	// MaxAtmosphereAltitude is the altitude (metres) at which the atmosphere ends.
	MaxAtmosphereAltitude float64 `yaml:"maxAtmosphereAltitude"`

	Radius        float64 `yaml:"radius"`        // metres
	GravParameter float64 `yaml:"gravParameter"` // m^3/s^2

	Position Position `yaml:"position"`
}

// SurfacePosition converts a surface coordinate (degrees) plus an altitude
// above the surface into a world-space position. The body is treated as a
// non-rotating sphere centred on Position.
func (b CelestialBody) SurfacePosition(latDeg, lonDeg, alt float64) Position {
	lat := latDeg * math.Pi / 180.0
	lon := lonDeg * math.Pi / 180.0
	r := b.Radius + alt
	return Position{
		X: b.Position.X + r*math.Cos(lat)*math.Cos(lon),
		Y: b.Position.Y + r*math.Cos(lat)*math.Sin(lon),
		Z: b.Position.Z + r*math.Sin(lat),
	}
}
