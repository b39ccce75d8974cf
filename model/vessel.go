package model

// Orbit holds the orbital elements the cleanup heuristics read.
// Altitudes are metres above the reference body's surface.
type Orbit struct {
	PeriapsisAltitude float64 `yaml:"periapsis"`
	ApoapsisAltitude  float64 `yaml:"apoapsis"`
	Eccentricity      float64 `yaml:"eccentricity"`
	Period            float64 `yaml:"period"` // seconds
	Altitude          float64 `yaml:"altitude"`
}

// ResourceAmount is a quantity of a named resource carried by a vessel.
type ResourceAmount struct {
	Name   string  `yaml:"name"`
	Amount float64 `yaml:"amount"`
}

// Vessel is a simulated object known to the host world. Debris is any vessel
// with Commandable == false.
type Vessel struct {
	ID          string
	Name        string
	Commandable bool
	// Loaded vessels are simulated at full fidelity near the active vessel.
	Loaded bool

	Situation Situation
	MainBody  string
	Orbit     Orbit

	// MissionTime is the number of seconds since the vessel was created.
	MissionTime float64

	Position  Position
	Resources []ResourceAmount
}

// IsDebris reports whether the vessel lacks player control.
func (v Vessel) IsDebris() bool {
	return !v.Commandable
}

// Unattended reports whether the vessel is debris that is not currently
// loaded; only such vessels are subject to automatic cleanup.
func (v Vessel) Unattended() bool {
	return v.IsDebris() && !v.Loaded
}
