package model

import (
	"fmt"
	"strings"
)

// Situation describes where a vessel currently is relative to its main body.
type Situation int

const (
	SituationUnknown Situation = iota
	SituationLanded
	SituationSplashed
	SituationPreLaunch
	SituationFlying
	SituationSubOrbital
	SituationOrbiting
	SituationEscaping
	SituationDocked
)

var situationNames = map[Situation]string{
	SituationUnknown:    "UNKNOWN",
	SituationLanded:     "LANDED",
	SituationSplashed:   "SPLASHED",
	SituationPreLaunch:  "PRELAUNCH",
	SituationFlying:     "FLYING",
	SituationSubOrbital: "SUB_ORBITAL",
	SituationOrbiting:   "ORBITING",
	SituationEscaping:   "ESCAPING",
	SituationDocked:     "DOCKED",
}

// String implements fmt.Stringer.
func (s Situation) String() string {
	if name, ok := situationNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Situation(%d)", int(s))
}

// LandedOrSplashed reports whether the vessel is at rest on its main body.
func (s Situation) LandedOrSplashed() bool {
	return s == SituationLanded || s == SituationSplashed
}

// ParseSituation converts a scenario string such as "landed" or
// "SUB_ORBITAL" into a Situation. Matching ignores case, dashes and
// underscores.
func ParseSituation(raw string) (Situation, error) {
	key := strings.ToUpper(strings.NewReplacer("-", "", "_", "", " ", "").Replace(raw))
	for s, name := range situationNames {
		if strings.ReplaceAll(name, "_", "") == key {
			return s, nil
		}
	}
	return SituationUnknown, fmt.Errorf("unknown situation %q", raw)
}

// MarshalText implements encoding.TextMarshaler.
func (s Situation) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Situation) UnmarshalText(text []byte) error {
	parsed, err := ParseSituation(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
