// aviation/enums.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"
)

// SurfaceType is the kind of surface of a landing location.
type SurfaceType int

const (
	Asphalt SurfaceType = iota
	Gras
	Water
)

var surfaceTypeNames = []string{"Asphalt", "Gras", "Water"}

func (s SurfaceType) String() string {
	if int(s) < len(surfaceTypeNames) && s >= 0 {
		return surfaceTypeNames[s]
	}
	return fmt.Sprintf("SurfaceType(%d)", int(s))
}

func (s SurfaceType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SurfaceType) UnmarshalText(b []byte) error {
	for i, n := range surfaceTypeNames {
		if strings.EqualFold(string(b), n) {
			*s = SurfaceType(i)
			return nil
		}
	}
	// "Grass" shows up in hand-edited files.
	if strings.EqualFold(string(b), "Grass") {
		*s = Gras
		return nil
	}
	return fmt.Errorf("%q: unknown surface type", string(b))
}

// UsageType describes what a location is normally used for.
type UsageType int

const (
	Agricultural UsageType = iota
	Aeronautical
	Nature
	Waterway
	Event
	Park
)

var usageTypeNames = []string{"Agricultural", "Aeronautical", "Nature", "Waterway", "Event", "Park"}

func (u UsageType) String() string {
	if int(u) < len(usageTypeNames) && u >= 0 {
		return usageTypeNames[u]
	}
	return fmt.Sprintf("UsageType(%d)", int(u))
}

func (u UsageType) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *UsageType) UnmarshalText(b []byte) error {
	for i, n := range usageTypeNames {
		if strings.EqualFold(string(b), n) {
			*u = UsageType(i)
			return nil
		}
	}
	return fmt.Errorf("%q: unknown usage type", string(b))
}

// HumanPresence is the expected presence of people at a location. The
// zero value, None, is used when a location doesn't specify it.
type HumanPresence int

const (
	// It is not likely that people will ever pose a risk at the location.
	None HumanPresence = iota
	// People may occasionally be present but are usually spread out and
	// on the move.
	Sparse
	// Generally nobody is on-site unless an event is taking place.
	EventOnly
	// Strong presence is to be expected during daylight, potentially
	// making the location unviable.
	Dense
)

var humanPresenceNames = []string{"None", "Sparse", "EventOnly", "Dense"}

func (h HumanPresence) String() string {
	if int(h) < len(humanPresenceNames) && h >= 0 {
		return humanPresenceNames[h]
	}
	return fmt.Sprintf("HumanPresence(%d)", int(h))
}

func (h HumanPresence) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HumanPresence) UnmarshalText(b []byte) error {
	for i, n := range humanPresenceNames {
		if strings.EqualFold(string(b), n) {
			*h = HumanPresence(i)
			return nil
		}
	}
	if strings.EqualFold(string(b), "Unlikely") {
		*h = None
		return nil
	}
	return fmt.Errorf("%q: unknown human presence category", string(b))
}
