// math/latlong.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
	"regexp"
	"strconv"
)

// EarthRadius is the mean radius of the Earth in meters (WGS84 based, as
// used by most web mapping tools).
const EarthRadius = 6371008.8

const MetersPerNauticalMile = 1852

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float64

func (p Point2LL) Longitude() float64 {
	return p[0]
}

func (p Point2LL) Latitude() float64 {
	return p[1]
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

func (p Point2LL) IsZero() bool {
	return p[0] == 0 && p[1] == 0
}

func (p Point2LL) IsValid() bool {
	return IsFinite(p[0], p[1]) && p[1] >= -90 && p[1] <= 90 && p[0] >= -180 && p[0] <= 180
}

var (
	// pair of floats (no exponents)
	reWaypointFloat = regexp.MustCompile(`^(\-?[0-9]+\.[0-9]+), *(\-?[0-9]+\.[0-9]+)$`)
	// https://en.wikipedia.org/wiki/ISO_6709#String_expression_(Annex_H)
	// e.g. +403527.580-0734452.955
	reISO6709H = regexp.MustCompile(`^([-+][0-9][0-9])([0-9][0-9])([0-9][0-9])\.([0-9][0-9][0-9])([-+][0-9][0-9][0-9])([0-9][0-9])([0-9][0-9])\.([0-9][0-9][0-9])`)
)

// Parse positions of the form "N53.33.12.000,E009.59.00.000". This is
// done by hand rather than with a regexp since survey exports are full of
// these.
func tryParseDotted(b []byte) (Point2LL, bool) {
	if len(b) == 0 || (b[0] != 'N' && b[0] != 'S') {
		return Point2LL{}, false
	}
	negateLatitude := b[0] == 'S'

	b = b[1:]
	latitude, n, ok := tryParseDottedNumbers(b)
	if !ok {
		return Point2LL{}, false
	}
	if negateLatitude {
		latitude = -latitude
	}
	b = b[n:]

	if len(b) == 0 || b[0] != ',' {
		return Point2LL{}, false
	}
	b = b[1:]

	// Skip optional space
	if len(b) > 0 && b[0] == ' ' {
		b = b[1:]
	}

	if len(b) == 0 || (b[0] != 'E' && b[0] != 'W') {
		return Point2LL{}, false
	}
	negateLongitude := b[0] == 'W'

	b = b[1:]
	longitude, n, ok := tryParseDottedNumbers(b)
	if !ok || n != len(b) {
		return Point2LL{}, false
	}
	if negateLongitude {
		longitude = -longitude
	}

	return Point2LL{longitude, latitude}, true
}

// Parses a number of the form aaa.bbb.ccc.ddd (degrees, minutes, seconds,
// milliseconds). Returns the value, the number of bytes of b consumed, and
// a bool indicating success or failure.
func tryParseDottedNumbers(b []byte) (float64, int, bool) {
	n := 0
	var ll float64

	// Scan to the end of the current number group; return
	// the number of bytes it uses.
	scan := func(b []byte) int {
		for i, v := range b {
			if v == '.' || v == ',' {
				return i
			}
		}
		return len(b)
	}

	for i := range 4 {
		end := scan(b)
		if end == 0 {
			return 0, 0, false
		}

		value := 0
		for _, ch := range b[:end] {
			if ch < '0' || ch > '9' {
				return 0, 0, false
			}
			value *= 10
			value += int(ch - '0')
		}
		if i == 3 {
			// Treat the last set of digits as a decimal, so that
			// Nxx.yy.zz.1 is handled like Nxx.yy.zz.100.
			for j := end; j < 3; j++ {
				value *= 10
			}
		}

		scales := [4]float64{1, 60, 3600, 3600000}
		ll += float64(value) / scales[i]
		n += end
		b = b[end:]

		if i < 3 {
			if len(b) == 0 {
				return 0, 0, false
			}
			b = b[1:]
			n++
		}
	}

	return ll, n, true
}

// ParseLatLong parses a position given either in dotted degrees, minutes
// and seconds ("N53.33.12.000,E009.59.00.000"), as a decimal "lat, lon"
// pair, or in ISO 6709 Annex H form.
func ParseLatLong(llstr []byte) (Point2LL, error) {
	var p Point2LL
	if dp, ok := tryParseDotted(llstr); ok {
		return dp, nil
	} else if strs := reWaypointFloat.FindStringSubmatch(string(llstr)); len(strs) == 3 {
		if l, err := strconv.ParseFloat(strs[1], 64); err != nil {
			return Point2LL{}, err
		} else {
			p[1] = l
		}
		if l, err := strconv.ParseFloat(strs[2], 64); err != nil {
			return Point2LL{}, err
		} else {
			p[0] = l
		}
		return p, nil
	} else if strs := reISO6709H.FindStringSubmatch(string(llstr)); len(strs) == 9 {
		parse := func(deg, min, sec, frac string) (float64, error) {
			d, err := strconv.Atoi(deg)
			if err != nil {
				return 0, err
			}
			m, err := strconv.Atoi(min)
			if err != nil {
				return 0, err
			}
			s, err := strconv.Atoi(sec)
			if err != nil {
				return 0, err
			}
			f, err := strconv.Atoi(frac)
			if err != nil {
				return 0, err
			}
			sgn := 1.0
			if deg[0] == '-' {
				sgn = -1
			}
			d = Abs(d)
			return sgn * (float64(d) + float64(m)/60 + float64(s)/3600 + float64(f)/3600000), nil
		}

		var err error
		p[1], err = parse(strs[1], strs[2], strs[3], strs[4])
		if err != nil {
			return Point2LL{}, err
		}
		p[0], err = parse(strs[5], strs[6], strs[7], strs[8])
		if err != nil {
			return Point2LL{}, err
		}
		return p, nil
	} else {
		return Point2LL{}, fmt.Errorf("%s: invalid latlong string", llstr)
	}
}

func Add2LL(a Point2LL, b Point2LL) Point2LL {
	return Point2LL(Add2(a, b))
}

func Sub2LL(a Point2LL, b Point2LL) Point2LL {
	return Point2LL(Sub2(a, b))
}

func Mid2LL(a Point2LL, b Point2LL) Point2LL {
	return Point2LL(Scale2(Add2(a, b), 0.5))
}

// DistanceMeters returns the great-circle (haversine) distance in meters
// between two lat-long coordinates.
func DistanceMeters(a Point2LL, b Point2LL) float64 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	lat1, lon1 := Radians(a[1]), Radians(a[0])
	lat2, lon2 := Radians(b[1]), Radians(b[0])
	dlat, dlon := lat2-lat1, lon2-lon1

	x := Sqr(gomath.Sin(dlat/2)) + gomath.Cos(lat1)*gomath.Cos(lat2)*Sqr(gomath.Sin(dlon/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	return EarthRadius * c
}

// NMDistance2LL returns the distance in nautical miles between two
// provided lat-long coordinates.
func NMDistance2LL(a Point2LL, b Point2LL) float64 {
	return DistanceMeters(a, b) / MetersPerNauticalMile
}

///////////////////////////////////////////////////////////////////////////
// Rhumb lines

// mercatorStretch returns the difference in isometric latitude between
// the two latitudes, both given in radians.
func mercatorStretch(phi1, phi2 float64) float64 {
	return gomath.Log(gomath.Tan(phi2/2+gomath.Pi/4) / gomath.Tan(phi1/2+gomath.Pi/4))
}

// RhumbDestination returns the point reached by travelling the given
// distance in meters from origin along a line of constant bearing,
// specified in degrees clockwise from true north.
func RhumbDestination(origin Point2LL, distance, bearing float64) Point2LL {
	delta := distance / EarthRadius
	lambda1 := Radians(origin[0])
	phi1 := Radians(origin[1])
	theta := Radians(bearing)

	dPhi := delta * gomath.Cos(theta)
	phi2 := phi1 + dPhi

	// Going past a pole flips us around to the other side.
	if gomath.Abs(phi2) > gomath.Pi/2 {
		if phi2 > 0 {
			phi2 = gomath.Pi - phi2
		} else {
			phi2 = -gomath.Pi - phi2
		}
	}

	dPsi := mercatorStretch(phi1, phi2)
	// E-W course becomes ill-conditioned with 0/0
	q := gomath.Cos(phi1)
	if gomath.Abs(dPsi) > 1e-11 {
		q = dPhi / dPsi
	}

	dLambda := delta * gomath.Sin(theta) / q
	lambda2 := lambda1 + dLambda

	lon := gomath.Mod(Degrees(lambda2)+540, 360) - 180
	// Keep the result on the same side of the antimeridian as the origin.
	if lon-origin[0] > 180 {
		lon -= 360
	} else if origin[0]-lon > 180 {
		lon += 360
	}
	return Point2LL{lon, Degrees(phi2)}
}

// RhumbBearing returns the constant bearing in degrees [0, 360) of the
// rhumb line from a to b.
func RhumbBearing(a, b Point2LL) float64 {
	phi1, phi2 := Radians(a[1]), Radians(b[1])
	dLambda := Radians(b[0] - a[0])
	// take the shortest way around
	if dLambda > gomath.Pi {
		dLambda -= 2 * gomath.Pi
	} else if dLambda < -gomath.Pi {
		dLambda += 2 * gomath.Pi
	}

	theta := gomath.Atan2(dLambda, mercatorStretch(phi1, phi2))
	return NormalizeHeading(Degrees(theta))
}

// RhumbDistance returns the length in meters of the rhumb line from a to
// b.
func RhumbDistance(a, b Point2LL) float64 {
	phi1, phi2 := Radians(a[1]), Radians(b[1])
	dPhi := phi2 - phi1
	dLambda := Radians(gomath.Abs(b[0] - a[0]))
	if dLambda > gomath.Pi {
		dLambda -= 2 * gomath.Pi
	}

	dPsi := mercatorStretch(phi1, phi2)
	q := gomath.Cos(phi1)
	if gomath.Abs(dPsi) > 1e-11 {
		q = dPhi / dPsi
	}

	delta := gomath.Sqrt(dPhi*dPhi + q*q*dLambda*dLambda)
	return delta * EarthRadius
}

// MetersPerLongitude returns the length in meters of one degree of
// longitude at the given latitude.
func MetersPerLongitude(latitude float64) float64 {
	return MetersPerLatitude * gomath.Cos(Radians(latitude))
}

// MetersPerLatitude is the length in meters of one degree of latitude.
const MetersPerLatitude = EarthRadius * gomath.Pi / 180

// LL2M converts a point expressed in latitude-longitude coordinates to a
// local flat-earth frame in meters; both axes then have the same measure
// which is handy for nearest-neighbour queries.
func LL2M(p Point2LL, metersPerLongitude float64) [2]float64 {
	return [2]float64{p[0] * metersPerLongitude, p[1] * MetersPerLatitude}
}
