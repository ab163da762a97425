package datatype

import (
	"math"
	"sort"
	"strings"
)

const (
	// EarthRadiusMeters matches the sphere model used by Redis
	EarthRadiusMeters = 6372797.560856

	MinLongitude = -180.0
	MaxLongitude = 180.0
	MinLatitude  = -85.05112878
	MaxLatitude  = 85.05112878
)

// Unit is a distance unit
type Unit string

const (
	Meters     Unit = "m"
	Kilometers Unit = "km"
	Miles      Unit = "mi"
	Feet       Unit = "ft"
)

var unitMeters = map[Unit]float64{
	Meters:     1,
	Kilometers: 1000,
	Miles:      1609.34,
	Feet:       0.3048,
}

// ParseUnit parses m, km, mi or ft (case-insensitive)
func ParseUnit(s string) (Unit, bool) {
	u := Unit(strings.ToLower(s))
	_, ok := unitMeters[u]
	return u, ok
}

// ToMeters converts a distance in u to meters
func (u Unit) ToMeters(d float64) float64 {
	return d * unitMeters[u]
}

// FromMeters converts a distance in meters to u
func (u Unit) FromMeters(d float64) float64 {
	return d / unitMeters[u]
}

// Point is a longitude/latitude pair in degrees
type Point struct {
	Lon float64
	Lat float64
}

// Valid reports whether the point lies in the indexable area
func (p Point) Valid() bool {
	return p.Lon >= MinLongitude && p.Lon <= MaxLongitude &&
		p.Lat >= MinLatitude && p.Lat <= MaxLatitude
}

// GeoMatch is a radius search hit, Distance is expressed in the query unit
type GeoMatch struct {
	Member   string
	Point    Point
	Distance float64
}

// Geo indexes member positions
type Geo struct {
	points map[string]Point
}

// NewGeo creates an empty geo index
func NewGeo() *Geo {
	return &Geo{points: make(map[string]Point)}
}

// Len returns the number of indexed members
func (g *Geo) Len() int {
	return len(g.points)
}

// Add records the position of member. Returns true if member was new.
// The caller validates p beforehand
func (g *Geo) Add(member string, p Point) bool {
	_, exists := g.points[member]
	g.points[member] = p
	return !exists
}

// Remove deletes members and returns how many existed
func (g *Geo) Remove(members ...string) int {
	removed := 0
	for _, m := range members {
		if _, ok := g.points[m]; ok {
			delete(g.points, m)
			removed++
		}
	}
	return removed
}

// Position returns the recorded position of member
func (g *Geo) Position(member string) (Point, bool) {
	p, ok := g.points[member]
	return p, ok
}

// Distance returns the great-circle distance between two members in unit
func (g *Geo) Distance(a, b string, unit Unit) (float64, bool) {
	pa, ok := g.points[a]
	if !ok {
		return 0, false
	}
	pb, ok := g.points[b]
	if !ok {
		return 0, false
	}
	return unit.FromMeters(Haversine(pa, pb)), true
}

// Radius returns members within radius of center, nearest first
func (g *Geo) Radius(center Point, radius float64, unit Unit) []GeoMatch {
	limit := unit.ToMeters(radius)

	matches := make([]GeoMatch, 0)
	for member, p := range g.points {
		d := Haversine(center, p)
		if d <= limit {
			matches = append(matches, GeoMatch{
				Member:   member,
				Point:    p,
				Distance: unit.FromMeters(d),
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Member < matches[j].Member
	})

	return matches
}

// RadiusByMember runs Radius around the position of member.
// Reports false if member has no recorded position
func (g *Geo) RadiusByMember(member string, radius float64, unit Unit) ([]GeoMatch, bool) {
	center, ok := g.points[member]
	if !ok {
		return nil, false
	}
	return g.Radius(center, radius, unit), true
}

// GeoHash returns the 11 character base32 geohash of member
func (g *Geo) GeoHash(member string) (string, bool) {
	p, ok := g.points[member]
	if !ok {
		return "", false
	}
	return EncodeGeoHash(p, 11), true
}

// Haversine returns the great-circle distance between a and b in meters
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	u := math.Sin((lat2 - lat1) / 2)
	v := math.Sin((b.Lon - a.Lon) * math.Pi / 180 / 2)
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(u*u+math.Cos(lat1)*math.Cos(lat2)*v*v))
}

const geoHashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// EncodeGeoHash encodes p as a standard base32 geohash of the given length
func EncodeGeoHash(p Point, length int) string {
	lonMin, lonMax := -180.0, 180.0
	latMin, latMax := -90.0, 90.0

	out := make([]byte, 0, length)
	even := true
	bit, ch := 0, 0

	for len(out) < length {
		if even {
			mid := (lonMin + lonMax) / 2
			if p.Lon >= mid {
				ch = ch<<1 | 1
				lonMin = mid
			} else {
				ch <<= 1
				lonMax = mid
			}
		} else {
			mid := (latMin + latMax) / 2
			if p.Lat >= mid {
				ch = ch<<1 | 1
				latMin = mid
			} else {
				ch <<= 1
				latMax = mid
			}
		}
		even = !even

		bit++
		if bit == 5 {
			out = append(out, geoHashAlphabet[ch])
			bit, ch = 0, 0
		}
	}

	return string(out)
}
