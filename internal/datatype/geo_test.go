package datatype

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	palermo = Point{Lon: 13.361389, Lat: 38.115556}
	catania = Point{Lon: 15.087269, Lat: 37.502669}
	rome    = Point{Lon: 12.496366, Lat: 41.902783}
)

// sphericalCosines is an independent great-circle formula used as a reference
func sphericalCosines(a, b Point) float64 {
	rad := math.Pi / 180
	c := math.Sin(a.Lat*rad)*math.Sin(b.Lat*rad) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Cos((b.Lon-a.Lon)*rad)
	return EarthRadiusMeters * math.Acos(c)
}

func newSicily() *Geo {
	g := NewGeo()
	g.Add("Palermo", palermo)
	g.Add("Catania", catania)
	g.Add("Rome", rome)
	return g
}

func TestGeo_Distance(t *testing.T) {
	g := newSicily()

	km, ok := g.Distance("Palermo", "Catania", Kilometers)
	require.True(t, ok)
	assert.InDelta(t, sphericalCosines(palermo, catania)/1000, km, 1e-6)
	assert.InDelta(t, 166.274, km, 0.01)

	m, _ := g.Distance("Palermo", "Catania", Meters)
	assert.InDelta(t, km*1000, m, 1e-6)

	mi, _ := g.Distance("Palermo", "Catania", Miles)
	assert.InDelta(t, m/1609.34, mi, 1e-9)

	_, ok = g.Distance("Palermo", "Atlantis", Kilometers)
	assert.False(t, ok)
}

func TestGeo_RadiusByMember(t *testing.T) {
	g := newSicily()

	matches, ok := g.RadiusByMember("Catania", 200, Kilometers)
	require.True(t, ok)
	require.Len(t, matches, 2)

	assert.Equal(t, "Catania", matches[0].Member)
	assert.Equal(t, 0.0, matches[0].Distance)
	assert.Equal(t, "Palermo", matches[1].Member)
	assert.InDelta(t, 166.274, matches[1].Distance, 0.01)

	_, ok = g.RadiusByMember("Atlantis", 200, Kilometers)
	assert.False(t, ok)
}

func TestGeo_RadiusFromPoint(t *testing.T) {
	g := newSicily()

	matches := g.Radius(Point{Lon: 15, Lat: 37}, 100, Kilometers)
	require.Len(t, matches, 1)
	assert.Equal(t, "Catania", matches[0].Member)

	assert.Empty(t, g.Radius(Point{Lon: -70, Lat: 40}, 10, Kilometers))
}

func TestGeo_Position(t *testing.T) {
	g := newSicily()

	p, ok := g.Position("Palermo")
	require.True(t, ok)
	assert.Equal(t, palermo, p)

	_, ok = g.Position("Atlantis")
	assert.False(t, ok)
}

func TestGeo_GeoHash(t *testing.T) {
	g := newSicily()

	h, ok := g.GeoHash("Palermo")
	require.True(t, ok)
	assert.Len(t, h, 11)
	assert.Equal(t, "sqc8b49rn", h[:9])
}

func TestPoint_Valid(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"palermo", palermo, true},
		{"lon too small", Point{Lon: -180.1, Lat: 0}, false},
		{"lat too big", Point{Lon: 0, Lat: 86}, false},
		{"edges", Point{Lon: 180, Lat: MaxLatitude}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Valid())
		})
	}
}

func TestParseUnit(t *testing.T) {
	u, ok := ParseUnit("KM")
	assert.True(t, ok)
	assert.Equal(t, Kilometers, u)

	_, ok = ParseUnit("parsec")
	assert.False(t, ok)
}
