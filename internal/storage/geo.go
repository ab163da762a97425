package storage

import (
	"fmt"

	"github.com/eternalApril/moondb/internal/datatype"
)

// GeoMember is a member with its position, the argument of GeoAdd
type GeoMember struct {
	Member string
	datatype.Point
}

// GeoAdd records member positions. Returns how many members were new.
// Nothing is written if any position is outside the indexable area
func (d *DB) GeoAdd(key string, members ...GeoMember) (int, error) {
	for _, m := range members {
		if !m.Valid() {
			return 0, fmt.Errorf("%w: invalid longitude,latitude pair %f,%f", ErrInvalidArgument, m.Lon, m.Lat)
		}
	}

	var added int
	_, err := update(d, key, KindGeo, datatype.NewGeo, func(g *datatype.Geo) (bool, error) {
		for _, m := range members {
			if g.Add(m.Member, m.Point) {
				added++
			}
		}
		return true, nil
	})
	return added, err
}

// GeoDist returns the great-circle distance between two members in unit.
// Reports false if either member has no recorded position
func (d *DB) GeoDist(key, a, b string, unit datatype.Unit) (float64, bool, error) {
	var (
		dist float64
		ok   bool
	)
	_, err := view(d, key, KindGeo, func(g *datatype.Geo) {
		dist, ok = g.Distance(a, b, unit)
	})
	return dist, ok, err
}

// GeoPos returns the position of each member, nil for members without one
func (d *DB) GeoPos(key string, members ...string) ([]*datatype.Point, error) {
	out := make([]*datatype.Point, len(members))
	_, err := view(d, key, KindGeo, func(g *datatype.Geo) {
		for i, m := range members {
			if p, ok := g.Position(m); ok {
				out[i] = &p
			}
		}
	})
	return out, err
}

// GeoHash returns the geohash of each member, empty for members without a position
func (d *DB) GeoHash(key string, members ...string) ([]string, error) {
	out := make([]string, len(members))
	_, err := view(d, key, KindGeo, func(g *datatype.Geo) {
		for i, m := range members {
			out[i], _ = g.GeoHash(m)
		}
	})
	return out, err
}

// GeoRadius returns members within radius of center, nearest first
func (d *DB) GeoRadius(key string, center datatype.Point, radius float64, unit datatype.Unit) ([]datatype.GeoMatch, error) {
	if !center.Valid() {
		return nil, fmt.Errorf("%w: invalid longitude,latitude pair %f,%f", ErrInvalidArgument, center.Lon, center.Lat)
	}
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius cannot be negative", ErrInvalidArgument)
	}

	out := []datatype.GeoMatch{}
	_, err := view(d, key, KindGeo, func(g *datatype.Geo) {
		out = g.Radius(center, radius, unit)
	})
	return out, err
}

// GeoRadiusByMember returns members within radius of member, nearest first.
// An absent key yields no matches; a missing center member is ErrNotFound
func (d *DB) GeoRadiusByMember(key, member string, radius float64, unit datatype.Unit) ([]datatype.GeoMatch, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius cannot be negative", ErrInvalidArgument)
	}

	out := []datatype.GeoMatch{}
	var ok bool
	found, err := view(d, key, KindGeo, func(g *datatype.Geo) {
		out, ok = g.RadiusByMember(member, radius, unit)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return []datatype.GeoMatch{}, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: member %q has no position", ErrNotFound, member)
	}
	return out, nil
}
