package server

import (
	"errors"
	"strconv"
	"strings"

	"github.com/eternalApril/moondb/internal/datatype"
	"github.com/eternalApril/moondb/internal/reply"
	"github.com/eternalApril/moondb/internal/storage"
)

// geoadd implements GEOADD key longitude latitude member [longitude latitude member ...]
func geoadd(ctx *cmdContext) reply.Value {
	rest := ctx.args[1:]
	if len(rest)%3 != 0 {
		return reply.MakeError(msgSyntax)
	}

	members := make([]storage.GeoMember, 0, len(rest)/3)
	for i := 0; i < len(rest); i += 3 {
		lon, ok1 := parseFloat(rest[i])
		lat, ok2 := parseFloat(rest[i+1])
		if !ok1 || !ok2 {
			return reply.MakeError(msgNotFloat)
		}
		members = append(members, storage.GeoMember{Member: rest[i+2], Point: datatype.Point{Lon: lon, Lat: lat}})
	}

	added, err := ctx.db.GeoAdd(ctx.args[0], members...)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(added))
}

// geodist implements GEODIST key member1 member2 [M | KM | FT | MI]
func geodist(ctx *cmdContext) reply.Value {
	if len(ctx.args) > 4 {
		return reply.MakeError(msgSyntax)
	}

	unit := datatype.Meters
	if len(ctx.args) == 4 {
		u, ok := datatype.ParseUnit(ctx.args[3])
		if !ok {
			return reply.MakeError("ERR unsupported unit provided. please use M, KM, FT, MI")
		}
		unit = u
	}

	dist, ok, err := ctx.db.GeoDist(ctx.args[0], ctx.args[1], ctx.args[2], unit)
	if err != nil {
		return errorReply(err)
	}
	if !ok {
		return reply.MakeNilBulkString()
	}
	return reply.MakeBulkString(formatDistance(dist))
}

func geopos(ctx *cmdContext) reply.Value {
	positions, err := ctx.db.GeoPos(ctx.args[0], ctx.args[1:]...)
	if err != nil {
		return errorReply(err)
	}

	out := make([]reply.Value, len(positions))
	for i, p := range positions {
		if p == nil {
			out[i] = reply.MakeNilArray()
			continue
		}
		out[i] = makeCoordinates(*p)
	}
	return reply.MakeArray(out)
}

func geohash(ctx *cmdContext) reply.Value {
	hashes, err := ctx.db.GeoHash(ctx.args[0], ctx.args[1:]...)
	if err != nil {
		return errorReply(err)
	}

	out := make([]reply.Value, len(hashes))
	for i, h := range hashes {
		if h == "" {
			out[i] = reply.MakeNilBulkString()
			continue
		}
		out[i] = reply.MakeBulkString(h)
	}
	return reply.MakeArray(out)
}

// georadius implements GEORADIUS key longitude latitude radius unit [WITHCOORD] [WITHDIST] [COUNT count] [ASC | DESC]
func georadius(ctx *cmdContext) reply.Value {
	lon, ok1 := parseFloat(ctx.args[1])
	lat, ok2 := parseFloat(ctx.args[2])
	if !ok1 || !ok2 {
		return reply.MakeError(msgNotFloat)
	}

	radius, unit, opts, errReply := parseRadiusArgs(ctx.args[3:])
	if errReply != nil {
		return *errReply
	}

	matches, err := ctx.db.GeoRadius(ctx.args[0], datatype.Point{Lon: lon, Lat: lat}, radius, unit)
	if err != nil {
		return errorReply(err)
	}
	return opts.render(matches)
}

// georadiusbymember implements GEORADIUSBYMEMBER key member radius unit [WITHCOORD] [WITHDIST] [COUNT count] [ASC | DESC]
func georadiusbymember(ctx *cmdContext) reply.Value {
	radius, unit, opts, errReply := parseRadiusArgs(ctx.args[2:])
	if errReply != nil {
		return *errReply
	}

	matches, err := ctx.db.GeoRadiusByMember(ctx.args[0], ctx.args[1], radius, unit)
	if errors.Is(err, storage.ErrNotFound) {
		return reply.MakeError("ERR could not decode requested zset member")
	}
	if err != nil {
		return errorReply(err)
	}
	return opts.render(matches)
}

type radiusOptions struct {
	withCoord bool
	withDist  bool
	count     int // 0 means no limit
	desc      bool
}

// parseRadiusArgs parses "radius unit [options...]"
func parseRadiusArgs(args []string) (float64, datatype.Unit, radiusOptions, *reply.Value) {
	var opts radiusOptions
	fail := func(v reply.Value) (float64, datatype.Unit, radiusOptions, *reply.Value) {
		return 0, "", opts, &v
	}

	radius, ok := parseFloat(args[0])
	if !ok {
		return fail(reply.MakeError("ERR need numeric radius"))
	}
	if radius < 0 {
		return fail(reply.MakeError("ERR radius cannot be negative"))
	}

	unit, ok := datatype.ParseUnit(args[1])
	if !ok {
		return fail(reply.MakeError("ERR unsupported unit provided. please use M, KM, FT, MI"))
	}

	for i := 2; i < len(args); i++ {
		switch strings.ToUpper(args[i]) {
		case "WITHCOORD":
			opts.withCoord = true
		case "WITHDIST":
			opts.withDist = true
		case "ASC":
			opts.desc = false
		case "DESC":
			opts.desc = true
		case "COUNT":
			if i+1 >= len(args) {
				return fail(reply.MakeError(msgSyntax))
			}
			i++
			n, ok := parseIndex(args[i])
			if !ok {
				return fail(reply.MakeError(msgNotInteger))
			}
			if n <= 0 {
				return fail(reply.MakeError("ERR COUNT must be > 0"))
			}
			opts.count = n
		default:
			return fail(reply.MakeError(msgSyntax))
		}
	}

	return radius, unit, opts, nil
}

// render orders, limits and formats radius matches. Matches arrive nearest first
func (o radiusOptions) render(matches []datatype.GeoMatch) reply.Value {
	if o.desc {
		for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
			matches[i], matches[j] = matches[j], matches[i]
		}
	}
	if o.count > 0 && len(matches) > o.count {
		matches = matches[:o.count]
	}

	out := make([]reply.Value, len(matches))
	for i, m := range matches {
		if !o.withDist && !o.withCoord {
			out[i] = reply.MakeBulkString(m.Member)
			continue
		}

		item := []reply.Value{reply.MakeBulkString(m.Member)}
		if o.withDist {
			item = append(item, reply.MakeBulkString(formatDistance(m.Distance)))
		}
		if o.withCoord {
			item = append(item, makeCoordinates(m.Point))
		}
		out[i] = reply.MakeArray(item)
	}
	return reply.MakeArray(out)
}

func makeCoordinates(p datatype.Point) reply.Value {
	return reply.MakeArray([]reply.Value{
		reply.MakeBulkString(strconv.FormatFloat(p.Lon, 'f', -1, 64)),
		reply.MakeBulkString(strconv.FormatFloat(p.Lat, 'f', -1, 64)),
	})
}

func formatDistance(d float64) string {
	return strconv.FormatFloat(d, 'f', 4, 64)
}
