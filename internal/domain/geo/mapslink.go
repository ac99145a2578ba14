package geo

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

var atCoords = regexp.MustCompile(`@(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)`)

// ParseMapsLink extracts a point from a Google Maps share link.
// Supported shapes: ".../@9.03,38.74,15z", "?q=9.03,38.74", "?ll=9.03,38.74",
// "?query=9.03,38.74". Links with only a place name return false.
func ParseMapsLink(link string) (orb.Point, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return orb.Point{}, false
	}

	if m := atCoords.FindStringSubmatch(link); m != nil {
		if p, ok := toPoint(m[1], m[2]); ok {
			return p, true
		}
	}

	u, err := url.Parse(link)
	if err != nil {
		return orb.Point{}, false
	}
	q := u.Query()
	for _, key := range []string{"q", "ll", "query", "destination"} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			continue
		}
		if p, ok := toPoint(parts[0], parts[1]); ok {
			return p, true
		}
	}
	return orb.Point{}, false
}

func toPoint(latRaw, lngRaw string) (orb.Point, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return orb.Point{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	if err != nil {
		return orb.Point{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return orb.Point{}, false
	}
	// orb points are (lon, lat)
	return orb.Point{lng, lat}, true
}
