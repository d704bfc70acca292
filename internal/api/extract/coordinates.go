package extract

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var (
	objectPattern = regexp.MustCompile(`\{[^{}]*\}`)
	arrayPattern  = regexp.MustCompile(`\[([^\[\]]+)\]`)
)

// ParseCoordinates normalizes the coordinate representations returned by the
// session backend into a LatLng.
//
// A JSON object with latitude/longitude (or lat/lng) keys is read as is. A
// bracketed pair is read as [lat, lng] and swapped. Anything else is absent.
// Only the first object and the first bracket group are considered.
func ParseCoordinates(raw string) types.LatLng {
	if m := objectPattern.FindString(raw); m != "" {
		if c, ok := coordinatesFromObject(m); ok {
			return types.Present(c)
		}
	}

	if m := arrayPattern.FindStringSubmatch(raw); m != nil {
		lat, lng, ok := parsePair(m[1])
		if ok {
			return types.Present(types.Coordinates{Longitude: lng, Latitude: lat})
		}
	}

	return types.Absent
}

// CoordinatesFromJSON handles the coordinates field of a suggest-places
// attraction, which may be a string, an object or a [lat, lng] array.
func CoordinatesFromJSON(raw json.RawMessage) types.LatLng {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return types.Absent
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return types.Absent
		}
		return ParseCoordinates(s)
	}
	return ParseCoordinates(string(raw))
}

// PlaceCoordinates handles area-search results, whose arrays follow the map's
// [lng, lat] order.
func PlaceCoordinates(raw json.RawMessage) types.LatLng {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		if m := arrayPattern.FindStringSubmatch(string(raw)); m != nil {
			if lng, lat, ok := parsePair(m[1]); ok {
				return types.Present(types.Coordinates{Longitude: lng, Latitude: lat})
			}
		}
		return types.Absent
	}
	return CoordinatesFromJSON(raw)
}

func coordinatesFromObject(s string) (types.Coordinates, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		// the backend geocoder sometimes answers with single-quoted dicts
		if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &fields); err != nil {
			return types.Coordinates{}, false
		}
	}

	lat, okLat := numberField(fields, "latitude", "lat")
	lng, okLng := numberField(fields, "longitude", "lng", "lon")
	if !okLat || !okLng {
		return types.Coordinates{}, false
	}
	return types.Coordinates{Longitude: lng, Latitude: lat}, true
}

func numberField(fields map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok {
			continue
		}
		var f float64
		switch n := v.(type) {
		case float64:
			f = n
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return 0, false
			}
			f = parsed
		default:
			return 0, false
		}
		if !finite(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func parsePair(s string) (float64, float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || !finite(a) {
		return 0, 0, false
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || !finite(b) {
		return 0, 0, false
	}
	return a, b, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
