package extract

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Coordinates
		present bool
	}{
		{
			name:    "json object keeps field order",
			input:   `{"latitude": 35.0116, "longitude": 135.7681}`,
			want:    types.Coordinates{Longitude: 135.7681, Latitude: 35.0116},
			present: true,
		},
		{
			name:    "lat lng keys embedded in text",
			input:   `Coordinates: {"lat": 48.8584, "lng": 2.2945} (approx)`,
			want:    types.Coordinates{Longitude: 2.2945, Latitude: 48.8584},
			present: true,
		},
		{
			name:    "python dict with string numbers",
			input:   `{'address': 'Kyoto, Japan', 'latitude': '35.0116', 'longitude': '135.7681'}`,
			want:    types.Coordinates{Longitude: 135.7681, Latitude: 35.0116},
			present: true,
		},
		{
			name:    "bracketed pair is swapped",
			input:   `The temple is at [35.0116, 135.7681] near the river`,
			want:    types.Coordinates{Longitude: 135.7681, Latitude: 35.0116},
			present: true,
		},
		{
			name:    "only the first bracket group counts",
			input:   `[1.5, 2.5] then [3.5, 4.5]`,
			want:    types.Coordinates{Longitude: 2.5, Latitude: 1.5},
			present: true,
		},
		{
			name:    "object without coordinates falls through to array",
			input:   `{"name": "Fushimi Inari"} [34.9671, 135.7727]`,
			want:    types.Coordinates{Longitude: 135.7727, Latitude: 34.9671},
			present: true,
		},
		{name: "free text", input: "somewhere near the old town"},
		{name: "empty", input: ""},
		{name: "NaN in array", input: "[NaN, 135.7]"},
		{name: "three numbers", input: "[1, 2, 3]"},
		{name: "single number", input: "[42]"},
		{name: "object with non numeric latitude", input: `{"latitude": "north", "longitude": 10}`},
		{name: "object with only latitude", input: `{"latitude": 10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCoordinates(tt.input)
			c, ok := got.Get()
			require.Equal(t, tt.present, ok)
			if !tt.present {
				assert.True(t, got.IsAbsent())
				assert.Nil(t, got.Ptr())
				return
			}
			assert.InDelta(t, tt.want.Longitude, c.Longitude, 1e-9)
			assert.InDelta(t, tt.want.Latitude, c.Latitude, 1e-9)
		})
	}
}

func TestParseCoordinatesPairs(t *testing.T) {
	pairs := [][2]float64{{0, 0}, {-33.8688, 151.2093}, {89.9, -179.9}, {12.5, 1e3}}

	for _, p := range pairs {
		a, b := p[0], p[1]

		obj := ParseCoordinates(fmt.Sprintf(`{"latitude": %v, "longitude": %v}`, a, b))
		c, ok := obj.Get()
		require.True(t, ok)
		assert.Equal(t, types.Coordinates{Longitude: b, Latitude: a}, c)

		arr := ParseCoordinates(fmt.Sprintf("[%v, %v]", a, b))
		c, ok = arr.Get()
		require.True(t, ok)
		assert.Equal(t, types.Coordinates{Longitude: b, Latitude: a}, c)
	}
}

func TestCoordinatesFromJSON(t *testing.T) {
	t.Run("string payload", func(t *testing.T) {
		c, ok := CoordinatesFromJSON(json.RawMessage(`"[35.0, 135.0]"`)).Get()
		require.True(t, ok)
		assert.Equal(t, types.Coordinates{Longitude: 135.0, Latitude: 35.0}, c)
	})

	t.Run("object payload", func(t *testing.T) {
		c, ok := CoordinatesFromJSON(json.RawMessage(`{"lat": 1, "lng": 2}`)).Get()
		require.True(t, ok)
		assert.Equal(t, types.Coordinates{Longitude: 2, Latitude: 1}, c)
	})

	t.Run("array payload is lat lng", func(t *testing.T) {
		c, ok := CoordinatesFromJSON(json.RawMessage(`[35, 135]`)).Get()
		require.True(t, ok)
		assert.Equal(t, types.Coordinates{Longitude: 135, Latitude: 35}, c)
	})

	t.Run("null and garbage are absent", func(t *testing.T) {
		assert.True(t, CoordinatesFromJSON(json.RawMessage(`null`)).IsAbsent())
		assert.True(t, CoordinatesFromJSON(nil).IsAbsent())
		assert.True(t, CoordinatesFromJSON(json.RawMessage(`"not found"`)).IsAbsent())
		assert.True(t, CoordinatesFromJSON(json.RawMessage(`42`)).IsAbsent())
	})
}

func TestPlaceCoordinates(t *testing.T) {
	c, ok := PlaceCoordinates(json.RawMessage(`[135.7681, 35.0116]`)).Get()
	require.True(t, ok)
	assert.Equal(t, types.Coordinates{Longitude: 135.7681, Latitude: 35.0116}, c)

	c, ok = PlaceCoordinates(json.RawMessage(`{"latitude": 35.0116, "longitude": 135.7681}`)).Get()
	require.True(t, ok)
	assert.Equal(t, types.Coordinates{Longitude: 135.7681, Latitude: 35.0116}, c)

	assert.True(t, PlaceCoordinates(json.RawMessage(`[]`)).IsAbsent())
}
