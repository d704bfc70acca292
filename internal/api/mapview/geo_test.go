package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(delhi, delhi), 1e-9)
	// Delhi to Agra is roughly 180 km as the crow flies.
	assert.InDelta(t, 180, Distance(delhi, agra), 5)
	assert.InDelta(t, Distance(delhi, agra), Distance(agra, delhi), 1e-9)
}

func TestDistance_MeanEarthRadius(t *testing.T) {
	// One degree of longitude on the equator with a 6371.0088 km radius.
	d := Distance(types.Coordinates{}, types.Coordinates{Longitude: 1})
	assert.InDelta(t, 111.1951, d, 1e-3)
}

func TestCirclePolygon(t *testing.T) {
	center := types.Coordinates{Longitude: 2.3522, Latitude: 48.8566}
	poly := CirclePolygon(center, 5, 32)

	require.Len(t, poly, 1)
	ring := poly[0]
	require.Len(t, ring, 33)
	assert.Equal(t, ring[0], ring[len(ring)-1])
	for _, p := range ring {
		d := Distance(center, types.Coordinates{Longitude: p[0], Latitude: p[1]})
		assert.InDelta(t, 5, d, 0.01)
	}
}

func TestCirclePolygon_DefaultSteps(t *testing.T) {
	poly := CirclePolygon(delhi, 1, 0)
	assert.Len(t, poly[0], DefaultCircleSteps+1)
}
