package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// DefaultCircleSteps is the vertex count of drawn circle outlines.
const DefaultCircleSteps = 64

// MeanEarthRadius in meters. The map client measures with the mean radius,
// while orb works on the equatorial one, so orb results are rescaled.
const MeanEarthRadius = 6371008.8

const radiusScale = MeanEarthRadius / orb.EarthRadius

// Distance is the great-circle distance between a and b in kilometers.
func Distance(a, b types.Coordinates) float64 {
	return geo.DistanceHaversine(point(a), point(b)) * radiusScale / 1000
}

// CirclePolygon approximates a circle of radiusKm around center with a
// closed ring of steps vertices.
func CirclePolygon(center types.Coordinates, radiusKm float64, steps int) orb.Polygon {
	if steps < 3 {
		steps = DefaultCircleSteps
	}
	c := point(center)
	ring := make(orb.Ring, 0, steps+1)
	for i := 0; i < steps; i++ {
		bearing := float64(i) * 360 / float64(steps)
		ring = append(ring, geo.PointAtBearingAndDistance(c, bearing, radiusKm*1000/radiusScale))
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

func point(c types.Coordinates) orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}
