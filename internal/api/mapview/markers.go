package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/FACorreiaa/go-travel-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	KindItinerary = "itinerary"
	KindSuggested = "suggested"
)

// View is the camera the map should use for a marker set. Bounds is
// [minLng, minLat, maxLng, maxLat] and is set when there is more than one
// marker.
type View struct {
	Center types.Coordinates `json:"center"`
	Zoom   float64           `json:"zoom"`
	Bounds []float64         `json:"bounds,omitempty"`
}

// DefaultView shows the whole of India.
var DefaultView = View{
	Center: types.Coordinates{Longitude: 78.9629, Latitude: 20.5937},
	Zoom:   4,
}

const singleMarkerZoom = 12

// Markers builds the GeoJSON layer for the active itinerary (only the active
// day when dayOnly is set) plus suggested places. Items without valid
// coordinates are left out.
func Markers(snap itinerary.Snapshot, dayOnly bool, suggested []types.ItineraryItem) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, item := range snap.ActiveItems(dayOnly) {
		if f := marker(item, KindItinerary); f != nil {
			fc.Append(f)
		}
	}
	for _, item := range suggested {
		if f := marker(item, KindSuggested); f != nil {
			fc.Append(f)
		}
	}
	if len(fc.Features) > 0 {
		fc.BBox = geojson.NewBBox(bound(fc))
	}
	return fc
}

// ViewFor picks the camera for a marker set.
func ViewFor(fc *geojson.FeatureCollection) View {
	switch len(fc.Features) {
	case 0:
		return DefaultView
	case 1:
		p := fc.Features[0].Point()
		return View{Center: types.Coordinates{Longitude: p.Lon(), Latitude: p.Lat()}, Zoom: singleMarkerZoom}
	}
	b := bound(fc)
	c := b.Center()
	return View{
		Center: types.Coordinates{Longitude: c.Lon(), Latitude: c.Lat()},
		Bounds: []float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()},
	}
}

func marker(item types.ItineraryItem, kind string) *geojson.Feature {
	if !item.Placeable() {
		return nil
	}
	f := geojson.NewFeature(point(*item.Coordinates))
	f.ID = item.ID
	f.Properties["title"] = item.Title
	f.Properties["type"] = string(item.Type)
	f.Properties["kind"] = kind
	if item.Description != "" {
		f.Properties["description"] = item.Description
	}
	if item.Time != "" {
		f.Properties["time"] = item.Time
	}
	return f
}

func bound(fc *geojson.FeatureCollection) orb.Bound {
	b := fc.Features[0].Geometry.Bound()
	for _, f := range fc.Features[1:] {
		b = b.Union(f.Geometry.Bound())
	}
	return b
}
