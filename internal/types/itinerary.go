package types

import (
	"math"
	"strings"
	"time"
)

// ItemType classifies an itinerary entry.
type ItemType string

const (
	ItemTypeAttraction  ItemType = "attraction"
	ItemTypeRestaurant  ItemType = "restaurant"
	ItemTypeHotel       ItemType = "hotel"
	ItemTypeTransport   ItemType = "transport"
	ItemTypeActivity    ItemType = "activity"
	ItemTypeOther       ItemType = "other"
	ItemTypeAlternative ItemType = "alternative"
)

// ParseItemType maps free text onto a known ItemType, defaulting to other.
func ParseItemType(s string) ItemType {
	switch t := ItemType(strings.ToLower(strings.TrimSpace(s))); t {
	case ItemTypeAttraction, ItemTypeRestaurant, ItemTypeHotel, ItemTypeTransport, ItemTypeActivity:
		return t
	default:
		return ItemTypeOther
	}
}

// Coordinates is a longitude/latitude pair in degrees.
type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Valid reports whether both components are finite and inside WGS84 bounds.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Longitude) || math.IsNaN(c.Latitude) || math.IsInf(c.Longitude, 0) || math.IsInf(c.Latitude, 0) {
		return false
	}
	return math.Abs(c.Latitude) <= 90 && math.Abs(c.Longitude) <= 180
}

// LatLng is the normalized result of coordinate parsing: either absent or a pair.
type LatLng struct {
	coords  Coordinates
	present bool
}

// Absent is the zero LatLng.
var Absent = LatLng{}

// Present wraps a coordinate pair.
func Present(c Coordinates) LatLng {
	return LatLng{coords: c, present: true}
}

// Get returns the pair and whether it is present.
func (l LatLng) Get() (Coordinates, bool) {
	return l.coords, l.present
}

func (l LatLng) IsAbsent() bool { return !l.present }

// Ptr returns nil for absent coordinates so they drop out of JSON.
func (l LatLng) Ptr() *Coordinates {
	if !l.present {
		return nil
	}
	c := l.coords
	return &c
}

// ItineraryItem is a single place or activity entry.
type ItineraryItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Time        string       `json:"time,omitempty"`
	Location    string       `json:"location,omitempty"`
	Type        ItemType     `json:"type"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Placeable reports whether the item can be rendered on the map.
func (i ItineraryItem) Placeable() bool {
	return i.Coordinates != nil && i.Coordinates.Valid()
}

type ItineraryDay struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Items []ItineraryItem `json:"items"`
}

type Itinerary struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Days  []ItineraryDay `json:"days"`
}

// SavedItinerary is a persisted copy of an itinerary.
type SavedItinerary struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	Duration    string    `json:"duration"`
	Itinerary   Itinerary `json:"itinerary"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateItineraryRequest is forwarded to the session backend when an
// itinerary is saved. Itinerary holds the JSON-encoded tree.
type CreateItineraryRequest struct {
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
	Itinerary   string `json:"itinerary"`
}
