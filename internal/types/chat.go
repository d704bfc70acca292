package types

import "time"

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the conversation history. Items are drag candidates.
type ChatMessage struct {
	ID        string          `json:"id"`
	Role      ChatRole        `json:"role"`
	Content   string          `json:"content"`
	Items     []ItineraryItem `json:"items,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// SearchArea is a circle on the map. Center is [longitude, latitude], Radius in km.
type SearchArea struct {
	Center [2]float64 `json:"center"`
	Radius float64    `json:"radius"`
}

// CenterCoordinates returns Center as a Coordinates value.
func (a SearchArea) CenterCoordinates() Coordinates {
	return Coordinates{Longitude: a.Center[0], Latitude: a.Center[1]}
}

// Place is a point of interest returned by an area search.
type Place struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Distance    float64      `json:"distance,omitempty"`
}
