package types

import "fmt"

// BookingKind selects one of the backend booking lookups.
type BookingKind string

const (
	BookingTransportation      BookingKind = "transportation"
	BookingAccommodation       BookingKind = "accommodation"
	BookingLocalTransportation BookingKind = "local-transportation"
	BookingComprehensivePlan   BookingKind = "comprehensive-plan"
)

var BookingKinds = []BookingKind{
	BookingTransportation,
	BookingAccommodation,
	BookingLocalTransportation,
	BookingComprehensivePlan,
}

func ParseBookingKind(s string) (BookingKind, error) {
	for _, k := range BookingKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown booking kind %q", s)
}

// Endpoint is the session-scoped backend path segment.
func (k BookingKind) Endpoint() string {
	switch k {
	case BookingTransportation:
		return "find-transportation-options"
	case BookingAccommodation:
		return "find-accommodation-options"
	case BookingLocalTransportation:
		return "find-local-transportation"
	default:
		return "create-comprehensive-plan"
	}
}

// ResponseField is the JSON field carrying the free-text answer.
func (k BookingKind) ResponseField() string {
	switch k {
	case BookingTransportation:
		return "transportation_options"
	case BookingAccommodation:
		return "accommodation_options"
	case BookingLocalTransportation:
		return "local_transportation"
	default:
		return "comprehensive_plan"
	}
}

// Label is used in user-facing failure messages.
func (k BookingKind) Label() string {
	switch k {
	case BookingTransportation:
		return "transportation options"
	case BookingAccommodation:
		return "accommodation options"
	case BookingLocalTransportation:
		return "local transportation"
	default:
		return "comprehensive plan"
	}
}

// TravelOption is one parsed flight/train/bus/hotel offer.
type TravelOption struct {
	Provider      string   `json:"provider"`
	Price         int      `json:"price"`
	Currency      string   `json:"currency"`
	Rating        *float64 `json:"rating,omitempty"`
	DepartureTime string   `json:"departure_time"`
	ArrivalTime   string   `json:"arrival_time"`
	Duration      string   `json:"duration"`
	FlightNumber  string   `json:"flight_number,omitempty"`
	Availability  string   `json:"availability"`
}

type TravelType string

const (
	TravelFlight TravelType = "flight"
	TravelTrain  TravelType = "train"
	TravelBus    TravelType = "bus"
	TravelHotel  TravelType = "hotel"
)

type TravelSearchParams struct {
	TravelType   TravelType `json:"travel_type"`
	Origin       string     `json:"origin"`
	Destination  string     `json:"destination"`
	Date         string     `json:"date"`
	ReturnDate   string     `json:"return_date,omitempty"`
	NumTravelers int        `json:"num_travelers"`
	MaxPrice     int        `json:"max_price,omitempty"`
	MinRating    float64    `json:"min_rating,omitempty"`
	PreferDirect bool       `json:"prefer_direct"`
	Limit        int        `json:"limit"`
}
