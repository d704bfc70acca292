package types

import "errors"

var (
	ErrSessionExpired     = errors.New("session expired")
	ErrBackendUnavailable = errors.New("backend request failed")
	ErrNoSession          = errors.New("no session available")
	ErrNoActiveItinerary  = errors.New("no active itinerary")
	ErrMoodRequired       = errors.New("please select your current mood/state first")
	ErrUnknownMood        = errors.New("unknown mood")
	ErrNotFound           = errors.New("not found")
	ErrNoGeocodeResult    = errors.New("no geocoding result")
	ErrNoResults          = errors.New("no results")
)
