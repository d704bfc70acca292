package types

import (
	"fmt"
	"strings"
)

// Mood is the traveler's reported state used for re-routing.
type Mood string

const (
	MoodTired       Mood = "tired"
	MoodEnergetic   Mood = "energetic"
	MoodHungry      Mood = "hungry"
	MoodRelaxed     Mood = "relaxed"
	MoodAdventurous Mood = "adventurous"
)

var Moods = []Mood{MoodTired, MoodEnergetic, MoodHungry, MoodRelaxed, MoodAdventurous}

func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return "", ErrMoodRequired
	}
	for _, known := range Moods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownMood, s)
}

type ActivityStatus string

const (
	StatusCompleted ActivityStatus = "completed"
	StatusCurrent   ActivityStatus = "current"
	StatusUpcoming  ActivityStatus = "upcoming"
)

// Activity is one entry of the live schedule.
type Activity struct {
	ID          string         `json:"id,omitempty"`
	Time        string         `json:"time"`
	Activity    string         `json:"activity"`
	Location    string         `json:"location"`
	Description string         `json:"description,omitempty"`
	Status      ActivityStatus `json:"status,omitempty"`
	Type        string         `json:"type,omitempty"`
}

type AlternativeActivity struct {
	Name          string `json:"name"`
	Location      string `json:"location"`
	Reason        string `json:"reason"`
	EstimatedTime string `json:"estimated_time"`
}

// AdjustmentResult is the backend's mood-based re-plan.
type AdjustmentResult struct {
	ActivitiesToCancel    []string              `json:"activities_to_cancel"`
	AlternativeActivities []AlternativeActivity `json:"alternative_activities"`
	UpdatedSchedule       []Activity            `json:"updated_schedule"`
	EstimatedCostImpact   string                `json:"estimated_cost_impact"`
	Reasoning             string                `json:"reasoning"`
}

// AdjustRequest carries the inputs of a re-route request.
type AdjustRequest struct {
	Itinerary       []Activity `json:"current_itinerary"`
	Mood            Mood       `json:"mood_state"`
	CurrentTime     string     `json:"current_time"`
	CurrentLocation string     `json:"current_location"`
}
