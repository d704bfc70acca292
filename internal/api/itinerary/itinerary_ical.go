package itinerary

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var itemTimeLayouts = []string{"15:04", "3:04 PM", "3:04PM", "3 PM", "3PM"}

// ExportICal renders an itinerary as an iCalendar document. Day n starts n
// days after start. Items without a parseable time are slotted hourly from
// 09:00 in list order; every event lasts one hour.
func ExportICal(it types.Itinerary, start time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//go-travel-planner//itinerary export//EN")

	stamp := time.Now().UTC()
	base := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	for d, day := range it.Days {
		date := base.AddDate(0, 0, d)
		for i, item := range day.Items {
			at, ok := parseItemTime(item.Time, date)
			if !ok {
				at = date.Add(time.Duration(9+i) * time.Hour)
			}

			event := cal.AddEvent(fmt.Sprintf("%s@%s", item.ID, it.ID))
			event.SetDtStampTime(stamp)
			event.SetStartAt(at)
			event.SetEndAt(at.Add(time.Hour))
			event.SetSummary(item.Title)
			if desc := eventDescription(day, item); desc != "" {
				event.SetDescription(desc)
			}
			if item.Location != "" {
				event.SetLocation(item.Location)
			}
		}
	}
	return cal.Serialize()
}

func parseItemTime(raw string, date time.Time) (time.Time, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range itemTimeLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), true
	}
	return time.Time{}, false
}

func eventDescription(day types.ItineraryDay, item types.ItineraryItem) string {
	parts := []string{day.Title}
	if item.Description != "" {
		parts = append(parts, item.Description)
	}
	if item.Coordinates != nil {
		parts = append(parts, fmt.Sprintf("%.5f,%.5f", item.Coordinates.Latitude, item.Coordinates.Longitude))
	}
	return strings.Join(parts, " | ")
}
