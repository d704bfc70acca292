package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/api/backend"
	"github.com/FACorreiaa/go-travel-planner/internal/api/extract"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var ErrNoAdjustment = errors.New("no adjustment to review")

type liveState struct {
	mood       types.Mood
	location   string
	schedule   []types.Activity
	adjustment *types.AdjustmentResult
}

// Live is the re-routing state shown next to the live itinerary.
type Live struct {
	Mood            types.Mood              `json:"mood,omitempty"`
	CurrentLocation string                  `json:"current_location,omitempty"`
	Schedule        []types.Activity        `json:"schedule"`
	Adjustment      *types.AdjustmentResult `json:"adjustment,omitempty"`
}

// AdjustInput overrides the stored mood, time and location when set.
// Itinerary falls back to the last accepted schedule.
type AdjustInput struct {
	Mood            string
	CurrentTime     string
	CurrentLocation string
	Itinerary       []types.Activity
}

func (o *Orchestrator) Live() Live {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := Live{
		Mood:            o.live.mood,
		CurrentLocation: o.live.location,
		Schedule:        append([]types.Activity{}, o.live.schedule...),
	}
	if o.live.adjustment != nil {
		adj := *o.live.adjustment
		out.Adjustment = &adj
	}
	return out
}

// UpdateMood records the traveler's state and reports it to the backend.
func (o *Orchestrator) UpdateMood(ctx context.Context, mood, location string) error {
	l := o.logger.With(slog.String("method", "UpdateMood"))
	m, err := types.ParseMood(mood)
	if err != nil {
		return err
	}
	sessionID, ok := o.SessionID()
	if !ok {
		return types.ErrNoSession
	}
	location = strings.TrimSpace(location)

	o.mu.Lock()
	o.live.mood = m
	if location != "" {
		o.live.location = location
	}
	location = o.live.location
	o.mu.Unlock()

	err = o.backend.UpdateMood(ctx, sessionID, backend.MoodUpdate{
		MoodState:       m,
		CurrentTime:     o.localTime(ctx, location),
		CurrentLocation: location,
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to update mood", slog.Any("error", err))
		o.notifyFailure(ctx, err, "Failed to update mood")
		return err
	}
	return nil
}

// Adjust asks the backend to re-plan the schedule for the current mood. The
// result is kept for review; a later response replaces an earlier one.
func (o *Orchestrator) Adjust(ctx context.Context, in AdjustInput) (*types.AdjustmentResult, error) {
	l := o.logger.With(slog.String("method", "Adjust"))
	ctx, span := otel.Tracer("ChatOrchestrator").Start(ctx, "Adjust", trace.WithAttributes(
		attribute.String("workspace.id", o.workspaceID),
	))
	defer span.End()

	o.mu.Lock()
	mood, location, schedule := o.live.mood, o.live.location, o.live.schedule
	o.mu.Unlock()

	if in.Mood != "" {
		m, err := types.ParseMood(in.Mood)
		if err != nil {
			return nil, err
		}
		mood = m
	}
	if mood == "" {
		return nil, types.ErrMoodRequired
	}
	if len(in.Itinerary) > 0 {
		schedule = in.Itinerary
	}
	if len(schedule) == 0 {
		return nil, types.ErrNoActiveItinerary
	}
	sessionID, ok := o.SessionID()
	if !ok {
		return nil, types.ErrNoSession
	}
	if loc := strings.TrimSpace(in.CurrentLocation); loc != "" {
		location = loc
	}
	now := strings.TrimSpace(in.CurrentTime)
	if now == "" {
		now = o.localTime(ctx, location)
	}

	result, err := o.backend.AdjustItinerary(ctx, sessionID, types.AdjustRequest{
		Itinerary:       schedule,
		Mood:            mood,
		CurrentTime:     now,
		CurrentLocation: location,
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to adjust itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "adjust failed")
		o.notifyFailure(ctx, err, "Failed to adjust itinerary")
		return nil, err
	}

	o.mu.Lock()
	o.live.mood = mood
	o.live.location = location
	o.live.schedule = append([]types.Activity{}, schedule...)
	o.live.adjustment = result
	o.mu.Unlock()

	span.SetAttributes(attribute.Int("adjust.cancelled", len(result.ActivitiesToCancel)))
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// Accept applies the pending adjustment to current, or to the stored
// schedule when current is empty, and makes the result the new schedule.
func (o *Orchestrator) Accept(ctx context.Context, current []types.Activity) ([]types.Activity, error) {
	o.mu.Lock()
	adj := o.live.adjustment
	if len(current) == 0 {
		current = o.live.schedule
	}
	location := o.live.location
	o.mu.Unlock()
	if adj == nil {
		return nil, ErrNoAdjustment
	}

	merged := extract.MergeAdjustment(current, *adj, o.localTime(ctx, location))

	o.mu.Lock()
	o.live.schedule = merged
	o.live.adjustment = nil
	o.mu.Unlock()

	o.notify(ctx, types.LevelSuccess, "Itinerary updated", fmt.Sprintf("Your schedule now has %d activities.", len(merged)))
	return merged, nil
}

// Reject discards the pending adjustment.
func (o *Orchestrator) Reject() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.live.adjustment = nil
}

// SetSchedule replaces the live schedule, typically from the active itinerary.
func (o *Orchestrator) SetSchedule(schedule []types.Activity) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.live.schedule = append([]types.Activity{}, schedule...)
}

// ActivitiesFromItinerary flattens an itinerary into live activities, the
// first marked current and the rest upcoming.
func ActivitiesFromItinerary(it types.Itinerary) []types.Activity {
	var out []types.Activity
	for _, day := range it.Days {
		for _, item := range day.Items {
			status := types.StatusUpcoming
			if len(out) == 0 {
				status = types.StatusCurrent
			}
			out = append(out, types.Activity{
				ID:          item.ID,
				Time:        item.Time,
				Activity:    item.Title,
				Location:    item.Location,
				Description: item.Description,
				Status:      status,
				Type:        string(item.Type),
			})
		}
	}
	return out
}

// localTime is HH:MM at location when it can be resolved, else server time.
func (o *Orchestrator) localTime(ctx context.Context, location string) string {
	now := o.clock()
	if location == "" || o.geocoder == nil || o.timezones == nil {
		return now.Format("15:04")
	}
	c, err := o.geocoder.Geocode(ctx, location)
	if err != nil {
		o.logger.DebugContext(ctx, "Could not resolve current location", slog.String("location", location), slog.Any("error", err))
		return now.Format("15:04")
	}
	name := o.timezones.GetTimezoneName(c.Longitude, c.Latitude)
	loc, err := time.LoadLocation(name)
	if name == "" || err != nil {
		return now.Format("15:04")
	}
	return now.In(loc).Format("15:04")
}

func (o *Orchestrator) notifyFailure(ctx context.Context, err error, title string) {
	if errors.Is(err, types.ErrSessionExpired) {
		o.notify(ctx, types.LevelError, "Session expired", SessionExpiredMsg)
		return
	}
	o.notify(ctx, types.LevelError, title, title+". Please try again.")
}
