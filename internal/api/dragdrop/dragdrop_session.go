package dragdrop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/api/extract"
	"github.com/FACorreiaa/go-travel-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// BoardTarget is the only drop target that commits an item.
const BoardTarget = "itinerary-board"

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "idle":
		*s = Idle
	case "dragging":
		*s = Dragging
	default:
		return fmt.Errorf("unknown drag state %q", name)
	}
	return nil
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (types.Coordinates, error)
}

// Committer receives dropped items. *itinerary.Store implements it.
type Committer interface {
	AppendToActive(item types.ItineraryItem) itinerary.Placement
}

type Notifier interface {
	Notify(ctx context.Context, workspaceID string, level types.NotificationLevel, title, message string)
}

type DropResult struct {
	Committed     bool                 `json:"committed"`
	Item          *types.ItineraryItem `json:"item,omitempty"`
	Placement     *itinerary.Placement `json:"placement,omitempty"`
	GeocodeFailed bool                 `json:"geocode_failed,omitempty"`
	ShowMap       bool                 `json:"show_map"`
}

// Session tracks the single in-flight drag of a workspace.
type Session struct {
	mu    sync.Mutex
	state State
	item  types.ItineraryItem

	workspaceID string
	committer   Committer
	geocoder    Geocoder
	notifier    Notifier
	logger      *slog.Logger
	now         func() time.Time
}

// NewSession builds an idle session. geocoder and notifier may be nil.
func NewSession(workspaceID string, committer Committer, geocoder Geocoder, notifier Notifier, logger *slog.Logger) *Session {
	return &Session{
		workspaceID: workspaceID,
		committer:   committer,
		geocoder:    geocoder,
		notifier:    notifier,
		logger:      logger.With(slog.String("component", "dragdrop"), slog.String("workspace_id", workspaceID)),
		now:         time.Now,
	}
}

// SetClock replaces the clock used to derive committed item ids.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start captures the dragged item from its source payload. An undecodable
// payload is logged and leaves the session idle.
func (s *Session) Start(payload string) State {
	item, err := decodePayload(payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn("Failed to decode drag payload", slog.Any("error", err))
		s.state, s.item = Idle, types.ItineraryItem{}
		return s.state
	}
	s.state, s.item = Dragging, item
	s.logger.Debug("Drag started", slog.String("item_id", item.ID))
	return s.state
}

// Cancel abandons the current drag.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, s.item = Idle, types.ItineraryItem{}
}

// Drop ends the drag. Only a drop on BoardTarget commits; the item is
// geocoded first when it has a location but no coordinates.
func (s *Session) Drop(ctx context.Context, target string) DropResult {
	s.mu.Lock()
	state, item, now := s.state, s.item, s.now
	s.state, s.item = Idle, types.ItineraryItem{}
	s.mu.Unlock()

	if state != Dragging || target != BoardTarget {
		return DropResult{}
	}

	ctx, span := otel.Tracer("DragDropSession").Start(ctx, "Drop", trace.WithAttributes(
		attribute.String("workspace.id", s.workspaceID),
		attribute.String("item.id", item.ID),
	))
	defer span.End()

	var result DropResult
	if item.Coordinates == nil && strings.TrimSpace(item.Location) != "" {
		if coords, err := s.geocode(ctx, item.Location); err != nil {
			result.GeocodeFailed = true
			span.AddEvent("geocode failed")
			s.logger.WarnContext(ctx, "Geocoding failed, committing without coordinates",
				slog.String("location", item.Location), slog.Any("error", err))
			if s.notifier != nil {
				s.notifier.Notify(ctx, s.workspaceID, types.LevelError, "Location not found",
					fmt.Sprintf("Could not find coordinates for %s", item.Location))
			}
		} else {
			item.Coordinates = &coords
		}
	}

	item.ID = fmt.Sprintf("%s-%d", item.ID, now().UnixMilli())
	placement := s.committer.AppendToActive(item)
	item.ID = placement.ItemID
	metrics.Get().ItemsCommittedTotal.Add(ctx, 1)

	result.Committed = true
	result.Item = &item
	result.Placement = &placement
	result.ShowMap = item.Placeable()

	s.logger.InfoContext(ctx, "Item dropped on itinerary",
		slog.String("item_id", item.ID),
		slog.String("itinerary_id", placement.ItineraryID),
		slog.Bool("created_itinerary", placement.Created))
	span.SetStatus(codes.Ok, "item committed")
	return result
}

func (s *Session) geocode(ctx context.Context, location string) (types.Coordinates, error) {
	if s.geocoder == nil {
		return types.Coordinates{}, types.ErrNoGeocodeResult
	}
	coords, err := s.geocoder.Geocode(ctx, location)
	if err != nil {
		return types.Coordinates{}, err
	}
	if !coords.Valid() {
		return types.Coordinates{}, types.ErrNoGeocodeResult
	}
	return coords, nil
}

// dragPayload mirrors ItineraryItem but leaves coordinates raw so any shape
// the backend produced is accepted.
type dragPayload struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Time        string          `json:"time"`
	Location    string          `json:"location"`
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func decodePayload(payload string) (types.ItineraryItem, error) {
	var p dragPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return types.ItineraryItem{}, fmt.Errorf("decode drag payload: %w", err)
	}
	if p.ID == "" || p.Title == "" {
		return types.ItineraryItem{}, errors.New("drag payload missing id or title")
	}
	item := types.ItineraryItem{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Time:        p.Time,
		Location:    p.Location,
		Type:        types.ParseItemType(p.Type),
	}
	if c, ok := extract.CoordinatesFromJSON(p.Coordinates).Get(); ok && c.Valid() {
		item.Coordinates = &c
	}
	return item, nil
}
