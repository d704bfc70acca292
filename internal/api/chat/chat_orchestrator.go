package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-travel-planner/internal/api/backend"
	"github.com/FACorreiaa/go-travel-planner/internal/api/extract"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	Greeting          = "Hello! I can help you plan your trip. Tell me where you want to travel and for how long."
	SessionExpiredMsg = "Session expired. Please refresh the page to create a new session."

	circleSearchLimit     = 10
	defaultLogTimeout     = 10 * time.Second
	defaultGeocodeWorkers = 4
)

var ErrEmptyMessage = errors.New("message is empty")

// Backend is the subset of the session backend the orchestrator drives.
// *backend.Client implements it.
type Backend interface {
	CreateSession(ctx context.Context) (string, error)
	SuggestPlaces(ctx context.Context, sessionID, destination, duration string) (*backend.SuggestPlacesResponse, error)
	LogChat(ctx context.Context, sessionID string, msg backend.ChatLogRequest) error
	CircleSearch(ctx context.Context, req backend.CircleSearchRequest) ([]backend.CirclePlace, error)
	UpdateMood(ctx context.Context, sessionID string, update backend.MoodUpdate) error
	AdjustItinerary(ctx context.Context, sessionID string, req types.AdjustRequest) (*types.AdjustmentResult, error)
	BookingLookup(ctx context.Context, sessionID string, kind types.BookingKind, itineraryJSON string) (string, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (types.Coordinates, error)
}

type Notifier interface {
	Notify(ctx context.Context, workspaceID string, level types.NotificationLevel, title, message string)
}

// AreaSearcher finds places inside a drawn area without the session backend.
type AreaSearcher interface {
	SearchNearby(ctx context.Context, query string, area types.SearchArea) ([]types.Place, error)
}

// TimezoneFinder resolves an IANA zone name. tzf.F implements it.
type TimezoneFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

type Options struct {
	WorkspaceID    string
	Backend        Backend
	Geocoder       Geocoder
	AreaSearcher   AreaSearcher
	Notifier       Notifier
	Timezones      TimezoneFinder
	LogTimeout     time.Duration
	GeocodeWorkers int
	Logger         *slog.Logger
}

// Orchestrator bridges free-text chat to the session backend for one
// workspace. State is guarded by mu; backend calls run without it held.
type Orchestrator struct {
	mu          sync.Mutex
	mountOnce   sync.Once
	sessionID   string
	messages    []types.ChatMessage
	suggested   []types.ItineraryItem
	pendingArea *types.SearchArea
	destination string
	duration    string
	live        liveState
	bookings    map[types.BookingKind]extract.Formatted

	workspaceID    string
	backend        Backend
	geocoder       Geocoder
	areaSearcher   AreaSearcher
	notifier       Notifier
	timezones      TimezoneFinder
	logTimeout     time.Duration
	geocodeWorkers int
	logger         *slog.Logger
	now            func() time.Time
	bg             sync.WaitGroup
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.LogTimeout <= 0 {
		opts.LogTimeout = defaultLogTimeout
	}
	if opts.GeocodeWorkers <= 0 {
		opts.GeocodeWorkers = defaultGeocodeWorkers
	}
	o := &Orchestrator{
		bookings:       make(map[types.BookingKind]extract.Formatted),
		workspaceID:    opts.WorkspaceID,
		backend:        opts.Backend,
		geocoder:       opts.Geocoder,
		areaSearcher:   opts.AreaSearcher,
		notifier:       opts.Notifier,
		timezones:      opts.Timezones,
		logTimeout:     opts.LogTimeout,
		geocodeWorkers: opts.GeocodeWorkers,
		logger:         opts.Logger.With(slog.String("component", "chat"), slog.String("workspace_id", opts.WorkspaceID)),
		now:            time.Now,
	}
	o.messages = []types.ChatMessage{o.newMessage(types.RoleAssistant, Greeting, nil)}
	return o
}

// SetClock replaces the time source used for ids and default times.
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.now = now
}

// Mount obtains the session handle. Only the first call does anything; a
// failure leaves the workspace without a session.
func (o *Orchestrator) Mount(ctx context.Context) {
	o.mountOnce.Do(func() {
		ctx, span := otel.Tracer("ChatOrchestrator").Start(ctx, "Mount")
		defer span.End()

		id, err := o.backend.CreateSession(ctx)
		if err != nil {
			o.logger.ErrorContext(ctx, "Failed to create session", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "create session failed")
			o.notify(ctx, types.LevelError, "Session unavailable", "Could not start a planning session. Please refresh the page.")
			return
		}
		o.mu.Lock()
		o.sessionID = id
		o.mu.Unlock()
		o.logger.InfoContext(ctx, "Session created", slog.String("session_id", id))
		span.SetStatus(codes.Ok, "")
	})
}

// SessionID returns the handle and whether one was obtained.
func (o *Orchestrator) SessionID() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID, o.sessionID != ""
}

func (o *Orchestrator) Messages() []types.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]types.ChatMessage, len(o.messages))
	copy(out, o.messages)
	return out
}

// Suggested returns the latest places offered for dragging.
func (o *Orchestrator) Suggested() []types.ItineraryItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]types.ItineraryItem, len(o.suggested))
	copy(out, o.suggested)
	return out
}

// Intent is the destination and duration of the last suggestion request.
func (o *Orchestrator) Intent() extract.Intent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return extract.Intent{Destination: o.destination, Duration: o.duration}
}

func (o *Orchestrator) PendingArea() *types.SearchArea {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pendingArea == nil {
		return nil
	}
	a := *o.pendingArea
	return &a
}

// OnCircleDrawn routes the next message to an area search.
func (o *Orchestrator) OnCircleDrawn(area types.SearchArea) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pendingArea = &area
	o.messages = append(o.messages, o.newMessage(types.RoleAssistant, fmt.Sprintf(
		"I see you've drawn a circle with a radius of %.2f km. What kind of places would you like to find in this area?",
		area.Radius), nil))
}

// Wait blocks until background context logging has finished.
func (o *Orchestrator) Wait() {
	o.bg.Wait()
}

// SendMessage appends the user's message, forwards it to the context log and
// answers it with either an area search or destination suggestions. It
// returns the messages it appended.
func (o *Orchestrator) SendMessage(ctx context.Context, content string) ([]types.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	sessionID, ok := o.SessionID()
	if !ok {
		return nil, types.ErrNoSession
	}

	ctx, span := otel.Tracer("ChatOrchestrator").Start(ctx, "SendMessage", trace.WithAttributes(
		attribute.String("workspace.id", o.workspaceID),
	))
	defer span.End()

	o.mu.Lock()
	start := len(o.messages)
	o.messages = append(o.messages, o.newMessage(types.RoleUser, content, nil))
	area := o.pendingArea
	o.mu.Unlock()

	o.logAsync(ctx, sessionID, backend.ChatLogRequest{Message: content, Source: string(types.RoleUser)})

	if area != nil {
		span.SetAttributes(attribute.String("chat.branch", "circle"))
		o.searchArea(ctx, content, *area)
	} else {
		span.SetAttributes(attribute.String("chat.branch", "suggest"))
		o.suggest(ctx, sessionID, content)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	// a concurrent request may have appended in between; return everything since ours
	out := make([]types.ChatMessage, len(o.messages)-start)
	copy(out, o.messages[start:])
	return out, nil
}

func (o *Orchestrator) searchArea(ctx context.Context, query string, area types.SearchArea) {
	l := o.logger.With(slog.String("method", "searchArea"))

	items, err := o.areaItems(ctx, query, area)

	o.mu.Lock()
	o.pendingArea = nil
	o.mu.Unlock()

	if err != nil {
		l.ErrorContext(ctx, "Area search failed", slog.Any("error", err))
		o.notify(ctx, types.LevelError, "Search failed", "Failed to search places in the selected area. Please try again.")
		o.appendAssistant("Sorry, I couldn't search that area right now. Please try again.", nil)
		return
	}

	if len(items) == 0 {
		o.appendAssistant(fmt.Sprintf(
			"I couldn't find any places matching %q within your selected area. Try a larger area or a different search.", query), nil)
		return
	}

	o.mu.Lock()
	o.suggested = items
	o.mu.Unlock()
	o.appendAssistant(fmt.Sprintf("I found %d places matching %q within your selected area.", len(items), query), items)
}

// areaItems asks the session backend first and falls back to the map
// search when the backend fails and an AreaSearcher is configured.
func (o *Orchestrator) areaItems(ctx context.Context, query string, area types.SearchArea) ([]types.ItineraryItem, error) {
	ts := o.clock().UnixMilli()

	places, err := o.backend.CircleSearch(ctx, backend.CircleSearchRequest{
		Query:  query,
		Center: area.Center,
		Radius: area.Radius,
		Limit:  circleSearchLimit,
	})
	if err == nil {
		items := make([]types.ItineraryItem, 0, len(places))
		for i, p := range places {
			items = append(items, types.ItineraryItem{
				ID:          fmt.Sprintf("search-%d-%d", i, ts),
				Title:       p.Name,
				Description: p.Description,
				Type:        types.ItemTypeAttraction,
				Coordinates: extract.PlaceCoordinates(p.Coordinates).Ptr(),
			})
		}
		return items, nil
	}
	if o.areaSearcher == nil {
		return nil, err
	}

	o.logger.WarnContext(ctx, "Backend area search failed, using map search", slog.Any("error", err))
	nearby, ferr := o.areaSearcher.SearchNearby(ctx, query, area)
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	if len(nearby) > circleSearchLimit {
		nearby = nearby[:circleSearchLimit]
	}
	items := make([]types.ItineraryItem, 0, len(nearby))
	for i, p := range nearby {
		items = append(items, types.ItineraryItem{
			ID:          fmt.Sprintf("search-%d-%d", i, ts),
			Title:       p.Name,
			Description: p.Description,
			Type:        types.ItemTypeAttraction,
			Coordinates: p.Coordinates,
		})
	}
	return items, nil
}

func (o *Orchestrator) suggest(ctx context.Context, sessionID, content string) {
	l := o.logger.With(slog.String("method", "suggest"))
	intent := extract.ExtractIntent(content)

	o.mu.Lock()
	o.destination, o.duration = intent.Destination, intent.Duration
	o.mu.Unlock()
	o.appendAssistant(fmt.Sprintf("Searching for places in %s for a %s trip...", intent.Destination, intent.Duration), nil)

	res, err := o.backend.SuggestPlaces(ctx, sessionID, intent.Destination, intent.Duration)
	if err != nil {
		l.ErrorContext(ctx, "Suggest places failed", slog.String("destination", intent.Destination), slog.Any("error", err))
		if errors.Is(err, types.ErrSessionExpired) {
			o.notify(ctx, types.LevelError, "Session expired", SessionExpiredMsg)
			o.appendAssistant(SessionExpiredMsg, nil)
			return
		}
		o.notify(ctx, types.LevelError, "Failed to load suggestions", "Failed to load suggestions. Please try again.")
		o.appendAssistant(fmt.Sprintf("Sorry, I couldn't find suggestions for %s. Please try again.", intent.Destination), nil)
		return
	}

	items := o.attractionItems(ctx, res.Attractions)

	o.mu.Lock()
	o.suggested = items
	o.mu.Unlock()

	o.appendAssistant(fmt.Sprintf(
		"I found some great places to visit in %s for your %s trip. You can drag these suggestions to your itinerary:",
		intent.Destination, intent.Duration), items)
	if res.Suggestions != "" {
		if text := extract.Structure(res.Suggestions).Text; text != "" {
			o.appendAssistant(text, nil)
		}
	}

	o.logAsync(ctx, sessionID, backend.ChatLogRequest{
		Message:  fmt.Sprintf("Suggested places for %s for %s", intent.Destination, intent.Duration),
		Source:   "system",
		Response: res.Suggestions,
	})
}

// attractionItems converts backend attractions into draggable items. Those
// without usable coordinates but with a location query are geocoded
// concurrently; lookup failures leave the coordinates absent.
func (o *Orchestrator) attractionItems(ctx context.Context, attractions []backend.Attraction) []types.ItineraryItem {
	ts := o.clock().UnixMilli()
	items := make([]types.ItineraryItem, len(attractions))
	for i, a := range attractions {
		items[i] = types.ItineraryItem{
			ID:          fmt.Sprintf("place-%d-%d", i, ts),
			Title:       a.Name,
			Description: a.Description,
			Location:    a.LocationQuery,
			Type:        types.ItemTypeAttraction,
			Coordinates: extract.CoordinatesFromJSON(a.Coordinates).Ptr(),
		}
	}
	if o.geocoder == nil {
		return items
	}

	var g errgroup.Group
	g.SetLimit(o.geocodeWorkers)
	for i := range items {
		if items[i].Coordinates != nil || items[i].Location == "" {
			continue
		}
		g.Go(func() error {
			c, err := o.geocoder.Geocode(ctx, items[i].Location)
			if err != nil {
				o.logger.DebugContext(ctx, "Attraction geocoding failed",
					slog.String("location", items[i].Location), slog.Any("error", err))
				return nil
			}
			items[i].Coordinates = &c
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// logAsync posts to the backend context log without blocking the caller.
func (o *Orchestrator) logAsync(ctx context.Context, sessionID string, msg backend.ChatLogRequest) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.logTimeout)
	o.bg.Add(1)
	go func() {
		defer o.bg.Done()
		defer cancel()
		if err := o.backend.LogChat(ctx, sessionID, msg); err != nil {
			o.logger.WarnContext(ctx, "Failed to add to chat context", slog.String("source", msg.Source), slog.Any("error", err))
		}
	}()
}

func (o *Orchestrator) appendAssistant(content string, items []types.ItineraryItem) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, o.newMessage(types.RoleAssistant, content, items))
}

// newMessage must be called with mu held or before the orchestrator is shared.
func (o *Orchestrator) newMessage(role types.ChatRole, content string, items []types.ItineraryItem) types.ChatMessage {
	return types.ChatMessage{
		ID:        "msg-" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Items:     items,
		CreatedAt: o.now().UTC(),
	}
}

func (o *Orchestrator) clock() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.now()
}

func (o *Orchestrator) notify(ctx context.Context, level types.NotificationLevel, title, message string) {
	if o.notifier == nil {
		return
	}
	o.notifier.Notify(ctx, o.workspaceID, level, title, message)
}
