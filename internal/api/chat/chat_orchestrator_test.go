package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/api/backend"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreateSession(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) SuggestPlaces(ctx context.Context, sessionID, destination, duration string) (*backend.SuggestPlacesResponse, error) {
	args := m.Called(ctx, sessionID, destination, duration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.SuggestPlacesResponse), args.Error(1)
}

func (m *MockBackend) LogChat(ctx context.Context, sessionID string, msg backend.ChatLogRequest) error {
	args := m.Called(ctx, sessionID, msg)
	return args.Error(0)
}

func (m *MockBackend) CircleSearch(ctx context.Context, req backend.CircleSearchRequest) ([]backend.CirclePlace, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.CirclePlace), args.Error(1)
}

func (m *MockBackend) UpdateMood(ctx context.Context, sessionID string, update backend.MoodUpdate) error {
	args := m.Called(ctx, sessionID, update)
	return args.Error(0)
}

func (m *MockBackend) AdjustItinerary(ctx context.Context, sessionID string, req types.AdjustRequest) (*types.AdjustmentResult, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AdjustmentResult), args.Error(1)
}

func (m *MockBackend) BookingLookup(ctx context.Context, sessionID string, kind types.BookingKind, itineraryJSON string) (string, error) {
	args := m.Called(ctx, sessionID, kind, itineraryJSON)
	return args.String(0), args.Error(1)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, query string) (types.Coordinates, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(types.Coordinates), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, workspaceID string, level types.NotificationLevel, title, message string) {
	m.Called(ctx, workspaceID, level, title, message)
}

type fixedZones string

func (z fixedZones) GetTimezoneName(lng, lat float64) string { return string(z) }

var fixedNow = time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)

func newTestOrchestrator(t *testing.T, geo Geocoder) (*Orchestrator, *MockBackend, *MockNotifier) {
	t.Helper()
	be := new(MockBackend)
	n := new(MockNotifier)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	o := NewOrchestrator(Options{
		WorkspaceID: "ws-1",
		Backend:     be,
		Geocoder:    geo,
		Notifier:    n,
		Timezones:   fixedZones("Asia/Tokyo"),
		Logger:      logger,
	})
	o.SetClock(func() time.Time { return fixedNow })
	return o, be, n
}

func mounted(t *testing.T, geo Geocoder) (*Orchestrator, *MockBackend, *MockNotifier) {
	t.Helper()
	o, be, n := newTestOrchestrator(t, geo)
	be.On("CreateSession", mock.Anything).Return("s1", nil).Once()
	o.Mount(context.Background())
	return o, be, n
}

func TestMount_OnlyOnce(t *testing.T) {
	o, be, _ := newTestOrchestrator(t, nil)
	be.On("CreateSession", mock.Anything).Return("s1", nil).Once()

	o.Mount(context.Background())
	o.Mount(context.Background())

	id, ok := o.SessionID()
	assert.True(t, ok)
	assert.Equal(t, "s1", id)
	be.AssertNumberOfCalls(t, "CreateSession", 1)

	msgs := o.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, Greeting, msgs[0].Content)
}

func TestMount_FailureDisablesActions(t *testing.T) {
	o, be, n := newTestOrchestrator(t, nil)
	be.On("CreateSession", mock.Anything).Return("", types.ErrBackendUnavailable).Once()
	n.On("Notify", mock.Anything, "ws-1", types.LevelError, "Session unavailable", mock.Anything).Once()

	o.Mount(context.Background())

	_, ok := o.SessionID()
	assert.False(t, ok)
	_, err := o.SendMessage(context.Background(), "Plan a trip to Paris")
	assert.ErrorIs(t, err, types.ErrNoSession)
	assert.ErrorIs(t, o.UpdateMood(context.Background(), "tired", ""), types.ErrNoSession)
	n.AssertExpectations(t)
}

func TestSendMessage_Suggestions(t *testing.T) {
	geo := new(MockGeocoder)
	o, be, _ := mounted(t, geo)
	ctx := context.Background()

	be.On("LogChat", mock.Anything, "s1", backend.ChatLogRequest{Message: "I want to plan a trip to Kyoto for 5 days", Source: "user"}).Return(nil).Once()
	be.On("LogChat", mock.Anything, "s1", mock.MatchedBy(func(r backend.ChatLogRequest) bool {
		return r.Source == "system" && r.Message == "Suggested places for Kyoto for 5 days" && r.Response != ""
	})).Return(errors.New("log down")).Once()
	be.On("SuggestPlaces", mock.Anything, "s1", "Kyoto", "5 days").Return(&backend.SuggestPlacesResponse{
		Suggestions: "Running: search(query=\"kyoto\")\n1. Fushimi Inari",
		Attractions: []backend.Attraction{
			{Name: "Fushimi Inari", Coordinates: json.RawMessage(`"{'latitude': 34.9671, 'longitude': 135.7727}"`)},
			{Name: "Gion", LocationQuery: "Gion, Kyoto"},
			{Name: "Nowhere", Coordinates: json.RawMessage(`"unknown"`)},
		},
	}, nil).Once()
	geo.On("Geocode", mock.Anything, "Gion, Kyoto").Return(types.Coordinates{Longitude: 135.775, Latitude: 35.0037}, nil).Once()

	out, err := o.SendMessage(ctx, "I want to plan a trip to Kyoto for 5 days")
	require.NoError(t, err)
	o.Wait()

	require.Len(t, out, 4)
	assert.Equal(t, types.RoleUser, out[0].Role)
	assert.Equal(t, "Searching for places in Kyoto for a 5 days trip...", out[1].Content)
	assert.Equal(t, "I found some great places to visit in Kyoto for your 5 days trip. You can drag these suggestions to your itinerary:", out[2].Content)
	assert.Equal(t, "1. Fushimi Inari", out[3].Content)

	items := out[2].Items
	require.Len(t, items, 3)
	assert.Equal(t, "place-0-1740817800000", items[0].ID)
	assert.Equal(t, types.ItemTypeAttraction, items[0].Type)
	require.NotNil(t, items[0].Coordinates)
	assert.InDelta(t, 135.7727, items[0].Coordinates.Longitude, 1e-9)
	require.NotNil(t, items[1].Coordinates)
	assert.InDelta(t, 35.0037, items[1].Coordinates.Latitude, 1e-9)
	assert.Nil(t, items[2].Coordinates)

	assert.Equal(t, "Kyoto", o.Intent().Destination)
	assert.Len(t, o.Suggested(), 3)
	be.AssertExpectations(t)
	geo.AssertExpectations(t)
}

func TestSendMessage_SuggestFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("generic failure", func(t *testing.T) {
		o, be, n := mounted(t, nil)
		be.On("LogChat", mock.Anything, "s1", mock.Anything).Return(nil)
		be.On("SuggestPlaces", mock.Anything, "s1", "Lisbon", "3 days").Return(nil, types.ErrBackendUnavailable).Once()
		n.On("Notify", mock.Anything, "ws-1", types.LevelError, "Failed to load suggestions", mock.Anything).Once()

		out, err := o.SendMessage(ctx, "visit Lisbon")
		require.NoError(t, err)
		o.Wait()
		assert.Equal(t, "Sorry, I couldn't find suggestions for Lisbon. Please try again.", out[len(out)-1].Content)
		n.AssertExpectations(t)
	})

	t.Run("expired session", func(t *testing.T) {
		o, be, n := mounted(t, nil)
		be.On("LogChat", mock.Anything, "s1", mock.Anything).Return(nil)
		be.On("SuggestPlaces", mock.Anything, "s1", "Lisbon", "3 days").Return(nil, types.ErrSessionExpired).Once()
		n.On("Notify", mock.Anything, "ws-1", types.LevelError, "Session expired", SessionExpiredMsg).Once()

		out, err := o.SendMessage(ctx, "visit Lisbon")
		require.NoError(t, err)
		o.Wait()
		assert.Equal(t, SessionExpiredMsg, out[len(out)-1].Content)
	})
}

func TestSendMessage_Empty(t *testing.T) {
	o, _, _ := mounted(t, nil)
	_, err := o.SendMessage(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSendMessage_CircleSearch(t *testing.T) {
	o, be, _ := mounted(t, nil)
	ctx := context.Background()
	area := types.SearchArea{Center: [2]float64{77.209, 28.6139}, Radius: 2.5}

	o.OnCircleDrawn(area)
	msgs := o.Messages()
	assert.Equal(t, "I see you've drawn a circle with a radius of 2.50 km. What kind of places would you like to find in this area?", msgs[len(msgs)-1].Content)

	be.On("LogChat", mock.Anything, "s1", mock.Anything).Return(nil)
	be.On("CircleSearch", mock.Anything, backend.CircleSearchRequest{
		Query: "coffee", Center: area.Center, Radius: 2.5, Limit: 10,
	}).Return([]backend.CirclePlace{
		{Name: "Blue Tokai", Coordinates: json.RawMessage(`[77.21, 28.61]`)},
		{Name: "Perch"},
	}, nil).Once()

	out, err := o.SendMessage(ctx, "coffee")
	require.NoError(t, err)
	o.Wait()

	require.Len(t, out, 2)
	assert.Equal(t, `I found 2 places matching "coffee" within your selected area.`, out[1].Content)
	require.Len(t, out[1].Items, 2)
	require.NotNil(t, out[1].Items[0].Coordinates)
	assert.Equal(t, 77.21, out[1].Items[0].Coordinates.Longitude)
	assert.Nil(t, out[1].Items[1].Coordinates)
	assert.Nil(t, o.PendingArea())
	be.AssertNotCalled(t, "SuggestPlaces", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessage_CircleSearchEmptyClearsArea(t *testing.T) {
	o, be, _ := mounted(t, nil)
	o.OnCircleDrawn(types.SearchArea{Center: [2]float64{2.35, 48.85}, Radius: 1})

	be.On("LogChat", mock.Anything, "s1", mock.Anything).Return(nil)
	be.On("CircleSearch", mock.Anything, mock.Anything).Return([]backend.CirclePlace{}, nil).Once()

	out, err := o.SendMessage(context.Background(), "zoos")
	require.NoError(t, err)
	o.Wait()
	assert.Equal(t, `I couldn't find any places matching "zoos" within your selected area. Try a larger area or a different search.`, out[1].Content)
	assert.Nil(t, o.PendingArea())
}

type stubAreaSearcher struct {
	places []types.Place
	err    error
	calls  int
}

func (s *stubAreaSearcher) SearchNearby(_ context.Context, _ string, _ types.SearchArea) ([]types.Place, error) {
	s.calls++
	return s.places, s.err
}

func TestSendMessage_CircleSearchFallsBackToMapSearch(t *testing.T) {
	o, be, _ := mounted(t, nil)
	near := types.Coordinates{Longitude: 77.2091, Latitude: 28.6139}
	searcher := &stubAreaSearcher{places: []types.Place{{Name: "Closer Cafe", Description: "Closer Cafe, Delhi", Coordinates: &near}}}
	o.areaSearcher = searcher
	o.OnCircleDrawn(types.SearchArea{Center: [2]float64{77.209, 28.6139}, Radius: 1})

	be.On("LogChat", mock.Anything, "s1", mock.Anything).Return(nil)
	be.On("CircleSearch", mock.Anything, mock.Anything).Return(nil, types.ErrBackendUnavailable).Once()

	out, err := o.SendMessage(context.Background(), "cafe")
	require.NoError(t, err)
	o.Wait()

	require.Len(t, out, 2)
	assert.Equal(t, `I found 1 places matching "cafe" within your selected area.`, out[1].Content)
	require.Len(t, out[1].Items, 1)
	assert.Equal(t, "Closer Cafe, Delhi", out[1].Items[0].Description)
	assert.Equal(t, &near, out[1].Items[0].Coordinates)
	assert.Equal(t, 1, searcher.calls)
}

func TestSendMessage_CircleSearchBothFail(t *testing.T) {
	o, be, n := mounted(t, nil)
	o.areaSearcher = &stubAreaSearcher{err: errors.New("mapbox down")}
	o.OnCircleDrawn(types.SearchArea{Center: [2]float64{2.35, 48.85}, Radius: 1})

	be.On("LogChat", mock.Anything, "s1", mock.Anything).Return(nil)
	be.On("CircleSearch", mock.Anything, mock.Anything).Return(nil, types.ErrBackendUnavailable).Once()
	n.On("Notify", mock.Anything, "ws-1", types.LevelError, "Search failed", mock.Anything).Return().Once()

	out, err := o.SendMessage(context.Background(), "museums")
	require.NoError(t, err)
	o.Wait()

	assert.Equal(t, "Sorry, I couldn't search that area right now. Please try again.", out[len(out)-1].Content)
	assert.Nil(t, o.PendingArea())
	n.AssertExpectations(t)
}

func TestSendMessage_LogFailureDoesNotBlock(t *testing.T) {
	o, be, _ := mounted(t, nil)
	release := make(chan struct{})

	be.On("LogChat", mock.Anything, "s1", mock.Anything).Run(func(mock.Arguments) {
		<-release
	}).Return(errors.New("context log unavailable"))
	be.On("SuggestPlaces", mock.Anything, "s1", "Porto", "2 days").Return(&backend.SuggestPlacesResponse{
		Attractions: []backend.Attraction{{Name: "Ribeira", Coordinates: json.RawMessage(`[41.1406, -8.6110]`)}},
	}, nil).Once()

	out, err := o.SendMessage(context.Background(), "Plan a trip to Porto for 2 days")
	require.NoError(t, err)

	// the reply is complete while both context logs are still pending
	require.Len(t, out, 3)
	assert.Equal(t, "I found some great places to visit in Porto for your 2 days trip. You can drag these suggestions to your itinerary:", out[2].Content)
	require.Len(t, out[2].Items, 1)

	close(release)
	done := make(chan struct{})
	go func() {
		o.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("background context logs did not finish")
	}
	be.AssertNumberOfCalls(t, "LogChat", 2)
	assert.Len(t, o.Suggested(), 1)
}
