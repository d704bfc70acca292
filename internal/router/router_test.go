package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/api/backend"
	"github.com/FACorreiaa/go-travel-planner/internal/api/notify"
	"github.com/FACorreiaa/go-travel-planner/internal/api/workspace"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var errOffline = errors.New("offline")

// offlineBackend fails every call, leaving workspaces without a session.
type offlineBackend struct{}

func (offlineBackend) CreateSession(context.Context) (string, error) { return "", errOffline }
func (offlineBackend) SuggestPlaces(context.Context, string, string, string) (*backend.SuggestPlacesResponse, error) {
	return nil, errOffline
}
func (offlineBackend) LogChat(context.Context, string, backend.ChatLogRequest) error { return errOffline }
func (offlineBackend) CircleSearch(context.Context, backend.CircleSearchRequest) ([]backend.CirclePlace, error) {
	return nil, errOffline
}
func (offlineBackend) UpdateMood(context.Context, string, backend.MoodUpdate) error { return errOffline }
func (offlineBackend) AdjustItinerary(context.Context, string, types.AdjustRequest) (*types.AdjustmentResult, error) {
	return nil, errOffline
}
func (offlineBackend) BookingLookup(context.Context, string, types.BookingKind, string) (string, error) {
	return "", errOffline
}

func newTestRouter(auth func(http.Handler) http.Handler) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := notify.NewHub(5, logger)
	reg := workspace.NewRegistry(time.Minute, time.Minute, workspace.Deps{Backend: offlineBackend{}, Notifier: hub}, logger)
	return SetupRouter(&Config{
		WorkspaceHandler:       workspace.NewHandler(reg, nil, hub, logger),
		AuthenticateMiddleware: auth,
	})
}

func TestRouter_Ping(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())
}

func TestRouter_WorkspaceRoutes(t *testing.T) {
	r := newTestRouter(nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/", nil))
	require.Equal(t, http.StatusCreated, rr.Code)
	id := between(rr.Body.String(), `"id":"`, `"`)
	require.NotEmpty(t, id)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/"+id+"/itineraries/", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "New Itinerary 1")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/"+id+"/drag/drop", strings.NewReader(`{"target":"itinerary-board"}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"committed":false`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/unknown/messages", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_AuthAppliesToAPI(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	r := newTestRouter(deny)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	s = s[i+len(start):]
	j := strings.Index(s, end)
	if j < 0 {
		return ""
	}
	return s[:j]
}
