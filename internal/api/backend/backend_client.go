package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks JSON to the travel session backend.
type Client struct {
	baseURL string
	http    HTTPClient
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout}, logger)
}

func NewClientWithHTTP(baseURL string, httpClient HTTPClient, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger.With(slog.String("client", "backend")),
	}
}

type Attraction struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	LocationQuery string          `json:"location_query,omitempty"`
	Coordinates   json.RawMessage `json:"coordinates,omitempty"`
}

type SuggestPlacesResponse struct {
	Suggestions string       `json:"suggestions"`
	Destination string       `json:"destination"`
	Duration    string       `json:"duration"`
	Attractions []Attraction `json:"attractions_with_coordinates"`
}

type ChatLogRequest struct {
	Message  string `json:"message"`
	Source   string `json:"source"`
	Response string `json:"response,omitempty"`
}

type MoodUpdate struct {
	MoodState       types.Mood `json:"mood_state"`
	CurrentTime     string     `json:"current_time,omitempty"`
	CurrentLocation string     `json:"current_location,omitempty"`
}

type CircleSearchRequest struct {
	Query  string     `json:"query"`
	Center [2]float64 `json:"center"`
	Radius float64    `json:"radius"`
	Limit  int        `json:"limit"`
}

type CirclePlace struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
}

type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CreateSession obtains a new session handle.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, "CreateSession", http.MethodPost, "/sessions", struct{}{}, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("CreateSession: empty session id: %w", types.ErrBackendUnavailable)
	}
	return out.SessionID, nil
}

func (c *Client) SuggestPlaces(ctx context.Context, sessionID, destination, duration string) (*SuggestPlacesResponse, error) {
	in := map[string]string{"destination": destination, "duration": duration}
	var out SuggestPlacesResponse
	if err := c.do(ctx, "SuggestPlaces", http.MethodPost, sessionPath(sessionID, "suggest-places"), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogChat appends to the backend's chat context. The response body is ignored.
func (c *Client) LogChat(ctx context.Context, sessionID string, msg ChatLogRequest) error {
	return c.do(ctx, "LogChat", http.MethodPost, sessionPath(sessionID, "chat"), msg, nil)
}

func (c *Client) UpdateMood(ctx context.Context, sessionID string, update MoodUpdate) error {
	return c.do(ctx, "UpdateMood", http.MethodPost, sessionPath(sessionID, "update-mood"), update, nil)
}

func (c *Client) AdjustItinerary(ctx context.Context, sessionID string, req types.AdjustRequest) (*types.AdjustmentResult, error) {
	var out struct {
		Result types.AdjustmentResult `json:"result"`
	}
	if err := c.do(ctx, "AdjustItinerary", http.MethodPost, sessionPath(sessionID, "adjust-itinerary"), req, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// BookingLookup runs one of the booking endpoints and returns its free-text answer.
func (c *Client) BookingLookup(ctx context.Context, sessionID string, kind types.BookingKind, itineraryJSON string) (string, error) {
	in := map[string]string{"itinerary": itineraryJSON}
	var out map[string]json.RawMessage
	op := "BookingLookup." + string(kind)
	if err := c.do(ctx, op, http.MethodPost, sessionPath(sessionID, kind.Endpoint()), in, &out); err != nil {
		return "", err
	}
	raw, ok := out[kind.ResponseField()]
	if !ok {
		return "", fmt.Errorf("%s: response has no %s field: %w", op, kind.ResponseField(), types.ErrBackendUnavailable)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		// structured answers are handed on as JSON text
		return string(raw), nil
	}
	return text, nil
}

// CircleSearch finds places matching query inside a drawn circle.
func (c *Client) CircleSearch(ctx context.Context, req CircleSearchRequest) ([]CirclePlace, error) {
	var out struct {
		Places []CirclePlace `json:"places"`
	}
	if err := c.do(ctx, "CircleSearch", http.MethodPost, "/circle_places_search", req, &out); err != nil {
		return nil, err
	}
	return out.Places, nil
}

func (c *Client) CreateItinerary(ctx context.Context, sessionID string, req types.CreateItineraryRequest) error {
	return c.do(ctx, "CreateItinerary", http.MethodPost, sessionPath(sessionID, "create-itinerary"), req, nil)
}

func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, "Health", http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func sessionPath(sessionID, action string) string {
	return "/sessions/" + url.PathEscape(sessionID) + "/" + action
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (err error) {
	ctx, span := otel.Tracer("BackendClient").Start(ctx, op, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	defer span.End()

	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("operation", op))
	start := time.Now()
	m.BackendRequestsTotal.Add(ctx, 1, attrs)
	defer func() {
		m.BackendRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		if err != nil {
			m.BackendErrorsTotal.Add(ctx, 1, attrs)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.WarnContext(ctx, "Backend request failed", slog.String("operation", op), slog.Any("error", err))
			return
		}
		span.SetStatus(codes.Ok, "")
	}()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, types.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/sessions/") {
		return fmt.Errorf("%s: %w", op, types.ErrSessionExpired)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: status %d%s: %w", op, resp.StatusCode, errorDetail(resp.Body), types.ErrBackendUnavailable)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: empty response: %w", op, types.ErrBackendUnavailable)
		}
		return fmt.Errorf("%s: decode response: %w: %w", op, types.ErrBackendUnavailable, err)
	}
	return nil
}

// errorDetail pulls the backend's {"error": ...} message, if any.
func errorDetail(r io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err != nil || payload.Error == "" {
		return ""
	}
	return " (" + payload.Error + ")"
}
