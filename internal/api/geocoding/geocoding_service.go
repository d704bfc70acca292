package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/api/mapview"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const DefaultBaseURL = "https://api.mapbox.com"

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	BaseURL           string
	AccessToken       string
	RequestsPerSecond float64
	Burst             int
	SearchLimit       int
	Timeout           time.Duration
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Geocode(ctx context.Context, query string) (types.Coordinates, error)
	SearchNearby(ctx context.Context, query string, area types.SearchArea) ([]types.Place, error)
}

type ServiceImpl struct {
	baseURL     string
	token       string
	searchLimit int
	http        HTTPClient
	limiter     *rate.Limiter
	cache       Cache
	logger      *slog.Logger
}

// NewServiceImpl builds a Mapbox-backed geocoder. cache may be nil.
func NewServiceImpl(cfg Config, httpClient HTTPClient, cache Cache, logger *slog.Logger) *ServiceImpl {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &ServiceImpl{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       cfg.AccessToken,
		searchLimit: cfg.SearchLimit,
		http:        httpClient,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cache:       cache,
		logger:      logger.With(slog.String("service", "geocoding")),
	}
}

type feature struct {
	Text      string     `json:"text"`
	PlaceName string     `json:"place_name"`
	Center    [2]float64 `json:"center"`
}

type featureCollection struct {
	Features []feature `json:"features"`
}

// Geocode returns the first match for a free-text place name.
func (s *ServiceImpl) Geocode(ctx context.Context, query string) (types.Coordinates, error) {
	ctx, span := otel.Tracer("GeocodingService").Start(ctx, "Geocode", trace.WithAttributes(
		attribute.String("geocode.query", query),
	))
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return types.Coordinates{}, types.ErrNoGeocodeResult
	}

	key := "geocode:" + strings.ToLower(query)
	if s.cache != nil {
		if c, ok := s.cache.Get(ctx, key); ok {
			metrics.Get().GeocodeCacheHitsTotal.Add(ctx, 1)
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return c, nil
		}
	}

	params := url.Values{}
	params.Set("limit", "1")
	fc, err := s.lookup(ctx, "geocode", query, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocode failed")
		return types.Coordinates{}, err
	}
	if len(fc.Features) == 0 {
		span.SetStatus(codes.Ok, "no result")
		return types.Coordinates{}, fmt.Errorf("%q: %w", query, types.ErrNoGeocodeResult)
	}

	c := types.Coordinates{Longitude: fc.Features[0].Center[0], Latitude: fc.Features[0].Center[1]}
	if !c.Valid() {
		return types.Coordinates{}, fmt.Errorf("%q: invalid coordinates: %w", query, types.ErrNoGeocodeResult)
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, c)
	}
	span.SetStatus(codes.Ok, "")
	return c, nil
}

// SearchNearby finds points of interest matching query around the area
// center and keeps those within the radius, nearest first.
func (s *ServiceImpl) SearchNearby(ctx context.Context, query string, area types.SearchArea) ([]types.Place, error) {
	ctx, span := otel.Tracer("GeocodingService").Start(ctx, "SearchNearby", trace.WithAttributes(
		attribute.String("geocode.query", query),
		attribute.Float64("area.radius_km", area.Radius),
	))
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return []types.Place{}, nil
	}

	center := area.CenterCoordinates()
	params := url.Values{}
	params.Set("proximity", coordParam(center.Longitude)+","+coordParam(center.Latitude))
	params.Set("types", "poi")
	params.Set("limit", strconv.Itoa(s.searchLimit))

	fc, err := s.lookup(ctx, "search_nearby", query, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}

	places := make([]types.Place, 0, len(fc.Features))
	for _, f := range fc.Features {
		c := types.Coordinates{Longitude: f.Center[0], Latitude: f.Center[1]}
		if !c.Valid() {
			continue
		}
		d := mapview.Distance(center, c)
		if d > area.Radius {
			continue
		}
		name := f.Text
		if name == "" {
			name = f.PlaceName
		}
		places = append(places, types.Place{Name: name, Description: f.PlaceName, Coordinates: &c, Distance: d})
	}
	sort.SliceStable(places, func(i, j int) bool { return places[i].Distance < places[j].Distance })

	span.SetAttributes(attribute.Int("results.count", len(places)))
	span.SetStatus(codes.Ok, "")
	return places, nil
}

func (s *ServiceImpl) lookup(ctx context.Context, op, query string, params url.Values) (*featureCollection, error) {
	if s.token == "" {
		return nil, errors.New("mapbox access token is not configured")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocoding rate limit wait: %w", err)
	}
	metrics.Get().GeocodeRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))

	params.Set("access_token", s.token)
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s", s.baseURL, url.PathEscape(query), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocoding request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		s.logger.WarnContext(ctx, "Geocoding request failed", slog.String("query", query), slog.Any("error", err))
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding request: unexpected status %d", resp.StatusCode)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}
	return &fc, nil
}

func coordParam(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
