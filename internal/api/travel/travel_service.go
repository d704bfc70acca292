package travel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/api/extract"
	generativeAI "github.com/FACorreiaa/go-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	defaultLimit = 5
	maxLimit     = 20
)

// NoOptionsMessage is shown when a search comes back empty.
const NoOptionsMessage = "No flight options found matching your criteria."

// ErrNoOptions is returned when nothing survives parsing and filtering.
var ErrNoOptions = fmt.Errorf("travel search: %w", types.ErrNoResults)

var ErrInvalidParams = errors.New("origin, destination and date are required")

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Search(ctx context.Context, params types.TravelSearchParams) ([]types.TravelOption, error)
}

type ServiceImpl struct {
	llm    generativeAI.Client
	cache  *cache.Cache
	logger *slog.Logger
}

func NewServiceImpl(llm generativeAI.Client, ttl time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		llm:    llm,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Search asks the LLM for numbered travel options and parses them. Results
// are cached per parameter set.
func (s *ServiceImpl) Search(ctx context.Context, params types.TravelSearchParams) ([]types.TravelOption, error) {
	l := s.logger.With(slog.String("method", "Search"))
	ctx, span := otel.Tracer("TravelService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("travel.origin", params.Origin),
		attribute.String("travel.destination", params.Destination),
		attribute.String("travel.date", params.Date),
	))
	defer span.End()

	params, err := normalize(params)
	if err != nil {
		span.SetStatus(codes.Error, "invalid params")
		return nil, err
	}

	key := cacheKey(params)
	if cached, found := s.cache.Get(key); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.([]types.TravelOption), nil
	}

	reply, err := s.llm.Generate(ctx, BuildPrompt(params))
	if err != nil {
		l.ErrorContext(ctx, "Travel search generation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, fmt.Errorf("failed to fetch travel options: %w", err)
	}

	options := Filter(extract.ParseTravelOptions(extract.StripNoise(reply)), params)
	span.SetAttributes(attribute.Int("results.count", len(options)))
	if len(options) == 0 {
		l.InfoContext(ctx, "No travel options parsed", slog.String("model", s.llm.Model()))
		span.SetStatus(codes.Ok, "no results")
		return nil, ErrNoOptions
	}

	s.cache.Set(key, options, cache.DefaultExpiration)
	span.SetStatus(codes.Ok, "")
	return options, nil
}

// BuildPrompt renders the search request in the numbered format that
// extract.ParseTravelOptions reads back.
func BuildPrompt(p types.TravelSearchParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find %s options from %s to %s on %s for %d traveler(s).\n",
		p.TravelType, p.Origin, p.Destination, p.Date, p.NumTravelers)
	if p.ReturnDate != "" {
		fmt.Fprintf(&b, "Include return options on %s.\n", p.ReturnDate)
	}
	b.WriteString("Please provide the results in this exact format for each option:\n\n")
	b.WriteString("1. **Airline Name**: ₹Price\n")
	b.WriteString("* **Departure Time**: HH:MM AM/PM\n")
	b.WriteString("* **Arrival Time**: HH:MM AM/PM\n")
	b.WriteString("* **Duration**: Xh Ym\n")
	b.WriteString("* **Rating**: X.X (if available)\n")
	b.WriteString("* **Flight Number**: XYZ123 (if available)\n\n")
	b.WriteString("Separate options with a blank line.\n")
	if p.PreferDirect {
		b.WriteString("Show only direct flights.\n")
	}
	if p.MaxPrice > 0 {
		fmt.Fprintf(&b, "Maximum price: ₹%d.\n", p.MaxPrice)
	}
	if p.MinRating > 0 {
		fmt.Fprintf(&b, "Minimum rating: %s.\n", strconv.FormatFloat(p.MinRating, 'f', -1, 64))
	}
	fmt.Fprintf(&b, "List at least %d options.", p.Limit)
	return b.String()
}

// Filter drops options above MaxPrice or below MinRating and caps at Limit.
// Options without a rating are kept when a minimum rating is set.
func Filter(options []types.TravelOption, p types.TravelSearchParams) []types.TravelOption {
	kept := lo.Filter(options, func(o types.TravelOption, _ int) bool {
		if p.MaxPrice > 0 && o.Price > p.MaxPrice {
			return false
		}
		if p.MinRating > 0 && o.Rating != nil && *o.Rating < p.MinRating {
			return false
		}
		return true
	})
	if p.Limit > 0 && len(kept) > p.Limit {
		kept = kept[:p.Limit]
	}
	return kept
}

func normalize(p types.TravelSearchParams) (types.TravelSearchParams, error) {
	p.Origin = strings.TrimSpace(p.Origin)
	p.Destination = strings.TrimSpace(p.Destination)
	p.Date = strings.TrimSpace(p.Date)
	if p.Origin == "" || p.Destination == "" || p.Date == "" {
		return p, ErrInvalidParams
	}
	if p.TravelType == "" {
		p.TravelType = types.TravelFlight
	}
	if p.NumTravelers < 1 {
		p.NumTravelers = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p, nil
}

func cacheKey(p types.TravelSearchParams) string {
	return fmt.Sprintf("travel:%s:%s:%s:%s:%s:%d:%d:%g:%t:%d",
		p.TravelType, strings.ToLower(p.Origin), strings.ToLower(p.Destination), p.Date, p.ReturnDate,
		p.NumTravelers, p.MaxPrice, p.MinRating, p.PreferDirect, p.Limit)
}
