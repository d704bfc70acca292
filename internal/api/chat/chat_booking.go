package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-travel-planner/internal/api/extract"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Overview is the result of running every booking lookup. Failures maps a
// kind to its user-facing error.
type Overview struct {
	Results  map[types.BookingKind]extract.Formatted `json:"results"`
	Failures map[types.BookingKind]string            `json:"failures,omitempty"`
}

// Lookup runs one booking lookup for the given itinerary and stores the
// formatted answer under its kind.
func (o *Orchestrator) Lookup(ctx context.Context, kind types.BookingKind, itineraryJSON string) (extract.Formatted, error) {
	ctx, span := otel.Tracer("ChatOrchestrator").Start(ctx, "Lookup", trace.WithAttributes(
		attribute.String("booking.kind", string(kind)),
	))
	defer span.End()

	sessionID, ok := o.SessionID()
	if !ok {
		return extract.Formatted{}, types.ErrNoSession
	}
	if strings.TrimSpace(itineraryJSON) == "" {
		return extract.Formatted{}, types.ErrNoActiveItinerary
	}

	text, err := o.backend.BookingLookup(ctx, sessionID, kind, itineraryJSON)
	if err != nil {
		o.logger.ErrorContext(ctx, "Booking lookup failed", slog.String("kind", string(kind)), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		o.notifyFailure(ctx, err, "Failed to load "+kind.Label())
		return extract.Formatted{}, err
	}

	f := extract.Structure(text)
	o.mu.Lock()
	o.bookings[kind] = f
	o.mu.Unlock()
	span.SetStatus(codes.Ok, "")
	return f, nil
}

// Overview runs all booking lookups concurrently. One failing lookup does
// not stop the others.
func (o *Orchestrator) Overview(ctx context.Context, itineraryJSON string) (*Overview, error) {
	if _, ok := o.SessionID(); !ok {
		return nil, types.ErrNoSession
	}
	if strings.TrimSpace(itineraryJSON) == "" {
		return nil, types.ErrNoActiveItinerary
	}

	out := &Overview{
		Results:  make(map[types.BookingKind]extract.Formatted, len(types.BookingKinds)),
		Failures: make(map[types.BookingKind]string),
	}
	var mu sync.Mutex
	var g errgroup.Group
	for _, kind := range types.BookingKinds {
		g.Go(func() error {
			f, err := o.Lookup(ctx, kind, itineraryJSON)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Failures[kind] = fmt.Sprintf("Failed to load %s", kind.Label())
				return nil
			}
			out.Results[kind] = f
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// Bookings returns the stored answers by kind.
func (o *Orchestrator) Bookings() map[types.BookingKind]extract.Formatted {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[types.BookingKind]extract.Formatted, len(o.bookings))
	for k, v := range o.bookings {
		out[k] = v
	}
	return out
}
