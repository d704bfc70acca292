package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Publisher forwards saved itineraries to the session backend.
type Publisher interface {
	CreateItinerary(ctx context.Context, sessionID string, req types.CreateItineraryRequest) error
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Save(ctx context.Context, workspaceID, sessionID string, it types.Itinerary) (*types.SavedItinerary, error)
	Get(ctx context.Context, workspaceID, id string) (*types.SavedItinerary, error)
	List(ctx context.Context, workspaceID string, page, pageSize int) ([]types.SavedItinerary, error)
	Delete(ctx context.Context, workspaceID, id string) error
}

type ServiceImpl struct {
	logger    *slog.Logger
	repo      Repository
	publisher Publisher
}

func NewServiceImpl(repo Repository, publisher Publisher, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
	}
}

// Save persists the itinerary and, when a session handle exists, forwards
// it to the backend. Backend failures are logged and do not fail the save.
func (s *ServiceImpl) Save(ctx context.Context, workspaceID, sessionID string, it types.Itinerary) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Save", trace.WithAttributes(
		attribute.String("workspace.id", workspaceID),
		attribute.String("itinerary.id", it.ID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Save"), slog.String("workspace_id", workspaceID))

	duration := fmt.Sprintf("%d days", len(it.Days))
	saved, err := s.repo.SaveItinerary(ctx, types.SavedItinerary{
		WorkspaceID: workspaceID,
		Title:       it.Title,
		Destination: it.Title,
		Duration:    duration,
		Itinerary:   it,
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to save itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return nil, err
	}

	if sessionID != "" && s.publisher != nil {
		doc, err := json.Marshal(it)
		if err == nil {
			err = s.publisher.CreateItinerary(ctx, sessionID, types.CreateItineraryRequest{
				Destination: it.Title,
				Duration:    duration,
				Itinerary:   string(doc),
			})
		}
		if err != nil {
			l.WarnContext(ctx, "Backend did not accept saved itinerary", slog.Any("error", err))
			span.AddEvent("backend publish failed")
		}
	}

	l.InfoContext(ctx, "Itinerary saved", slog.String("saved_id", saved.ID))
	span.SetStatus(codes.Ok, "itinerary saved")
	return saved, nil
}

func (s *ServiceImpl) Get(ctx context.Context, workspaceID, id string) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Get")
	defer span.End()

	wsID, savedID, err := parseIDs(workspaceID, id)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.GetItinerary(ctx, wsID, savedID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return saved, nil
}

func (s *ServiceImpl) List(ctx context.Context, workspaceID string, page, pageSize int) ([]types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "List")
	defer span.End()

	wsID, err := uuid.Parse(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("workspace %s: %w", workspaceID, types.ErrNotFound)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	list, err := s.repo.ListItineraries(ctx, wsID, pageSize, (page-1)*pageSize)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return list, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, workspaceID, id string) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Delete")
	defer span.End()

	wsID, savedID, err := parseIDs(workspaceID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItinerary(ctx, wsID, savedID); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func parseIDs(workspaceID, id string) (uuid.UUID, uuid.UUID, error) {
	wsID, err := uuid.Parse(workspaceID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("workspace %s: %w", workspaceID, types.ErrNotFound)
	}
	savedID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("saved itinerary %s: %w", id, types.ErrNotFound)
	}
	return wsID, savedID, nil
}
