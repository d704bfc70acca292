package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// DBTX is the subset of pgxpool.Pool the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	SaveItinerary(ctx context.Context, saved types.SavedItinerary) (*types.SavedItinerary, error)
	GetItinerary(ctx context.Context, workspaceID, id uuid.UUID) (*types.SavedItinerary, error)
	ListItineraries(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]types.SavedItinerary, error)
	DeleteItinerary(ctx context.Context, workspaceID, id uuid.UUID) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool DBTX
}

func NewRepository(pool DBTX, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pool,
	}
}

func (r *RepositoryImpl) SaveItinerary(ctx context.Context, saved types.SavedItinerary) (*types.SavedItinerary, error) {
	ctx, span := startSpan(ctx, "SaveItinerary", "INSERT")
	defer span.End()
	defer observe(ctx, time.Now(), "INSERT")

	workspaceID, err := uuid.Parse(saved.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace id %q: %w", saved.WorkspaceID, err)
	}
	doc, err := json.Marshal(saved.Itinerary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode itinerary: %w", err)
	}

	query := `
		INSERT INTO saved_itineraries (workspace_id, title, destination, duration, document)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	var id uuid.UUID
	var createdAt time.Time
	if err := r.pgpool.QueryRow(ctx, query,
		workspaceID, saved.Title, saved.Destination, saved.Duration, doc,
	).Scan(&id, &createdAt); err != nil {
		recordDBError(ctx, span, err)
		r.logger.ErrorContext(ctx, "Failed to insert saved itinerary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to insert saved itinerary: %w", err)
	}

	saved.ID = id.String()
	saved.CreatedAt = createdAt
	span.SetStatus(codes.Ok, "itinerary saved")
	return &saved, nil
}

func (r *RepositoryImpl) GetItinerary(ctx context.Context, workspaceID, id uuid.UUID) (*types.SavedItinerary, error) {
	ctx, span := startSpan(ctx, "GetItinerary", "SELECT")
	defer span.End()
	defer observe(ctx, time.Now(), "SELECT")
	span.SetAttributes(attribute.String("itinerary.id", id.String()))

	query := `
		SELECT id, workspace_id, title, destination, duration, document, created_at
		FROM saved_itineraries
		WHERE id = $1 AND workspace_id = $2
	`
	saved, err := scanSaved(r.pgpool.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("saved itinerary %s: %w", id, types.ErrNotFound)
		}
		recordDBError(ctx, span, err)
		return nil, fmt.Errorf("failed to scan saved_itineraries row: %w", err)
	}
	return saved, nil
}

func (r *RepositoryImpl) ListItineraries(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]types.SavedItinerary, error) {
	ctx, span := startSpan(ctx, "ListItineraries", "SELECT")
	defer span.End()
	defer observe(ctx, time.Now(), "SELECT")

	query := `
		SELECT id, workspace_id, title, destination, duration, document, created_at
		FROM saved_itineraries
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pgpool.Query(ctx, query, workspaceID, limit, offset)
	if err != nil {
		recordDBError(ctx, span, err)
		return nil, fmt.Errorf("failed to query saved_itineraries: %w", err)
	}
	defer rows.Close()

	out := []types.SavedItinerary{}
	for rows.Next() {
		saved, err := scanSaved(rows)
		if err != nil {
			recordDBError(ctx, span, err)
			return nil, fmt.Errorf("failed to scan saved_itineraries row: %w", err)
		}
		out = append(out, *saved)
	}
	if err := rows.Err(); err != nil {
		recordDBError(ctx, span, err)
		return nil, fmt.Errorf("error iterating saved_itineraries rows: %w", err)
	}
	return out, nil
}

func (r *RepositoryImpl) DeleteItinerary(ctx context.Context, workspaceID, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "DeleteItinerary", "DELETE")
	defer span.End()
	defer observe(ctx, time.Now(), "DELETE")

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM saved_itineraries WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		recordDBError(ctx, span, err)
		return fmt.Errorf("failed to delete saved itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("saved itinerary %s: %w", id, types.ErrNotFound)
	}
	return nil
}

func scanSaved(row pgx.Row) (*types.SavedItinerary, error) {
	var (
		id, workspaceID uuid.UUID
		doc             []byte
		saved           types.SavedItinerary
	)
	if err := row.Scan(&id, &workspaceID, &saved.Title, &saved.Destination, &saved.Duration, &doc, &saved.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(doc, &saved.Itinerary); err != nil {
		return nil, fmt.Errorf("failed to decode itinerary document: %w", err)
	}
	saved.ID = id.String()
	saved.WorkspaceID = workspaceID.String()
	return &saved, nil
}

func startSpan(ctx context.Context, name, operation string) (context.Context, trace.Span) {
	return otel.Tracer("ItineraryRepository").Start(ctx, name, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", "saved_itineraries"),
	))
}

func observe(ctx context.Context, start time.Time, operation string) {
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("db.operation", operation)))
}

func recordDBError(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
}
