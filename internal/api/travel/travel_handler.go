package travel

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type SearchResponse struct {
	Options []types.TravelOption `json:"options"`
}

// Search godoc
// @Summary      Search travel options
// @Description  Asks the configured LLM for flight, train, bus or hotel options and returns the parsed list.
// @Tags         travel
// @Accept       json
// @Produce      json
// @Param        request body types.TravelSearchParams true "Search parameters"
// @Success      200 {object} SearchResponse
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /travel/search [post]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TravelHandler").Start(r.Context(), "Search")
	defer span.End()
	l := h.logger.With(slog.String("handler", "Search"))

	var params types.TravelSearchParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Invalid travel search body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(
		attribute.String("travel.origin", params.Origin),
		attribute.String("travel.destination", params.Destination),
	)

	options, err := h.service.Search(ctx, params)
	switch {
	case errors.Is(err, ErrInvalidParams):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, types.ErrNoResults):
		span.SetStatus(codes.Ok, "no results")
		api.ErrorResponse(w, r, http.StatusNotFound, NoOptionsMessage)
		return
	case err != nil:
		l.ErrorContext(ctx, "Travel search failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		api.ErrorResponse(w, r, http.StatusBadGateway, "Failed to fetch travel options. Please try again.")
		return
	}

	l.InfoContext(ctx, "Travel options found", slog.Int("count", len(options)))
	span.SetStatus(codes.Ok, "")
	api.WriteJSONResponse(w, r, http.StatusOK, SearchResponse{Options: options})
}
