package workspace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/api/chat"
	"github.com/FACorreiaa/go-travel-planner/internal/api/dragdrop"
	"github.com/FACorreiaa/go-travel-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-travel-planner/internal/api/mapview"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// EventStream serves the toast history and live stream of a workspace.
// *notify.Hub implements it.
type EventStream interface {
	Recent(workspaceID string) []types.Notification
	ServeWS(w http.ResponseWriter, r *http.Request, workspaceID string)
}

type Handler struct {
	registry *Registry
	saved    itinerary.Service
	events   EventStream
	logger   *slog.Logger
}

func NewHandler(registry *Registry, saved itinerary.Service, events EventStream, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		saved:    saved,
		events:   events,
		logger:   logger,
	}
}

type View struct {
	ID                string                `json:"id"`
	Itineraries       []types.Itinerary     `json:"itineraries"`
	ActiveItineraryID string                `json:"active_itinerary_id,omitempty"`
	ActiveDayID       string                `json:"active_day_id,omitempty"`
	SessionReady      bool                  `json:"session_ready"`
	DragState         dragdrop.State        `json:"drag_state"`
	Circle            mapview.CirclePreview `json:"circle"`
	CreatedAt         time.Time             `json:"created_at"`
}

func viewOf(ws *Workspace) View {
	snap := ws.Store.Snapshot()
	_, ready := ws.Chat.SessionID()
	return View{
		ID:                ws.ID,
		Itineraries:       snap.Itineraries,
		ActiveItineraryID: snap.ActiveItineraryID,
		ActiveDayID:       snap.ActiveDayID,
		SessionReady:      ready,
		DragState:         ws.Drag.State(),
		Circle:            ws.Circle.Preview(),
		CreatedAt:         ws.CreatedAt,
	}
}

type SetActiveRequest struct {
	ItineraryID string `json:"itinerary_id"`
	DayID       string `json:"day_id,omitempty"`
}

type DragStartRequest struct {
	Payload string `json:"payload"`
}

type DragDropRequest struct {
	Target string `json:"target"`
}

type StateResponse struct {
	State string `json:"state"`
}

// begin opens the handler span and scoped logger used by every route.
func (h *Handler) begin(r *http.Request, name string) (context.Context, trace.Span, *slog.Logger) {
	ctx, span := otel.Tracer("WorkspaceHandler").Start(r.Context(), name)
	l := h.logger.With(slog.String("handler", name))
	if id := chi.URLParam(r, "wsID"); id != "" {
		span.SetAttributes(attribute.String("workspace.id", id))
		l = l.With(slog.String("workspace_id", id))
	}
	return ctx, span, l
}

// workspace resolves {wsID}, writing a 404 when it is unknown or expired.
func (h *Handler) workspace(w http.ResponseWriter, r *http.Request, span trace.Span) (*Workspace, bool) {
	ws, err := h.registry.Get(chi.URLParam(r, "wsID"))
	if err != nil {
		span.SetStatus(codes.Error, "workspace not found")
		api.ErrorResponse(w, r, http.StatusNotFound, "Workspace not found. Please refresh the page.")
		return nil, false
	}
	return ws, true
}

// fail maps domain errors to a status and a message scoped to the action.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, l *slog.Logger, span trace.Span, err error, action string) {
	status, msg := http.StatusInternalServerError, "Failed to "+action+". Please try again."
	switch {
	case errors.Is(err, types.ErrSessionExpired):
		status, msg = http.StatusGone, chat.SessionExpiredMsg
	case errors.Is(err, types.ErrNoSession):
		status, msg = http.StatusConflict, "Session is not ready yet. Please wait a moment and try again."
	case errors.Is(err, types.ErrNoActiveItinerary):
		status, msg = http.StatusConflict, "Create or select an itinerary first."
	case errors.Is(err, chat.ErrNoAdjustment):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, types.ErrMoodRequired), errors.Is(err, types.ErrUnknownMood), errors.Is(err, chat.ErrEmptyMessage):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, mapview.ErrNotPlaceable):
		status, msg = http.StatusUnprocessableEntity, "This place has no location on the map."
	case errors.Is(err, types.ErrNotFound):
		status, msg = http.StatusNotFound, "Not found."
	case errors.Is(err, types.ErrBackendUnavailable):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "Request failed", slog.String("action", action), slog.Any("error", err))
	} else {
		l.WarnContext(r.Context(), "Request rejected", slog.String("action", action), slog.Any("error", err))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, action)
	api.ErrorResponse(w, r, status, msg)
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, l *slog.Logger, span trace.Span, err error) {
	l.WarnContext(r.Context(), "Invalid request body", slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, "bad request")
	api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

// CreateWorkspace godoc
// @Summary      Create a planner workspace
// @Description  Creates an empty workspace and starts a backend session for it in the background.
// @Tags         workspaces
// @Produce      json
// @Success      201 {object} View
// @Router       /workspaces [post]
func (h *Handler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "CreateWorkspace")
	defer span.End()

	ws := h.registry.Create(ctx)
	span.SetAttributes(attribute.String("workspace.id", ws.ID))
	l.InfoContext(ctx, "Workspace created", slog.String("workspace_id", ws.ID))
	span.SetStatus(codes.Ok, "")
	api.WriteJSONResponse(w, r, http.StatusCreated, viewOf(ws))
}

// GetWorkspace godoc
// @Summary      Get a workspace
// @Tags         workspaces
// @Produce      json
// @Param        wsID path string true "Workspace ID"
// @Success      200 {object} View
// @Failure      404 {object} map[string]interface{}
// @Router       /workspaces/{wsID} [get]
func (h *Handler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "GetWorkspace")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, viewOf(ws))
}

func (h *Handler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "DeleteWorkspace")
	defer span.End()

	if err := h.registry.Delete(chi.URLParam(r, "wsID")); err != nil {
		h.fail(w, r, l, span, err, "delete workspace")
		return
	}
	l.InfoContext(ctx, "Workspace deleted")
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// CreateItinerary godoc
// @Summary      Create an itinerary
// @Description  Adds "New Itinerary N" with one day and makes it active.
// @Tags         itineraries
// @Produce      json
// @Param        wsID path string true "Workspace ID"
// @Success      201 {object} types.Itinerary
// @Router       /workspaces/{wsID}/itineraries [post]
func (h *Handler) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "CreateItinerary")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	it := ws.Store.CreateItinerary()
	l.InfoContext(ctx, "Itinerary created", slog.String("itinerary_id", it.ID))
	api.WriteJSONResponse(w, r, http.StatusCreated, it)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	_, span, l := h.begin(r, "SetActive")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.badRequest(w, r, l, span, err)
		return
	}
	if err := ws.Store.SetActive(req.ItineraryID, req.DayID); err != nil {
		h.fail(w, r, l, span, err, "select itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, viewOf(ws))
}

func (h *Handler) AddDay(w http.ResponseWriter, r *http.Request) {
	_, span, l := h.begin(r, "AddDay")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	day, err := ws.Store.AddDay(chi.URLParam(r, "itID"))
	if err != nil {
		h.fail(w, r, l, span, err, "add day")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, day)
}

func (h *Handler) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	_, span, l := h.begin(r, "DeleteItinerary")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	if err := ws.Store.DeleteItinerary(chi.URLParam(r, "itID")); err != nil {
		h.fail(w, r, l, span, err, "delete itinerary")
		return
	}
	syncSelection(ws)
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// DeleteItem is idempotent: unknown ids are a no-op.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "DeleteItem")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	ws.Store.DeleteItem(chi.URLParam(r, "itID"), chi.URLParam(r, "dayID"), chi.URLParam(r, "itemID"))
	syncSelection(ws)
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// SaveItinerary godoc
// @Summary      Save an itinerary
// @Description  Persists a copy of the itinerary and forwards it to the session backend when a session exists.
// @Tags         itineraries
// @Produce      json
// @Param        wsID path string true "Workspace ID"
// @Param        itID path string true "Itinerary ID"
// @Success      201 {object} types.SavedItinerary
// @Failure      404 {object} map[string]interface{}
// @Router       /workspaces/{wsID}/itineraries/{itID}/save [post]
func (h *Handler) SaveItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "SaveItinerary")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	it, err := ws.Store.Itinerary(chi.URLParam(r, "itID"))
	if err != nil {
		h.fail(w, r, l, span, err, "save itinerary")
		return
	}
	sessionID, _ := ws.Chat.SessionID()
	saved, err := h.saved.Save(ctx, ws.ID, sessionID, it)
	if err != nil {
		h.notify(ctx, ws.ID, types.LevelError, "Save failed", "Failed to save itinerary. Please try again.")
		h.fail(w, r, l, span, err, "save itinerary")
		return
	}
	h.notify(ctx, ws.ID, types.LevelSuccess, "Itinerary saved", it.Title+" has been saved.")
	span.SetStatus(codes.Ok, "")
	api.WriteJSONResponse(w, r, http.StatusCreated, saved)
}

// ExportICal writes the itinerary as an iCalendar file. start defaults to today.
func (h *Handler) ExportICal(w http.ResponseWriter, r *http.Request) {
	_, span, l := h.begin(r, "ExportICal")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	it, err := ws.Store.Itinerary(chi.URLParam(r, "itID"))
	if err != nil {
		h.fail(w, r, l, span, err, "export itinerary")
		return
	}
	start := time.Now().UTC().Truncate(24 * time.Hour)
	if s := r.URL.Query().Get("start"); s != "" {
		start, err = time.Parse(time.DateOnly, s)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "start must be formatted as YYYY-MM-DD")
			return
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(itinerary.ExportICal(it, start))); err != nil {
		l.ErrorContext(r.Context(), "Failed to write calendar", slog.Any("error", err))
	}
}

func (h *Handler) ListSaved(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "ListSaved")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	list, err := h.saved.List(ctx, ws.ID, page, pageSize)
	if err != nil {
		h.fail(w, r, l, span, err, "load saved itineraries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, list)
}

// RestoreSaved copies a saved itinerary back into the workspace and selects it.
func (h *Handler) RestoreSaved(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "RestoreSaved")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	saved, err := h.saved.Get(ctx, ws.ID, chi.URLParam(r, "savedID"))
	if err != nil {
		h.fail(w, r, l, span, err, "restore itinerary")
		return
	}
	it := ws.Store.Restore(saved.Itinerary)
	api.WriteJSONResponse(w, r, http.StatusCreated, it)
}

func (h *Handler) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "DeleteSaved")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	if err := h.saved.Delete(ctx, ws.ID, chi.URLParam(r, "savedID")); err != nil {
		h.fail(w, r, l, span, err, "delete saved itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *Handler) DragStart(w http.ResponseWriter, r *http.Request) {
	_, span, l := h.begin(r, "DragStart")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	var req DragStartRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.badRequest(w, r, l, span, err)
		return
	}
	state := ws.Drag.Start(req.Payload)
	api.WriteJSONResponse(w, r, http.StatusOK, StateResponse{State: state.String()})
}

// DragDrop godoc
// @Summary      Drop the dragged item
// @Description  Commits the dragged item to the active itinerary day when the target is the itinerary board.
// @Tags         drag
// @Accept       json
// @Produce      json
// @Param        wsID path string true "Workspace ID"
// @Param        request body DragDropRequest true "Drop target"
// @Success      200 {object} dragdrop.DropResult
// @Router       /workspaces/{wsID}/drag/drop [post]
func (h *Handler) DragDrop(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "DragDrop")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	var req DragDropRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.badRequest(w, r, l, span, err)
		return
	}
	res := ws.Drag.Drop(ctx, req.Target)
	span.SetAttributes(attribute.Bool("drop.committed", res.Committed))
	api.WriteJSONResponse(w, r, http.StatusOK, res)
}

func (h *Handler) DragCancel(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "DragCancel")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	ws.Drag.Cancel()
	api.WriteJSONResponse(w, r, http.StatusOK, StateResponse{State: ws.Drag.State().String()})
}

func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "Notifications")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, h.events.Recent(ws.ID))
}

// Events upgrades to a websocket carrying the workspace's notifications.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "Events")
	ws, ok := h.workspace(w, r, span)
	span.End()
	if !ok {
		return
	}
	h.events.ServeWS(w, r, ws.ID)
}

func (h *Handler) notify(ctx context.Context, workspaceID string, level types.NotificationLevel, title, message string) {
	if h.registry.deps.Notifier == nil {
		return
	}
	h.registry.deps.Notifier.Notify(ctx, workspaceID, level, title, message)
}
