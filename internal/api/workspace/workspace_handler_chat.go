package workspace

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/api/chat"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type SendMessageRequest struct {
	Content string `json:"content"`
}

type MessagesResponse struct {
	Messages  []types.ChatMessage   `json:"messages"`
	Suggested []types.ItineraryItem `json:"suggested"`
	Pending   *types.SearchArea     `json:"pending_area,omitempty"`
}

type MoodRequest struct {
	Mood            string `json:"mood"`
	CurrentLocation string `json:"current_location,omitempty"`
}

type AdjustRequest struct {
	Mood            string           `json:"mood,omitempty"`
	CurrentTime     string           `json:"current_time,omitempty"`
	CurrentLocation string           `json:"current_location,omitempty"`
	Itinerary       []types.Activity `json:"itinerary,omitempty"`
}

type AcceptRequest struct {
	Itinerary []types.Activity `json:"itinerary,omitempty"`
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "GetMessages")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, MessagesResponse{
		Messages:  ws.Chat.Messages(),
		Suggested: ws.Chat.Suggested(),
		Pending:   ws.Chat.PendingArea(),
	})
}

// SendMessage godoc
// @Summary      Send a chat message
// @Description  Answers with destination suggestions, or with an area search when a circle was just drawn.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        wsID path string true "Workspace ID"
// @Param        request body SendMessageRequest true "Message"
// @Success      200 {array} types.ChatMessage
// @Failure      409 {object} map[string]interface{}
// @Router       /workspaces/{wsID}/messages [post]
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "SendMessage")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.badRequest(w, r, l, span, err)
		return
	}
	out, err := ws.Chat.SendMessage(ctx, req.Content)
	if err != nil {
		h.fail(w, r, l, span, err, "send message")
		return
	}
	span.SetStatus(codes.Ok, "")
	api.WriteJSONResponse(w, r, http.StatusOK, out)
}

func (h *Handler) GetLive(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "GetLive")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, ws.Chat.Live())
}

func (h *Handler) UpdateMood(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "UpdateMood")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	var req MoodRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.badRequest(w, r, l, span, err)
		return
	}
	if err := ws.Chat.UpdateMood(ctx, req.Mood, req.CurrentLocation); err != nil {
		h.fail(w, r, l, span, err, "update mood")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, ws.Chat.Live())
}

// Adjust godoc
// @Summary      Re-plan for the current mood
// @Description  Sends the live schedule (or the active itinerary) with mood, time and location to the backend and keeps the proposal for review.
// @Tags         live
// @Accept       json
// @Produce      json
// @Param        wsID path string true "Workspace ID"
// @Param        request body AdjustRequest true "Adjustment inputs"
// @Success      200 {object} types.AdjustmentResult
// @Failure      400 {object} map[string]interface{}
// @Router       /workspaces/{wsID}/live/adjust [post]
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "Adjust")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	var req AdjustRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.badRequest(w, r, l, span, err)
		return
	}
	if len(req.Itinerary) == 0 && len(ws.Chat.Live().Schedule) == 0 {
		if active, found := ws.Store.ActiveItinerary(); found {
			ws.Chat.SetSchedule(chat.ActivitiesFromItinerary(active))
		}
	}
	res, err := ws.Chat.Adjust(ctx, chat.AdjustInput{
		Mood:            req.Mood,
		CurrentTime:     req.CurrentTime,
		CurrentLocation: req.CurrentLocation,
		Itinerary:       req.Itinerary,
	})
	if err != nil {
		h.fail(w, r, l, span, err, "adjust itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, res)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "Accept")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	var req AcceptRequest
	if r.ContentLength != 0 {
		if err := api.DecodeJSONBody(w, r, &req); err != nil {
			h.badRequest(w, r, l, span, err)
			return
		}
	}
	merged, err := ws.Chat.Accept(ctx, req.Itinerary)
	if err != nil {
		h.fail(w, r, l, span, err, "apply changes")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, merged)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "Reject")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	ws.Chat.Reject()
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// Booking godoc
// @Summary      Booking lookup
// @Description  Runs one booking lookup (transportation, accommodation, local-transportation, comprehensive-plan) for the active itinerary.
// @Tags         bookings
// @Produce      json
// @Param        wsID path string true "Workspace ID"
// @Param        kind path string true "Booking kind"
// @Success      200 {object} extract.Formatted
// @Failure      409 {object} map[string]interface{}
// @Router       /workspaces/{wsID}/bookings/{kind} [post]
func (h *Handler) Booking(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "Booking")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	kind, err := types.ParseBookingKind(chi.URLParam(r, "kind"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
		return
	}
	span.SetAttributes(attribute.String("booking.kind", string(kind)))

	doc, err := activeItineraryJSON(ws)
	if err != nil {
		h.fail(w, r, l, span, err, "load "+kind.Label())
		return
	}
	f, err := ws.Chat.Lookup(ctx, kind, doc)
	if err != nil {
		h.fail(w, r, l, span, err, "load "+kind.Label())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, f)
}

func (h *Handler) BookingOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.begin(r, "BookingOverview")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	doc, err := activeItineraryJSON(ws)
	if err != nil {
		h.fail(w, r, l, span, err, "load booking options")
		return
	}
	ov, err := ws.Chat.Overview(ctx, doc)
	if err != nil {
		h.fail(w, r, l, span, err, "load booking options")
		return
	}
	if len(ov.Failures) > 0 {
		l.WarnContext(ctx, "Some booking lookups failed", slog.Int("failed", len(ov.Failures)))
	}
	api.WriteJSONResponse(w, r, http.StatusOK, ov)
}

func activeItineraryJSON(ws *Workspace) (string, error) {
	active, found := ws.Store.ActiveItinerary()
	if !found {
		return "", types.ErrNoActiveItinerary
	}
	doc, err := json.Marshal(active)
	if err != nil {
		return "", fmt.Errorf("encode itinerary: %w", err)
	}
	return string(doc), nil
}
