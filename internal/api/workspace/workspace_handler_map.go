package workspace

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/paulmach/orb/geojson"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/api/mapview"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type PointRequest struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type CircleClickResponse struct {
	Completed bool                  `json:"completed"`
	Area      *types.SearchArea     `json:"area,omitempty"`
	Preview   mapview.CirclePreview `json:"preview"`
}

type MarkersResponse struct {
	Markers  *geojson.FeatureCollection `json:"markers"`
	View     mapview.View               `json:"view"`
	Selected *types.ItineraryItem       `json:"selected,omitempty"`
}

type SelectRequest struct {
	ItemID string `json:"item_id"`
}

func (h *Handler) CircleStart(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "CircleStart")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	ws.Circle.Start()
	api.WriteJSONResponse(w, r, http.StatusOK, ws.Circle.Preview())
}

// CircleClick places the center, then the edge. The second click hands the
// area to the chat, which asks what to search for.
func (h *Handler) CircleClick(w http.ResponseWriter, r *http.Request) {
	_, span, l := h.begin(r, "CircleClick")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	var req PointRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.badRequest(w, r, l, span, err)
		return
	}
	area, done := ws.Circle.Click(types.Coordinates{Longitude: req.Longitude, Latitude: req.Latitude})
	api.WriteJSONResponse(w, r, http.StatusOK, CircleClickResponse{
		Completed: done,
		Area:      area,
		Preview:   ws.Circle.Preview(),
	})
}

func (h *Handler) CircleMove(w http.ResponseWriter, r *http.Request) {
	_, span, l := h.begin(r, "CircleMove")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	var req PointRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.badRequest(w, r, l, span, err)
		return
	}
	ws.Circle.Move(types.Coordinates{Longitude: req.Longitude, Latitude: req.Latitude})
	api.WriteJSONResponse(w, r, http.StatusOK, ws.Circle.Preview())
}

func (h *Handler) CircleCancel(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "CircleCancel")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	ws.Circle.Cancel()
	api.WriteJSONResponse(w, r, http.StatusOK, ws.Circle.Preview())
}

// Markers godoc
// @Summary      Map markers
// @Description  GeoJSON of the active itinerary's places (optionally only the active day) and the latest suggestions.
// @Tags         map
// @Produce      json
// @Param        wsID    path  string true  "Workspace ID"
// @Param        day_only query bool  false "Only the active day"
// @Success      200 {object} MarkersResponse
// @Router       /workspaces/{wsID}/map/markers [get]
func (h *Handler) Markers(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "Markers")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	dayOnly, _ := strconv.ParseBool(r.URL.Query().Get("day_only"))
	fc := mapview.Markers(ws.Store.Snapshot(), dayOnly, ws.Chat.Suggested())
	resp := MarkersResponse{Markers: fc, View: mapview.ViewFor(fc), Selected: syncSelection(ws)}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Select opens the popup of an itinerary item or a suggested place.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	_, span, l := h.begin(r, "Select")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	var req SelectRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.badRequest(w, r, l, span, err)
		return
	}
	item, found := findItem(ws, req.ItemID)
	if !found {
		h.fail(w, r, l, span, fmt.Errorf("item %s: %w", req.ItemID, types.ErrNotFound), "select place")
		return
	}
	if err := ws.Selection.Select(item); err != nil {
		h.fail(w, r, l, span, err, "select place")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, item)
}

func (h *Handler) Unselect(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.begin(r, "Unselect")
	defer span.End()

	ws, ok := h.workspace(w, r, span)
	if !ok {
		return
	}
	ws.Selection.Close()
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// syncSelection closes the popup when its item is no longer on the map and
// otherwise refreshes it from the store.
func syncSelection(ws *Workspace) *types.ItineraryItem {
	current, open := ws.Selection.Current()
	if !open {
		return nil
	}
	item, found := findItem(ws, current.ID)
	if !found || ws.Selection.Select(item) != nil {
		ws.Selection.Close()
		return nil
	}
	return &item
}

func findItem(ws *Workspace, id string) (types.ItineraryItem, bool) {
	snap := ws.Store.Snapshot()
	for _, item := range snap.ActiveItems(false) {
		if item.ID == id {
			return item, true
		}
	}
	for _, item := range ws.Chat.Suggested() {
		if item.ID == id {
			return item, true
		}
	}
	return types.ItineraryItem{}, false
}
