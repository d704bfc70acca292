package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	DefaultHistory = 20
	sendBuffer     = 16
	writeWait      = 10 * time.Second
)

type subscriber struct {
	send chan []byte
}

// Hub keeps recent notifications per workspace and pushes new ones to the
// workspace's websocket subscribers.
type Hub struct {
	mu       sync.Mutex
	history  int
	recent   map[string][]types.Notification
	subs     map[string]map[*subscriber]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
	now      func() time.Time
}

func NewHub(history int, logger *slog.Logger) *Hub {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Hub{
		history: history,
		recent:  make(map[string][]types.Notification),
		subs:    make(map[string]map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "notify")),
		now:    time.Now,
	}
}

// Notify records a toast and fans it out. Slow subscribers miss frames
// rather than block the caller.
func (h *Hub) Notify(ctx context.Context, workspaceID string, level types.NotificationLevel, title, message string) {
	n := types.Notification{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Level:       level,
		Title:       title,
		Message:     message,
		Time:        h.now().UTC(),
	}
	frame, err := json.Marshal(n)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to encode notification", slog.Any("error", err))
		return
	}

	h.mu.Lock()
	ring := append(h.recent[workspaceID], n)
	if len(ring) > h.history {
		ring = ring[len(ring)-h.history:]
	}
	h.recent[workspaceID] = ring
	for s := range h.subs[workspaceID] {
		select {
		case s.send <- frame:
		default:
			h.logger.WarnContext(ctx, "Dropping notification for slow subscriber", slog.String("workspace_id", workspaceID))
		}
	}
	h.mu.Unlock()

	metrics.Get().NotificationsPublished.Add(ctx, 1)
	h.logger.DebugContext(ctx, "Notification published",
		slog.String("workspace_id", workspaceID),
		slog.String("level", string(level)),
		slog.String("title", title))
}

// Recent returns the newest notifications of a workspace, oldest first.
func (h *Hub) Recent(workspaceID string) []types.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]types.Notification, len(h.recent[workspaceID]))
	copy(out, h.recent[workspaceID])
	return out
}

// Forget drops the history and disconnects the subscribers of a workspace.
func (h *Hub) Forget(workspaceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.recent, workspaceID)
	for s := range h.subs[workspaceID] {
		close(s.send)
	}
	delete(h.subs, workspaceID)
}

func (h *Hub) subscribe(workspaceID string) *subscriber {
	s := &subscriber{send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	if h.subs[workspaceID] == nil {
		h.subs[workspaceID] = make(map[*subscriber]struct{})
	}
	h.subs[workspaceID][s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(workspaceID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[workspaceID][s]; !ok {
		return
	}
	delete(h.subs[workspaceID], s)
	close(s.send)
	if len(h.subs[workspaceID]) == 0 {
		delete(h.subs, workspaceID)
	}
}

// ServeWS upgrades the request and streams the workspace's notifications
// until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, workspaceID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed", slog.Any("error", err))
		return
	}
	ctx := context.WithoutCancel(r.Context())
	m := metrics.Get()
	m.EventStreamSubscribers.Add(ctx, 1)

	s := h.subscribe(workspaceID)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for frame := range s.send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				_ = conn.Close()
				return
			}
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	}()

	// Reads only detect the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unsubscribe(workspaceID, s)
	<-done
	_ = conn.Close()
	m.EventStreamSubscribers.Add(ctx, -1)
}
