package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func newTestHub(history int) *Hub {
	return NewHub(history, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHub_RecentIsBounded(t *testing.T) {
	h := newTestHub(3)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		h.Notify(ctx, "ws-1", types.LevelInfo, title, "")
	}
	h.Notify(ctx, "ws-2", types.LevelError, "other", "")

	recent := h.Recent("ws-1")
	require.Len(t, recent, 3)
	assert.Equal(t, "c", recent[0].Title)
	assert.Equal(t, "e", recent[2].Title)
	assert.Equal(t, "ws-1", recent[2].WorkspaceID)
	assert.NotEmpty(t, recent[2].ID)

	assert.Len(t, h.Recent("ws-2"), 1)
	assert.Empty(t, h.Recent("missing"))
}

func TestHub_Forget(t *testing.T) {
	h := newTestHub(0)
	h.Notify(context.Background(), "ws-1", types.LevelSuccess, "Saved", "ok")
	h.Forget("ws-1")
	assert.Empty(t, h.Recent("ws-1"))
}

func TestHub_ServeWS(t *testing.T) {
	h := newTestHub(5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, "ws-1")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// wait until the subscriber is registered
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.subs["ws-1"]) == 1
	}, time.Second, 10*time.Millisecond)

	h.Notify(context.Background(), "ws-2", types.LevelInfo, "elsewhere", "")
	h.Notify(context.Background(), "ws-1", types.LevelError, "Location not found", "Could not find coordinates for Atlantis")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var n types.Notification
	require.NoError(t, json.Unmarshal(frame, &n))
	assert.Equal(t, types.LevelError, n.Level)
	assert.Equal(t, "Location not found", n.Title)
	assert.Equal(t, "ws-1", n.WorkspaceID)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.subs["ws-1"]) == 0
	}, time.Second, 10*time.Millisecond)
}
