package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-travel-planner/internal/api/chat"
	"github.com/FACorreiaa/go-travel-planner/internal/api/dragdrop"
	"github.com/FACorreiaa/go-travel-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-travel-planner/internal/api/mapview"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Workspace is the state of one planner tab.
type Workspace struct {
	ID        string
	Store     *itinerary.Store
	Drag      *dragdrop.Session
	Circle    *mapview.CircleDraw
	Selection *mapview.Selection
	Chat      *chat.Orchestrator
	CreatedAt time.Time
}

// Notifier is what the workspace components publish toasts through.
// *notify.Hub implements it.
type Notifier interface {
	Notify(ctx context.Context, workspaceID string, level types.NotificationLevel, title, message string)
	Forget(workspaceID string)
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (types.Coordinates, error)
}

type Deps struct {
	Backend      chat.Backend
	Geocoder     Geocoder
	AreaSearcher chat.AreaSearcher
	Notifier     Notifier
	Timezones    chat.TimezoneFinder
}

// Registry holds live workspaces. Idle ones expire after the configured TTL.
type Registry struct {
	workspaces *cache.Cache
	deps       Deps
	logger     *slog.Logger
}

func NewRegistry(ttl, cleanupInterval time.Duration, deps Deps, logger *slog.Logger) *Registry {
	r := &Registry{
		workspaces: cache.New(ttl, cleanupInterval),
		deps:       deps,
		logger:     logger.With(slog.String("component", "workspace_registry")),
	}
	r.workspaces.OnEvicted(func(id string, _ interface{}) {
		if r.deps.Notifier != nil {
			r.deps.Notifier.Forget(id)
		}
		r.logger.Debug("Workspace evicted", slog.String("workspace_id", id))
	})
	return r
}

// Create builds a workspace and starts obtaining its session handle in the
// background.
func (r *Registry) Create(ctx context.Context) *Workspace {
	id := uuid.NewString()
	store := itinerary.NewStore()

	var geocoder dragdrop.Geocoder
	var chatGeocoder chat.Geocoder
	if r.deps.Geocoder != nil {
		geocoder, chatGeocoder = r.deps.Geocoder, r.deps.Geocoder
	}
	var dragNotifier dragdrop.Notifier
	var chatNotifier chat.Notifier
	if r.deps.Notifier != nil {
		dragNotifier, chatNotifier = r.deps.Notifier, r.deps.Notifier
	}

	orchestrator := chat.NewOrchestrator(chat.Options{
		WorkspaceID:  id,
		Backend:      r.deps.Backend,
		Geocoder:     chatGeocoder,
		AreaSearcher: r.deps.AreaSearcher,
		Notifier:     chatNotifier,
		Timezones:    r.deps.Timezones,
		Logger:       r.logger,
	})
	ws := &Workspace{
		ID:        id,
		Store:     store,
		Drag:      dragdrop.NewSession(id, store, geocoder, dragNotifier, r.logger),
		Circle:    mapview.NewCircleDraw(orchestrator.OnCircleDrawn),
		Selection: &mapview.Selection{},
		Chat:      orchestrator,
		CreatedAt: time.Now().UTC(),
	}
	r.workspaces.Set(id, ws, cache.DefaultExpiration)

	go orchestrator.Mount(context.WithoutCancel(ctx))

	r.logger.InfoContext(ctx, "Workspace created", slog.String("workspace_id", id))
	return ws
}

// Get returns a live workspace and extends its lifetime.
func (r *Registry) Get(id string) (*Workspace, error) {
	v, found := r.workspaces.Get(id)
	if !found {
		return nil, fmt.Errorf("workspace %s: %w", id, types.ErrNotFound)
	}
	ws := v.(*Workspace)
	r.workspaces.Set(id, ws, cache.DefaultExpiration)
	return ws, nil
}

func (r *Registry) Delete(id string) error {
	if _, found := r.workspaces.Get(id); !found {
		return fmt.Errorf("workspace %s: %w", id, types.ErrNotFound)
	}
	r.workspaces.Delete(id)
	return nil
}

func (r *Registry) Count() int {
	return r.workspaces.ItemCount()
}
