package container

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/ringsaturn/tzf"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/api/backend"
	"github.com/FACorreiaa/go-travel-planner/internal/api/chat"
	generativeAI "github.com/FACorreiaa/go-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-planner/internal/api/geocoding"
	"github.com/FACorreiaa/go-travel-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-travel-planner/internal/api/notify"
	"github.com/FACorreiaa/go-travel-planner/internal/api/travel"
	"github.com/FACorreiaa/go-travel-planner/internal/api/workspace"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	Redis            *redis.Client
	Backend          *backend.Client
	Hub              *notify.Hub
	Registry         *workspace.Registry
	WorkspaceHandler *workspace.Handler
	TravelHandler    *travel.Handler
}

// NewContainer wires repositories, clients, services and handlers. The LLM
// and timezone lookups are optional: travel search and local-time
// resolution are disabled when they cannot be built.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger, Pool: pool}

	c.Backend = backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)

	var geoCache geocoding.Cache = geocoding.NewMemoryCache(cfg.Mapbox.CacheTTL, cfg.Mapbox.CacheTTL)
	if cfg.Repositories.Redis.Enabled {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Repositories.Redis.Addr,
			Password: cfg.Repositories.Redis.Password,
			DB:       cfg.Repositories.Redis.DB,
		})
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, using in-memory geocode cache", slog.Any("error", err))
			_ = c.Redis.Close()
			c.Redis = nil
		} else {
			geoCache = geocoding.NewRedisCache(c.Redis, cfg.Mapbox.CacheTTL, logger)
		}
	}
	geocoder := geocoding.NewServiceImpl(geocoding.Config{
		BaseURL:           cfg.Mapbox.BaseURL,
		AccessToken:       cfg.Mapbox.AccessToken,
		RequestsPerSecond: cfg.Mapbox.RequestsPerSecond,
		Burst:             cfg.Mapbox.Burst,
		SearchLimit:       cfg.Mapbox.SearchLimit,
		Timeout:           cfg.Mapbox.Timeout,
	}, nil, geoCache, logger)

	var zones chat.TimezoneFinder
	if finder, err := tzf.NewDefaultFinder(); err != nil {
		logger.Warn("Timezone finder unavailable, live times use server time", slog.Any("error", err))
	} else {
		zones = finder
	}

	c.Hub = notify.NewHub(cfg.Workspace.History, logger)
	c.Registry = workspace.NewRegistry(cfg.Workspace.TTL, cfg.Workspace.CleanupInterval, workspace.Deps{
		Backend:      c.Backend,
		Geocoder:     geocoder,
		AreaSearcher: geocoder,
		Notifier:     c.Hub,
		Timezones:    zones,
	}, logger)

	repo := itinerary.NewRepository(pool, logger)
	saved := itinerary.NewServiceImpl(repo, c.Backend, logger)
	c.WorkspaceHandler = workspace.NewHandler(c.Registry, saved, c.Hub, logger)

	llm, err := newLLM(ctx, cfg)
	if err != nil {
		logger.Warn("LLM client unavailable, travel search disabled", slog.Any("error", err))
	} else {
		c.TravelHandler = travel.NewHandler(travel.NewServiceImpl(llm, cfg.LLM.CacheTTL, logger), logger)
	}

	return c, nil
}

func newLLM(ctx context.Context, cfg *config.Config) (generativeAI.Client, error) {
	provider := generativeAI.Provider(cfg.LLM.Provider)
	model := cfg.LLM.Model
	if provider == generativeAI.ProviderOpenAI && cfg.LLM.OpenAI.Model != "" {
		model = cfg.LLM.OpenAI.Model
	}
	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey == "" {
		openAIKey = os.Getenv("GROQ_API_KEY")
	}
	return generativeAI.NewClient(ctx, generativeAI.Options{
		Provider:      provider,
		Model:         model,
		GeminiAPIKey:  os.Getenv("GOOGLE_GEMINI_API_KEY"),
		OpenAIAPIKey:  openAIKey,
		OpenAIBaseURL: cfg.LLM.OpenAI.BaseURL,
		HTTPClient:    &http.Client{Timeout: cfg.Backend.Timeout},
	})
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
