// Command moodtune runs the mood-based music recommendation API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/ai"
	"github.com/justestif/moodtune/internal/auth"
	"github.com/justestif/moodtune/internal/config"
	"github.com/justestif/moodtune/internal/db"
	"github.com/justestif/moodtune/internal/history"
	"github.com/justestif/moodtune/internal/location"
	"github.com/justestif/moodtune/internal/logging"
	"github.com/justestif/moodtune/internal/recommend"
	"github.com/justestif/moodtune/internal/spotify"
	"github.com/justestif/moodtune/internal/sqlite"
	"github.com/justestif/moodtune/internal/trends"
	"github.com/justestif/moodtune/internal/weather"
	"github.com/justestif/moodtune/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(logging.Options{Development: cfg.Development(), File: cfg.LogFile})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Spotify
	authOpts := []auth.Option{auth.WithLogger(logger)}
	cache, err := tokenCache(cfg)
	if err != nil {
		logger.Warn("token cache disabled", zap.Error(err))
	} else {
		authOpts = append(authOpts, auth.WithTokenCache(cache))
	}
	manager, err := auth.NewManager(auth.Credentials{
		ClientID:     cfg.SpotifyID,
		ClientSecret: cfg.SpotifySecret,
	}, authOpts...)
	if err != nil {
		return fmt.Errorf("please set SPOTIFY_ID and SPOTIFY_SECRET environment variables: %w", err)
	}
	music := spotify.New(manager, spotify.WithMarket(cfg.SpotifyMarket))

	// AI
	aiClient, err := ai.New(ai.Config{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	}, ai.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating AI client: %w", err)
	}
	if !aiClient.Configured() {
		logger.Warn("OPENAI_API_KEY not set, AI recommendations disabled")
	}

	// Weather
	weatherOpts := []weather.Option{weather.WithLogger(logger)}
	if cfg.RedisAddr != "" {
		rdb, err := weather.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, caching weather in memory", zap.Error(err))
		} else {
			defer rdb.Close()
			weatherOpts = append(weatherOpts, weather.WithCache(weather.NewRedisCache(rdb)))
		}
	}
	weatherSvc := weather.NewService(weather.NewClient(cfg.WeatherKey, cfg.WeatherBaseURL), weatherOpts...)

	loc := location.None()
	if cfg.HasCoordinate {
		loc = location.NewStatic(cfg.Latitude, cfg.Longitude)
	}

	hist := history.NewService(store, history.WithLogger(logger))

	server, err := web.NewServer(web.ServerConfig{
		Addr:            cfg.Addr,
		Logger:          logger,
		History:         hist,
		Trends:          trends.NewService(hist, trends.DefaultConfig()),
		Weather:         weatherSvc,
		Location:        loc,
		WeatherLocation: cfg.WeatherLocation,
		NewOrchestrator: orchestratorFactory(cfg, music, aiClient, hist, logger),
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run(ctx)
}

// openStore returns the configured history store and its closer.
func openStore(ctx context.Context, cfg *config.Config) (history.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("migrating database: %w", err)
		}
		return database.Entries(), database.Close, nil
	default:
		adapter, err := sqlite.NewAdapter(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return adapter, func() { _ = adapter.Close() }, nil
	}
}

func tokenCache(cfg *config.Config) (*auth.TokenCache, error) {
	if cfg.SpotifyTokenCache != "" {
		return auth.NewTokenCache(cfg.SpotifyTokenCache), nil
	}
	return auth.DefaultTokenCache()
}

// orchestratorFactory builds one orchestrator per browser session. Each gets
// its own random source derived from the configured seed.
func orchestratorFactory(cfg *config.Config, music *spotify.Client, aiClient *ai.Client, hist *history.Service, logger *zap.Logger) func() *recommend.Orchestrator {
	var mu sync.Mutex
	seeds := recommend.NewRand(cfg.RandomSeed)

	return func() *recommend.Orchestrator {
		mu.Lock()
		seed := seeds.Int63()
		mu.Unlock()

		opts := []recommend.Option{
			recommend.WithAI(aiClient),
			recommend.WithHistory(hist),
			recommend.WithLogger(logger),
			recommend.WithResolveDelay(cfg.ResolveDelay),
			recommend.WithRand(recommend.NewRand(seed)),
		}
		if cfg.SpotifyPlayback {
			opts = append(opts, recommend.WithPlayer(music))
		}
		return recommend.New(music, opts...)
	}
}
