// Package config loads settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all runtime settings.
type Config struct {
	Addr        string
	Environment string
	LogFile     string

	StorageDriver string
	SQLitePath    string
	DatabaseURL   string

	SpotifyID         string
	SpotifySecret     string
	SpotifyTokenCache string
	SpotifyMarket     string
	SpotifyPlayback   bool

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	WeatherKey      string
	WeatherBaseURL  string
	WeatherLocation string
	Latitude        float64
	Longitude       float64
	HasCoordinate   bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ResolveDelay time.Duration
	RandomSeed   int64
}

// Development reports whether ENVIRONMENT is "development".
func (c *Config) Development() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. Missing files are ignored; variables already set in the
// environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	c := &Config{
		Addr:        getEnv("ADDR", ":8080"),
		Environment: getEnv("ENVIRONMENT", "production"),
		LogFile:     getEnv("LOG_FILE", ""),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverSQLite)),
		SQLitePath:    getEnv("SQLITE_PATH", "moodtune.db"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		SpotifyID:         getEnv("SPOTIFY_ID", ""),
		SpotifySecret:     getEnv("SPOTIFY_SECRET", ""),
		SpotifyTokenCache: getEnv("SPOTIFY_TOKEN_CACHE", ""),
		SpotifyMarket:     getEnv("SPOTIFY_MARKET", ""),

		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),

		WeatherKey:      getEnv("WEATHER_API_KEY", ""),
		WeatherBaseURL:  getEnv("WEATHER_BASE_URL", ""),
		WeatherLocation: getEnv("WEATHER_LOCATION", "101010100"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
	}

	var err error
	if c.SpotifyPlayback, err = getBool("SPOTIFY_PLAYBACK", false); err != nil {
		return nil, err
	}
	if c.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	delayMS, err := getInt("RESOLVE_DELAY_MS", 300)
	if err != nil {
		return nil, err
	}
	if delayMS < 0 {
		return nil, fmt.Errorf("RESOLVE_DELAY_MS must not be negative, got %d", delayMS)
	}
	c.ResolveDelay = time.Duration(delayMS) * time.Millisecond

	seed, err := getInt("RANDOM_SEED", 0)
	if err != nil {
		return nil, err
	}
	c.RandomSeed = int64(seed)
	if c.RandomSeed == 0 {
		c.RandomSeed = time.Now().UnixNano()
	}

	if err := c.loadCoordinate(); err != nil {
		return nil, err
	}

	switch c.StorageDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return nil, errors.New("STORAGE_DRIVER=postgres requires DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	return c, nil
}

func (c *Config) loadCoordinate() error {
	lat, lon := os.Getenv("LATITUDE"), os.Getenv("LONGITUDE")
	if lat == "" && lon == "" {
		return nil
	}
	if lat == "" || lon == "" {
		return errors.New("LATITUDE and LONGITUDE must be set together")
	}

	var err error
	if c.Latitude, err = strconv.ParseFloat(lat, 64); err != nil {
		return fmt.Errorf("parsing LATITUDE: %w", err)
	}
	if c.Longitude, err = strconv.ParseFloat(lon, 64); err != nil {
		return fmt.Errorf("parsing LONGITUDE: %w", err)
	}
	c.HasCoordinate = true
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return b, nil
}
