package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var keys = []string{
	"ADDR", "ENVIRONMENT", "LOG_FILE", "STORAGE_DRIVER", "SQLITE_PATH", "DATABASE_URL",
	"SPOTIFY_ID", "SPOTIFY_SECRET", "SPOTIFY_TOKEN_CACHE", "SPOTIFY_MARKET", "SPOTIFY_PLAYBACK",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
	"WEATHER_API_KEY", "WEATHER_BASE_URL", "WEATHER_LOCATION", "LATITUDE", "LONGITUDE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "RESOLVE_DELAY_MS", "RANDOM_SEED",
}

// clearEnv blanks every key, which Load treats as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := Load(missingFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Addr != ":8080" || c.StorageDriver != DriverSQLite || c.SQLitePath != "moodtune.db" {
		t.Errorf("server/storage defaults = %q %q %q", c.Addr, c.StorageDriver, c.SQLitePath)
	}
	if c.ResolveDelay != 300*time.Millisecond {
		t.Errorf("ResolveDelay = %v, want 300ms", c.ResolveDelay)
	}
	if c.SpotifyPlayback || c.HasCoordinate || c.Development() {
		t.Errorf("unexpected flags: %+v", c)
	}
	if c.RandomSeed == 0 {
		t.Error("RandomSeed should be seeded from the clock")
	}
	if c.WeatherLocation == "" || c.OpenAIModel == "" {
		t.Error("missing weather/model defaults")
	}
}

func TestLoad_Values(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "Development")
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://localhost/moodtune")
	t.Setenv("SPOTIFY_PLAYBACK", "true")
	t.Setenv("RESOLVE_DELAY_MS", "0")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("LATITUDE", "39.9")
	t.Setenv("LONGITUDE", "116.4")
	t.Setenv("REDIS_DB", "2")

	c, err := Load(missingFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !c.Development() || c.StorageDriver != DriverPostgres || !c.SpotifyPlayback {
		t.Errorf("Load() = %+v", c)
	}
	if c.ResolveDelay != 0 || c.RandomSeed != 42 || c.RedisDB != 2 {
		t.Errorf("numbers = %v %d %d", c.ResolveDelay, c.RandomSeed, c.RedisDB)
	}
	if !c.HasCoordinate || c.Latitude != 39.9 || c.Longitude != 116.4 {
		t.Errorf("coordinate = %v %v %v", c.HasCoordinate, c.Latitude, c.Longitude)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad driver", map[string]string{"STORAGE_DRIVER": "mysql"}, "STORAGE_DRIVER"},
		{"postgres without url", map[string]string{"STORAGE_DRIVER": "postgres"}, "DATABASE_URL"},
		{"bad bool", map[string]string{"SPOTIFY_PLAYBACK": "sometimes"}, "SPOTIFY_PLAYBACK"},
		{"bad delay", map[string]string{"RESOLVE_DELAY_MS": "soon"}, "RESOLVE_DELAY_MS"},
		{"negative delay", map[string]string{"RESOLVE_DELAY_MS": "-1"}, "RESOLVE_DELAY_MS"},
		{"half coordinate", map[string]string{"LATITUDE": "10"}, "LONGITUDE"},
		{"bad latitude", map[string]string{"LATITUDE": "north", "LONGITUDE": "1"}, "LATITUDE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(missingFile(t))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADDR", ":9999")
	os.Unsetenv("OPENAI_MODEL")
	t.Cleanup(func() { os.Unsetenv("OPENAI_MODEL") })

	path := filepath.Join(t.TempDir(), ".env")
	content := "OPENAI_MODEL=local-model\nADDR=:1234\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.OpenAIModel != "local-model" {
		t.Errorf("OpenAIModel = %q, want value from file", c.OpenAIModel)
	}
	if c.Addr != ":9999" {
		t.Errorf("Addr = %q, environment should win over file", c.Addr)
	}
}
