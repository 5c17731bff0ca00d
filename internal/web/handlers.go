package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/history"
	"github.com/justestif/moodtune/internal/location"
	"github.com/justestif/moodtune/internal/mood"
	"github.com/justestif/moodtune/internal/recommend"
	"github.com/justestif/moodtune/internal/trends"
	"github.com/justestif/moodtune/internal/weather"
)

const maxBodyBytes = 1 << 20

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	history         *history.Service
	trends          *trends.Service
	weather         *weather.Service
	location        location.Provider
	weatherLocation string
	sessions        *SessionStore
	logger          *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg ServerConfig, sessions *SessionStore) *Handlers {
	return &Handlers{
		history:         cfg.History,
		trends:          cfg.Trends,
		weather:         cfg.Weather,
		location:        cfg.Location,
		weatherLocation: cfg.WeatherLocation,
		sessions:        sessions,
		logger:          cfg.Logger,
	}
}

// Health reports liveness (GET /health).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CatalogResponse lists the selectable questionnaire answers.
type CatalogResponse struct {
	Keywords []string `json:"keywords"`
	Lyrics   []string `json:"lyrics"`
}

// Catalog returns the known keywords and lyrics (GET /api/catalog).
func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{
		Keywords: mood.Keywords(),
		Lyrics:   mood.Lyrics(),
	})
}

// TestRequest is a completed questionnaire. A missing slider counts as 0.5.
type TestRequest struct {
	Slider   *float64 `json:"slider"`
	Keywords []string `json:"keywords"`
	Lyric    string   `json:"lyric"`
	Note     string   `json:"note"`
}

// TestResponse is the scored questionnaire and the saved entry.
type TestResponse struct {
	Entry  history.Entry `json:"entry"`
	Vector mood.Vector   `json:"vector"`
	Mood   string        `json:"mood"`
	Score  float64       `json:"score"`
}

// SubmitTest scores a questionnaire and saves today's entry (POST /api/test).
func (h *Handlers) SubmitTest(w http.ResponseWriter, r *http.Request) {
	var req TestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := mood.Input{Slider: 0.5, Keywords: req.Keywords, Lyric: req.Lyric, Note: req.Note}
	if req.Slider != nil {
		in.Slider = *req.Slider
	}

	entry, res, err := h.history.Record(r.Context(), in)
	if err != nil {
		h.logger.Error("saving mood entry failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save mood entry")
		return
	}

	writeJSON(w, http.StatusCreated, TestResponse{
		Entry:  entry,
		Vector: res.Vector,
		Mood:   res.Label.Display(),
		Score:  res.Score,
	})
}

// State returns the session's recommendation state (GET /api/state).
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	writeJSON(w, http.StatusOK, s.Orchestrator.State())
}

// RecommendationsRequest selects a mood and intensity.
type RecommendationsRequest struct {
	Mood      string `json:"mood"`
	Intensity int    `json:"intensity"`
}

// Recommendations loads songs for a mood (POST /api/recommendations).
// Without a mood, today's entry is used.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Mood == "" {
		today, err := h.history.Today(r.Context())
		if err != nil {
			h.logger.Warn("reading today's entry failed", zap.Error(err))
		}
		if today != nil {
			req.Mood = string(today.Label())
		}
	}
	if req.Intensity == 0 {
		req.Intensity = 3
	}

	s := h.sessions.FromRequest(w, r)
	writeJSON(w, http.StatusOK, s.Orchestrator.GetRecommendations(r.Context(), req.Mood, req.Intensity))
}

// Trending loads new releases (POST /api/trending).
func (h *Handlers) Trending(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	writeJSON(w, http.StatusOK, s.Orchestrator.GetTrendingSongs(r.Context()))
}

// Search runs a free-text song search (GET /api/search?q=).
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	writeJSON(w, http.StatusOK, s.Orchestrator.SearchMusic(r.Context(), r.URL.Query().Get("q")))
}

// AIRecommendation asks the AI for songs (POST /api/ai). The current
// weather is filled in when the request leaves it empty.
func (h *Handlers) AIRecommendation(w http.ResponseWriter, r *http.Request) {
	var req recommend.UserData
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Weather == "" {
		req.Weather = h.currentWeather(r).Description()
	}

	s := h.sessions.FromRequest(w, r)
	writeJSON(w, http.StatusOK, s.Orchestrator.GetAIRecommendation(r.Context(), req))
}

// WeatherResponse is the reading used for prompts.
type WeatherResponse struct {
	Location    string          `json:"location"`
	Reading     weather.Reading `json:"reading"`
	Description string          `json:"description"`
}

// Weather returns the current weather (GET /api/weather).
func (h *Handlers) Weather(w http.ResponseWriter, r *http.Request) {
	loc := h.weatherLocationFor(r)
	reading := h.weather.Current(r.Context(), loc)
	writeJSON(w, http.StatusOK, WeatherResponse{
		Location:    loc,
		Reading:     reading,
		Description: reading.Description(),
	})
}

func (h *Handlers) currentWeather(r *http.Request) weather.Reading {
	return h.weather.Current(r.Context(), h.weatherLocationFor(r))
}

func (h *Handlers) weatherLocationFor(r *http.Request) string {
	return location.Resolve(r.Context(), h.location, h.weatherLocation)
}

// HistoryByDate returns one day's entry (GET /api/history/{date}).
func (h *Handlers) HistoryByDate(w http.ResponseWriter, r *http.Request) {
	entry, err := h.history.Get(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		h.writeHistoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HistoryMonth returns a month of entries (GET /api/history/month/{month}).
func (h *Handlers) HistoryMonth(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.Month(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		h.writeHistoryError(w, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Trends returns the month's summary and mood phases (GET /api/trends/{month}).
func (h *Handlers) Trends(w http.ResponseWriter, r *http.Request) {
	report, err := h.trends.Month(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		h.writeHistoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) writeHistoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, history.ErrInvalidDate), errors.Is(err, history.ErrInvalidMonth):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, history.ErrNotFound):
		writeError(w, http.StatusNotFound, "No entry for that date")
	default:
		h.logger.Error("history request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load history")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads the request body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}
