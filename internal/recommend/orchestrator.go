// Package recommend produces song lists for the UI from the music service,
// the AI recommender and a built-in fallback list.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/history"
	"github.com/justestif/moodtune/internal/params"
)

// Defaults for Orchestrator options.
const (
	DefaultLimit        = 20
	DefaultResolveDelay = 300 * time.Millisecond
)

// MusicService searches and recommends tracks.
type MusicService interface {
	Search(ctx context.Context, query string, limit int) ([]Song, error)
	Recommend(ctx context.Context, p params.Params, limit int) ([]Song, error)
	NewReleases(ctx context.Context, limit int) ([]Song, error)
}

// UserData is the context sent to the AI recommender.
type UserData struct {
	MoodScore    float64  `json:"moodScore"`
	Keywords     []string `json:"keywords"`
	Lyric        string   `json:"lyric"`
	Weather      string   `json:"weather"`
	MatchMood    bool     `json:"matchMood"`
	DominantMood string   `json:"dominantMood,omitempty"`
}

// Suggestion is the AI's answer: a summary plus "Title - Artist" strings.
type Suggestion struct {
	Summary string   `json:"summary"`
	Songs   []string `json:"suggestedSongs"`
}

// AIRecommender suggests songs for the user's current state.
type AIRecommender interface {
	Recommend(ctx context.Context, data UserData) (Suggestion, error)
}

// EntryReader returns today's mood entry, or nil when none exists.
type EntryReader interface {
	Today(ctx context.Context) (*history.Entry, error)
}

// Player starts playback of a song.
type Player interface {
	Play(ctx context.Context, s Song) error
}

// Orchestrator runs recommendation operations and holds their observable
// state. Operations may run concurrently; the last write to a field wins.
type Orchestrator struct {
	music   MusicService
	ai      AIRecommender
	history EntryReader
	player  Player
	logger  *zap.Logger

	rngMu sync.Mutex
	rng   Rand

	resolveDelay time.Duration
	limit        int
	fallback     []Song

	mu       sync.Mutex
	state    State
	inflight int
	closed   bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAI enables AI recommendations.
func WithAI(ai AIRecommender) Option {
	return func(o *Orchestrator) { o.ai = ai }
}

// WithHistory sets where today's mood entry is read from.
func WithHistory(h EntryReader) Option {
	return func(o *Orchestrator) { o.history = h }
}

// WithPlayer sets the player used to start the first AI-resolved song.
func WithPlayer(p Player) Option {
	return func(o *Orchestrator) { o.player = p }
}

// WithRand sets the randomness source for prompt jitter and keyword sampling.
func WithRand(r Rand) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.rng = r
		}
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithResolveDelay sets the pause between song lookups for AI suggestions.
func WithResolveDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.resolveDelay = d
		}
	}
}

// WithLimit sets how many songs are requested from the music service.
func WithLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithFallback replaces the built-in default song list.
func WithFallback(songs []Song) Option {
	return func(o *Orchestrator) {
		if len(songs) > 0 {
			o.fallback = cloneSongs(songs)
		}
	}
}

// New creates an Orchestrator over the given music service.
func New(music MusicService, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		music:        music,
		logger:       zap.NewNop(),
		rng:          NewRand(time.Now().UnixNano()),
		resolveDelay: DefaultResolveDelay,
		limit:        DefaultLimit,
		fallback:     DefaultSongs(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Close stops all further state updates. In-flight operations finish their
// network calls but their results are discarded.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

// GetRecommendations maps mood and intensity onto search parameters and asks
// the music service for matching songs. An empty answer falls back to
// trending songs; a failure falls back to the default list when there is
// nothing to show.
func (o *Orchestrator) GetRecommendations(ctx context.Context, mood string, intensity int) State {
	o.run(func() { o.recommendations(ctx, mood, intensity) })
	return o.State()
}

func (o *Orchestrator) recommendations(ctx context.Context, mood string, intensity int) {
	p := params.ForMood(mood, intensity)
	songs, err := o.music.Recommend(ctx, p, o.limit)
	switch {
	case err != nil:
		e := newError("getting recommendations", err)
		o.logger.Warn("recommendations failed",
			zap.String("mood", mood),
			zap.Int("intensity", intensity),
			zap.Error(err),
		)
		o.update(func(s *State) {
			s.setError(e)
			if len(s.Recommendations) == 0 {
				s.Recommendations = o.fallbackSongs()
			}
		})

	case len(songs) == 0:
		o.logger.Info("no recommendations, falling back to trending",
			zap.String("seeds", p.SeedString()),
		)
		o.update(func(s *State) {
			s.setMessage(KindEmpty, fmt.Sprintf("No %s songs found right now, showing trending songs instead.", moodName(mood)))
		})
		o.loadTrending(ctx, true)

	default:
		o.update(func(s *State) {
			s.Recommendations = cloneSongs(songs)
			s.clearError()
		})
	}
}

// GetTrendingSongs loads new releases into TrendingSongs, seeding
// Recommendations when it is empty.
func (o *Orchestrator) GetTrendingSongs(ctx context.Context) State {
	o.run(func() {
		if o.loadTrending(ctx, false) {
			o.update(func(s *State) { s.clearError() })
		}
	})
	return o.State()
}

// loadTrending fetches new releases. With replace set, a successful result
// also replaces Recommendations. Reports whether real songs were loaded.
func (o *Orchestrator) loadTrending(ctx context.Context, replace bool) bool {
	songs, err := o.music.NewReleases(ctx, o.limit)
	switch {
	case err != nil:
		e := newError("getting trending songs", err)
		o.logger.Warn("trending songs failed, using defaults", zap.Error(err))
		o.update(func(s *State) {
			s.setError(e)
			s.TrendingSongs = o.fallbackSongs()
			if len(s.Recommendations) == 0 {
				s.Recommendations = o.fallbackSongs()
			}
		})
		return false

	case len(songs) == 0:
		o.logger.Info("no trending songs, using defaults")
		o.update(func(s *State) {
			s.setMessage(KindEmpty, "No trending songs available, showing our picks instead.")
			s.TrendingSongs = o.fallbackSongs()
			if len(s.Recommendations) == 0 {
				s.Recommendations = o.fallbackSongs()
			}
		})
		return false
	}

	o.update(func(s *State) {
		s.TrendingSongs = cloneSongs(songs)
		if replace || len(s.Recommendations) == 0 {
			s.Recommendations = cloneSongs(songs)
		}
	})
	return true
}

// SearchMusic runs a free-text search into SearchResults. Blank queries are
// ignored. A failed search keeps the previous results and sets SearchError.
func (o *Orchestrator) SearchMusic(ctx context.Context, query string) State {
	q := strings.TrimSpace(query)
	if q == "" {
		return o.State()
	}
	o.run(func() { o.search(ctx, q) })
	return o.State()
}

func (o *Orchestrator) search(ctx context.Context, q string) {
	songs, err := o.music.Search(ctx, q, o.limit)
	switch {
	case err != nil:
		e := newError("searching", err)
		o.logger.Warn("search failed", zap.String("query", q), zap.Error(err))
		o.update(func(s *State) { s.SearchError = e.Error() })
	case len(songs) == 0:
		o.update(func(s *State) {
			s.SearchResults = []Song{}
			s.SearchError = fmt.Sprintf("No songs matched %q.", q)
		})
	default:
		o.update(func(s *State) {
			s.SearchResults = cloneSongs(songs)
			s.SearchError = ""
		})
	}
}

// GetAIRecommendation asks the AI recommender for songs and resolves each
// suggestion against the music service. A dominant mood set by the caller is
// kept. Otherwise it comes from today's entry when there is one, or from a
// jittered bucket of the mood score. Keywords are randomly subsampled. AI failures are surfaced as-is and
// leave Recommendations untouched.
func (o *Orchestrator) GetAIRecommendation(ctx context.Context, data UserData) State {
	o.run(func() { o.aiRecommendation(ctx, data) })
	return o.State()
}

func (o *Orchestrator) aiRecommendation(ctx context.Context, data UserData) {
	if o.ai == nil {
		o.fail(newError("getting AI recommendation", fmt.Errorf("AI recommender: %w", ErrConfig)))
		return
	}

	if strings.TrimSpace(data.DominantMood) == "" {
		data.DominantMood = o.dominantMood(ctx, data.MoodScore)
	}
	o.rngMu.Lock()
	data.Keywords = SampleKeywords(o.rng, data.Keywords)
	o.rngMu.Unlock()

	suggestion, err := o.ai.Recommend(ctx, data)
	if err != nil {
		o.logger.Warn("AI recommendation failed", zap.Error(err))
		o.fail(newError("getting AI recommendation", err))
		return
	}

	resolved, missing, err := o.resolve(ctx, suggestion.Songs)
	if err != nil {
		o.fail(newError("resolving AI songs", err))
		return
	}

	if len(resolved) == 0 {
		o.logger.Warn("no AI suggestions could be resolved", zap.Strings("missing", missing))
		o.update(func(s *State) {
			s.setError(&Error{Kind: KindNoSongs, Op: "resolving AI songs", Err: ErrNoSongs})
			s.MissingSongs = append([]string{}, missing...)
		})
		return
	}

	first := resolved[0].clone()
	if o.player != nil {
		if err := o.player.Play(ctx, first); err != nil {
			o.logger.Warn("starting playback failed", zap.String("song", first.Title), zap.Error(err))
		}
	}

	o.update(func(s *State) {
		s.Recommendations = cloneSongs(resolved)
		s.AISummary = suggestion.Summary
		s.MissingSongs = append([]string{}, missing...)
		s.NowPlaying = &first
		if len(missing) > 0 {
			s.setMessage(KindPartial, fmt.Sprintf("%d songs missing", len(missing)))
		} else {
			s.clearError()
		}
	})
}

// dominantMood prefers today's recorded mood over the score bucket.
func (o *Orchestrator) dominantMood(ctx context.Context, score float64) string {
	if o.history != nil {
		entry, err := o.history.Today(ctx)
		if err != nil {
			o.logger.Warn("reading today's entry failed, using mood score", zap.Error(err))
		}
		if entry != nil {
			return entry.Label().Display()
		}
	}

	o.rngMu.Lock()
	jittered := Jitter(o.rng, score)
	o.rngMu.Unlock()
	return MoodBucket(jittered)
}

// resolve looks up each suggestion one at a time, pausing between requests.
// Lookups that fail or find nothing are returned in missing. Only context
// cancellation aborts the loop.
func (o *Orchestrator) resolve(ctx context.Context, suggestions []string) (resolved []Song, missing []string, err error) {
	for i, suggestion := range suggestions {
		if i > 0 {
			if err := sleepWithContext(ctx, o.resolveDelay); err != nil {
				return nil, nil, err
			}
		}

		query := SearchQuery(suggestion)
		if query == "" {
			missing = append(missing, suggestion)
			continue
		}

		songs, err := o.music.Search(ctx, query, 1)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			o.logger.Warn("song lookup failed", zap.String("suggestion", suggestion), zap.Error(err))
			missing = append(missing, suggestion)
			continue
		}
		if len(songs) == 0 {
			missing = append(missing, suggestion)
			continue
		}
		resolved = append(resolved, songs[0])
	}
	return resolved, missing, nil
}

func (o *Orchestrator) fail(e *Error) {
	o.update(func(s *State) { s.setError(e) })
}

func (o *Orchestrator) fallbackSongs() []Song {
	return cloneSongs(o.fallback)
}

// run marks the state as loading for the duration of fn.
func (o *Orchestrator) run(fn func()) {
	o.begin()
	defer o.end()
	fn()
}

func (o *Orchestrator) begin() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inflight++
	if !o.closed {
		o.state.IsLoading = true
		o.state.Version++
	}
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inflight--
	if !o.closed {
		o.state.IsLoading = o.inflight > 0
		o.state.Version++
	}
}

// update applies fn to the state unless the orchestrator is closed.
func (o *Orchestrator) update(fn func(*State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	fn(&o.state)
	o.state.Version++
}

func moodName(mood string) string {
	name := strings.ToLower(strings.TrimSpace(mood))
	if name == "" {
		return "matching"
	}
	return name
}

// sleepWithContext waits for d or until ctx is done.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
