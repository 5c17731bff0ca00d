package recommend

import (
	"context"
	"sync"

	"github.com/justestif/moodtune/internal/history"
	"github.com/justestif/moodtune/internal/params"
)

type fakeMusic struct {
	mu sync.Mutex

	recommend    []Song
	recommendErr error
	releases     []Song
	releasesErr  error

	// search results keyed by query; queries not present return searchErr.
	search    map[string][]Song
	searchErr error

	gotParams   []params.Params
	gotQueries  []string
	releaseHits int
}

func (f *fakeMusic) Search(_ context.Context, query string, _ int) ([]Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotQueries = append(f.gotQueries, query)
	if songs, ok := f.search[query]; ok {
		return songs, nil
	}
	return nil, f.searchErr
}

func (f *fakeMusic) Recommend(_ context.Context, p params.Params, _ int) ([]Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotParams = append(f.gotParams, p)
	return f.recommend, f.recommendErr
}

func (f *fakeMusic) NewReleases(_ context.Context, _ int) ([]Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releaseHits++
	return f.releases, f.releasesErr
}

func (f *fakeMusic) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.gotQueries...)
}

// blockingMusic holds Recommend open until release is closed.
type blockingMusic struct {
	fakeMusic
	entered chan struct{}
	release chan struct{}
}

func (b *blockingMusic) Recommend(ctx context.Context, p params.Params, limit int) ([]Song, error) {
	close(b.entered)
	<-b.release
	return b.fakeMusic.Recommend(ctx, p, limit)
}

type fakeAI struct {
	suggestion Suggestion
	err        error
	got        []UserData
}

func (f *fakeAI) Recommend(_ context.Context, data UserData) (Suggestion, error) {
	f.got = append(f.got, data)
	return f.suggestion, f.err
}

type fakeHistory struct {
	entry *history.Entry
	err   error
}

func (f *fakeHistory) Today(context.Context) (*history.Entry, error) {
	return f.entry, f.err
}

type fakePlayer struct {
	played []Song
	err    error
}

func (f *fakePlayer) Play(_ context.Context, s Song) error {
	f.played = append(f.played, s)
	return f.err
}

// fixedRand returns the same values on every call. Intn results are
// reduced modulo n.
type fixedRand struct {
	n int
	f float64
}

func (r fixedRand) Intn(n int) int { return r.n % n }
func (r fixedRand) Float64() float64 { return r.f }

func song(id, title string, artists ...string) Song {
	return Song{ID: id, Title: title, Artists: artists, URI: "spotify:track:" + id}
}
