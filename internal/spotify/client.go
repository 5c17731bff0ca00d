// Package spotify adapts the Spotify Web API to the recommendation engine.
package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/moodtune/internal/auth"
	"github.com/justestif/moodtune/internal/params"
	"github.com/justestif/moodtune/internal/recommend"
)

// Spotify caps list endpoints at 50 items.
const maxLimit = 50

// ClientSource provides an authenticated API client. *auth.Manager
// satisfies it.
type ClientSource interface {
	Client(ctx context.Context) (*spotify.Client, error)
}

// Client implements recommend.MusicService and recommend.Player.
type Client struct {
	source ClientSource
	market string
}

var (
	_ recommend.MusicService = (*Client)(nil)
	_ recommend.Player       = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithMarket restricts results to tracks playable in an ISO 3166 market.
func WithMarket(market string) Option {
	return func(c *Client) { c.market = market }
}

// New creates a Client that fetches its API client from source on every
// call, so session renewals are picked up.
func New(source ClientSource, opts ...Option) *Client {
	c := &Client{source: source}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) api(ctx context.Context) (*spotify.Client, error) {
	api, err := c.source.Client(ctx)
	if errors.Is(err, auth.ErrMissingCredentials) {
		return nil, fmt.Errorf("%w: %w", recommend.ErrConfig, err)
	}
	if err != nil {
		return nil, fmt.Errorf("authenticating with spotify: %w", err)
	}
	return api, nil
}

func (c *Client) requestOptions(limit int) []spotify.RequestOption {
	opts := []spotify.RequestOption{spotify.Limit(clampLimit(limit))}
	if c.market != "" {
		opts = append(opts, spotify.Market(c.market))
	}
	return opts
}

// Search finds tracks matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]recommend.Song, error) {
	api, err := c.api(ctx)
	if err != nil {
		return nil, err
	}

	res, err := api.Search(ctx, query, spotify.SearchTypeTrack, c.requestOptions(limit)...)
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	if res.Tracks == nil {
		return []recommend.Song{}, nil
	}

	songs := make([]recommend.Song, 0, len(res.Tracks.Tracks))
	for _, t := range res.Tracks.Tracks {
		songs = append(songs, convertFullTrack(t))
	}
	return songs, nil
}

// Recommend returns tracks seeded by genre with target valence and energy.
func (c *Client) Recommend(ctx context.Context, p params.Params, limit int) ([]recommend.Song, error) {
	api, err := c.api(ctx)
	if err != nil {
		return nil, err
	}

	seeds := spotify.Seeds{Genres: p.Genres}
	attrs := spotify.NewTrackAttributes().
		TargetValence(p.Valence).
		TargetEnergy(p.Energy)

	recs, err := api.GetRecommendations(ctx, seeds, attrs, c.requestOptions(limit)...)
	if err != nil {
		return nil, fmt.Errorf("getting recommendations for %s: %w", p.SeedString(), err)
	}

	songs := make([]recommend.Song, 0, len(recs.Tracks))
	for _, t := range recs.Tracks {
		songs = append(songs, convertSimpleTrack(t))
	}
	return songs, nil
}

// NewReleases returns newly released albums as songs.
func (c *Client) NewReleases(ctx context.Context, limit int) ([]recommend.Song, error) {
	api, err := c.api(ctx)
	if err != nil {
		return nil, err
	}

	page, err := api.NewReleases(ctx, c.requestOptions(limit)...)
	if err != nil {
		return nil, fmt.Errorf("getting new releases: %w", err)
	}

	songs := make([]recommend.Song, 0, len(page.Albums))
	for _, a := range page.Albums {
		songs = append(songs, convertAlbum(a))
	}
	return songs, nil
}

// Play starts playback of s on the user's active device.
func (c *Client) Play(ctx context.Context, s recommend.Song) error {
	if s.URI == "" {
		return fmt.Errorf("song %q has no spotify uri", s.Title)
	}
	api, err := c.api(ctx)
	if err != nil {
		return err
	}
	if err := api.PlayOpt(ctx, &spotify.PlayOptions{URIs: []spotify.URI{spotify.URI(s.URI)}}); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	return nil
}

func clampLimit(n int) int {
	return min(max(n, 1), maxLimit)
}
