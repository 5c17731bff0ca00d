// Package auth creates Spotify API sessions with the client-credentials flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrMissingCredentials is returned when the client id or secret is empty or
// still a placeholder.
var ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET")

// Credentials identify the application to Spotify.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Validate reports ErrMissingCredentials for empty or placeholder values.
func (c Credentials) Validate() error {
	if isPlaceholder(c.ClientID) || isPlaceholder(c.ClientSecret) {
		return ErrMissingCredentials
	}
	return nil
}

func isPlaceholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" ||
		strings.HasPrefix(v, "your_") ||
		strings.HasPrefix(v, "your-") ||
		strings.HasPrefix(v, "<") ||
		v == "changeme"
}

type options struct {
	tokenURL   string
	apiBaseURL string
	httpClient *http.Client
	cache      *TokenCache
	logger     *zap.Logger
}

// Option configures session creation.
type Option func(*options)

// WithTokenURL overrides the Spotify token endpoint.
func WithTokenURL(u string) Option {
	return func(o *options) { o.tokenURL = u }
}

// WithAPIBaseURL overrides the Spotify Web API base URL.
func WithAPIBaseURL(u string) Option {
	return func(o *options) { o.apiBaseURL = u }
}

// WithHTTPClient sets the client used for token and API requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTokenCache reuses unexpired tokens across restarts.
func WithTokenCache(c *TokenCache) Option {
	return func(o *options) { o.cache = c }
}

// WithLogger sets the logger for cache warnings.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		tokenURL: spotifyauth.TokenURL,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Session is an authenticated API client bound to one token. It is never
// mutated; re-authenticating produces a new Session.
type Session struct {
	token  oauth2.Token
	client *spotify.Client
}

// NewSession fetches an app token and builds a client around it. A valid
// cached token is reused when a cache is configured.
func NewSession(ctx context.Context, creds Credentials, opts ...Option) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	if o.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	}

	var token *oauth2.Token
	if o.cache != nil {
		cached, err := o.cache.Load(creds.ClientID)
		if err != nil {
			o.logger.Warn("ignoring unreadable token cache", zap.String("path", o.cache.Path()), zap.Error(err))
		}
		token = cached
	}

	if token == nil {
		cfg := clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     o.tokenURL,
		}
		fresh, err := cfg.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("requesting spotify token: %w", err)
		}
		token = fresh

		if o.cache != nil {
			if err := o.cache.Save(creds.ClientID, token); err != nil {
				o.logger.Warn("failed to cache token", zap.Error(err))
			}
		}
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	clientOpts := []spotify.ClientOption{spotify.WithRetry(true)}
	if o.apiBaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(strings.TrimSuffix(o.apiBaseURL, "/")+"/"))
	}

	return &Session{
		token:  *token,
		client: spotify.New(httpClient, clientOpts...),
	}, nil
}

// Client returns the session's API client.
func (s *Session) Client() *spotify.Client {
	return s.client
}

// AccessToken returns the bearer token the session was built with.
func (s *Session) AccessToken() string {
	return s.token.AccessToken
}

// Valid reports whether the session's token has not expired.
func (s *Session) Valid() bool {
	return s.token.Valid()
}

// Manager hands out the current Session and swaps in a new one once the
// token expires.
type Manager struct {
	creds Credentials
	opts  []Option

	mu      sync.Mutex
	current *Session
}

// NewManager validates creds and returns a Manager. No token is requested
// until the first call to Session.
func NewManager(creds Credentials, opts ...Option) (*Manager, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return &Manager{creds: creds, opts: opts}, nil
}

// Session returns a valid session, creating a new one if needed.
func (m *Manager) Session(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.Valid() {
		return m.current, nil
	}

	s, err := NewSession(ctx, m.creds, m.opts...)
	if err != nil {
		return nil, err
	}
	m.current = s
	return s, nil
}

// Client returns the current session's API client.
func (m *Manager) Client(ctx context.Context) (*spotify.Client, error) {
	s, err := m.Session(ctx)
	if err != nil {
		return nil, err
	}
	return s.Client(), nil
}
