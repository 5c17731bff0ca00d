package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// DefaultTokenCachePath is relative to os.UserConfigDir.
const DefaultTokenCachePath = "moodtune/spotify-tokens.json"

// TokenCache keeps app tokens on disk, one per client id, so a restart
// inside the token lifetime skips the token endpoint. Changing SPOTIFY_ID
// never picks up a token issued to another app.
type TokenCache struct {
	path string
	mu   sync.Mutex
}

type cacheFile struct {
	Tokens map[string]*oauth2.Token `json:"tokens"`
}

// DefaultTokenCache returns the cache under the user's config directory.
func DefaultTokenCache() (*TokenCache, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locating token cache: %w", err)
	}
	return NewTokenCache(filepath.Join(dir, filepath.FromSlash(DefaultTokenCachePath))), nil
}

// NewTokenCache returns a cache stored at path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Path returns the cache file location.
func (c *TokenCache) Path() string {
	return c.path
}

// Load returns the unexpired token cached for clientID, or nil.
func (c *TokenCache) Load(clientID string) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := c.read()
	if err != nil {
		return nil, err
	}
	token := f.Tokens[clientID]
	if token == nil || !token.Valid() {
		return nil, nil
	}
	return token, nil
}

// Save records token for clientID. Expired entries for other clients are
// dropped on the way.
func (c *TokenCache) Save(clientID string, token *oauth2.Token) error {
	if clientID == "" || token == nil {
		return errors.New("token cache needs a client id and a token")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := c.read()
	if err != nil {
		// An unreadable file is overwritten.
		f = cacheFile{}
	}
	if f.Tokens == nil {
		f.Tokens = make(map[string]*oauth2.Token)
	}
	for id, t := range f.Tokens {
		if t == nil || !t.Valid() {
			delete(f.Tokens, id)
		}
	}
	f.Tokens[clientID] = token

	return c.write(f)
}

// Delete removes the cache file. A missing file is not an error.
func (c *TokenCache) Delete() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token cache: %w", err)
	}
	return nil
}

func (c *TokenCache) read() (cacheFile, error) {
	var f cacheFile
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("reading token cache: %w", err)
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return cacheFile{}, fmt.Errorf("decoding token cache: %w", err)
	}
	return f, nil
}

// write replaces the cache file through a temp file in the same directory
// so readers never see a partial file.
func (c *TokenCache) write(f cacheFile) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating token cache dir: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token cache: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("creating token cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing token cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing token cache: %w", err)
	}
	return nil
}
