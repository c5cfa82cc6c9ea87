// Package auth provides the bearer credentials used to call cloud upstreams.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var ErrAuth = errors.New("auth: failed to acquire credential")

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

type Provider interface {
	Token(ctx context.Context) (string, error)
}

// NewGoogle creates a cached provider from base64 encoded service account JSON.
func NewGoogle(ctx context.Context, credentialsBase64 string) (*Cache, error) {
	if credentialsBase64 == "" {
		return nil, fmt.Errorf("%w: google credentials not provided", ErrAuth)
	}
	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode credentials: %w", ErrAuth, err)
	}
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse credentials: %w", ErrAuth, err)
	}
	return New(creds.TokenSource), nil
}

func New(source oauth2.TokenSource) *Cache {
	return &Cache{
		source: source,
		Skew:   time.Minute,
		Now:    time.Now,
	}
}

// Cache holds the most recent token from source until it is within Skew of
// expiry.
type Cache struct {
	source oauth2.TokenSource
	Skew   time.Duration
	Now    func() time.Time

	m     sync.Mutex
	token *oauth2.Token
}

func (c *Cache) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuth, err)
	}
	c.m.Lock()
	defer c.m.Unlock()
	if c.valid() {
		return c.token.AccessToken, nil
	}
	token, err := c.source.Token()
	if err != nil {
		c.token = nil
		return "", fmt.Errorf("%w: %w", ErrAuth, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuth)
	}
	c.token = token
	return token.AccessToken, nil
}

func (c *Cache) valid() bool {
	if c.token == nil || c.token.AccessToken == "" {
		return false
	}
	if c.token.Expiry.IsZero() {
		return true
	}
	return c.Now().Add(c.Skew).Before(c.token.Expiry)
}

// Static returns the same token on every call, e.g. an API key.
type Static string

func (s Static) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: no token configured", ErrAuth)
	}
	return string(s), nil
}
