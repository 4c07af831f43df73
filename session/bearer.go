package session

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/itportal/go-portal-client/internal/errors"
	"github.com/itportal/go-portal-client/storage"
	"github.com/itportal/go-portal-client/tabid"
	"golang.org/x/oauth2"
)

// BearerStrategy carries the session as an opaque signed token in the
// Authorization header. The token outlives a tab: it is kept in durable
// per-origin storage under the well-known "token" key.
//
// Presence of a token never guarantees server-side validity; an expired
// or revoked token is still attached and the 401 path sorts it out.
type BearerStrategy struct {
	mu     sync.RWMutex
	store  storage.Store
	tabs   *tabid.Manager
	cached *oauth2.Token
}

// NewBearerStrategy creates the bearer-token strategy backed by a durable
// store.
func NewBearerStrategy(store storage.Store, tabs *tabid.Manager) (*BearerStrategy, error) {
	if store == nil {
		return nil, fmt.Errorf("[NewBearerStrategy] store is required")
	}
	if tabs == nil {
		return nil, errTabManagerRequired("NewBearerStrategy")
	}
	return &BearerStrategy{store: store, tabs: tabs}, nil
}

// Attach sets the Authorization header from the stored token, plus the
// tab identifier header when one exists.
func (s *BearerStrategy) Attach(req *http.Request) {
	if id := s.tabs.Current(); id != "" {
		req.Header.Set(TabIDHeader, id)
	}
	if tok := s.token(); tok != nil {
		tok.SetAuthHeader(req)
	}
}

// SignedIn persists the freshly issued token.
func (s *BearerStrategy) SignedIn(raw string) error {
	if raw == "" {
		return errors.ErrInvalidToken
	}
	if err := s.store.Set(storage.KeyToken, raw); err != nil {
		return errors.Wrapf(err, "[BearerStrategy SignedIn] storing token")
	}

	s.mu.Lock()
	s.cached = buildToken(raw)
	s.mu.Unlock()
	return nil
}

// Invalidate removes the stored token.
func (s *BearerStrategy) Invalidate() error {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	if err := s.store.Delete(storage.KeyToken); err != nil {
		return errors.Wrapf(err, "[BearerStrategy Invalidate] deleting token")
	}
	return nil
}

// ExpiresAt reports the expiry claim of the held token. Zero when no
// token is held or the token carries no expiry.
func (s *BearerStrategy) ExpiresAt() time.Time {
	if tok := s.token(); tok != nil {
		return tok.Expiry
	}
	return time.Time{}
}

func (s *BearerStrategy) token() *oauth2.Token {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached
	}

	raw, err := s.store.Get(storage.KeyToken)
	if err != nil || raw == "" {
		return nil
	}

	tok := buildToken(raw)
	s.mu.Lock()
	s.cached = tok
	s.mu.Unlock()
	return tok
}

// buildToken wraps a raw token, extracting the expiry claim when the
// token is a parseable JWT. The parse is unverified: the client holds no
// signing key, and expiry here is advisory only.
func buildToken(raw string) *oauth2.Token {
	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}

	unverified, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return tok
	}
	exp, err := unverified.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return tok
	}
	tok.Expiry = exp.Time
	return tok
}

func errTabManagerRequired(where string) error {
	return fmt.Errorf("[%s] tab identity manager is required", where)
}
