package session

import (
	"net/http"

	"github.com/itportal/go-portal-client/tabid"
)

// CookieTabStrategy scopes the session with a client-generated tab
// identifier while the actual credential is a server-set cookie riding in
// the HTTP client's jar. This is the recommended default: nothing
// long-lived is held in client-readable storage.
type CookieTabStrategy struct {
	tabs *tabid.Manager
}

// NewCookieTabStrategy creates the cookie+tab-identifier strategy.
func NewCookieTabStrategy(tabs *tabid.Manager) (*CookieTabStrategy, error) {
	if tabs == nil {
		return nil, errTabManagerRequired("NewCookieTabStrategy")
	}
	return &CookieTabStrategy{tabs: tabs}, nil
}

// Attach adds the tab identifier header when one exists. The session
// cookie itself travels via the HTTP client's cookie jar.
func (s *CookieTabStrategy) Attach(req *http.Request) {
	if id := s.tabs.Current(); id != "" {
		req.Header.Set(TabIDHeader, id)
	}
}

// SignedIn is a no-op: the server set the cookie on the login response
// and the jar already holds it.
func (s *CookieTabStrategy) SignedIn(string) error {
	return nil
}

// Invalidate drops the tab identifier. The cookie may linger in the jar
// but is useless without a matching server-side session.
func (s *CookieTabStrategy) Invalidate() error {
	s.tabs.Clear()
	return nil
}
