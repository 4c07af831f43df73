// Package guard gates entry to authenticated views.
//
// The check is a fast local gate, not a security boundary: it only asks
// whether sign-in evidence (the tab identifier) exists. The server still
// authorizes every request, and a stale identifier is caught by the
// client's 401 path on the first failing call.
package guard

import (
	"fmt"
	"net/http"

	"github.com/itportal/go-portal-client/tabid"
)

// Guard decides whether authenticated content may be entered.
type Guard struct {
	tabs *tabid.Manager
}

// New creates a guard over the given tab identity manager.
func New(tabs *tabid.Manager) (*Guard, error) {
	if tabs == nil {
		return nil, fmt.Errorf("[guard New] tab identity manager is required")
	}
	return &Guard{tabs: tabs}, nil
}

// CanEnter reports whether sign-in evidence exists. Pure, synchronous,
// no network call.
func (g *Guard) CanEnter() bool {
	return g.tabs.Current() != ""
}

// RequireSession is middleware for UI routes that redirects to the
// sign-in location when no session evidence exists. Protected content is
// never served, not even partially, on denial.
func (g *Guard) RequireSession(signInPath string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !g.CanEnter() {
				http.Redirect(w, r, signInPath, http.StatusSeeOther)
				return
			}
			next(w, r)
		}
	}
}
