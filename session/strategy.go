// Package session holds the credential strategies the portal client can
// run with. The portal's history grew two incompatible mechanisms — a
// server-set cookie scoped by a tab identifier, and a bearer token in a
// header. Exactly one strategy is active per client; everything above the
// HTTP layer is unaware which.
package session

import "net/http"

// TabIDHeader carries the tab identifier on outbound requests.
const TabIDHeader = "x-tab-id"

// Strategy attaches session credentials to outbound requests and reacts
// to sign-in and invalidation events.
type Strategy interface {
	// Attach decorates an outbound request with whatever credentials the
	// strategy currently holds. Pure and synchronous; missing credentials
	// leave the request unauthenticated rather than failing.
	Attach(req *http.Request)

	// SignedIn records credentials from a successful login. The raw
	// token is empty under the cookie strategy.
	SignedIn(token string) error

	// Invalidate discards locally held credentials. Called after logout
	// and after a failed silent refresh.
	Invalidate() error
}
