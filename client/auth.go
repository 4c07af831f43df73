package client

import (
	"context"
	"fmt"
	"net/http"
)

// LoginRequest authenticates credentials. The tab identifier rides along
// so the server can scope the session it creates.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TabID    string `json:"tabId,omitempty"`
}

// LoginResult is the portal's answer to a successful login. Token is
// empty when the server runs cookie sessions.
type LoginResult struct {
	Role  string `json:"role"`
	Token string `json:"token,omitempty"`
}

func (r *LoginResult) validate() error {
	if r.Role == "" {
		return fmt.Errorf("login response missing role")
	}
	return nil
}

// SessionUser is the signed-in user as reported by check-session.
type SessionUser struct {
	UserID       int    `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	ProfileImage string `json:"profileImage"`
}

// SessionInfo reports whether the current session is live and for whom.
type SessionInfo struct {
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            SessionUser `json:"user"`
}

func (s *SessionInfo) validate() error {
	if s.IsAuthenticated && s.User.UserID == 0 && s.User.Username == "" {
		return fmt.Errorf("authenticated session without a user")
	}
	return nil
}

// RefreshResult acknowledges a silent session renewal.
type RefreshResult struct {
	Success bool `json:"success"`
}

// LogoutResult acknowledges a session invalidation.
type LogoutResult struct {
	Success bool `json:"success"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateSessionRequest syncs profile changes into the server-side
// session, keeping check-session answers current without a re-login.
type UpdateSessionRequest struct {
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
}

// Login authenticates and establishes the session. This is the sign-in
// entry point, so it also establishes the tab identity: the one place in
// a tab's lifetime where the identifier gets generated.
//
// A 401 here means bad credentials and is never masked by the refresh
// path.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	tabID := c.tabs.Ensure()

	var result LoginResult
	err := c.sendJSON(ctx, http.MethodPost, routeLogin, LoginRequest{
		Email:    email,
		Password: password,
		TabID:    tabID,
	}, &result)
	if err != nil {
		return nil, err
	}

	if result.Token != "" {
		if err := c.strategy.SignedIn(result.Token); err != nil {
			return nil, err
		}
	}
	c.log.Info().Str("role", result.Role).Msg("signed in")
	return &result, nil
}

// Logout invalidates the server-side session and clears local session
// evidence. After a successful logout the navigation guard denies entry.
func (c *Client) Logout(ctx context.Context) error {
	var result LogoutResult
	err := c.sendJSON(ctx, http.MethodPost, routeLogout, map[string]string{
		"tabId": c.tabs.Current(),
	}, &result)
	if err != nil {
		return err
	}

	c.invalidate()
	c.log.Info().Msg("signed out")
	return nil
}

// CheckSession asks the server whether the current session is live and
// who it belongs to.
func (c *Client) CheckSession(ctx context.Context) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.getJSON(ctx, routeCheckSession, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RefreshSession renews the session without re-entering credentials.
// Exposed for callers that want to renew proactively; the 401 path calls
// the same underlying refresh.
func (c *Client) RefreshSession(ctx context.Context) error {
	return c.refresh(ctx)
}

// Register creates a new account. The server answers 201 on success.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.sendJSON(ctx, http.MethodPost, routeRegister, req, nil)
}

// UpdateSession pushes profile changes into the server-side session.
func (c *Client) UpdateSession(ctx context.Context, req UpdateSessionRequest) error {
	return c.sendJSON(ctx, http.MethodPost, routeUpdateSession, req, nil)
}
