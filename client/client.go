// Package client is the single point of egress for all portal API calls.
//
// It attaches session credentials through a pluggable strategy, decodes
// every response against an explicit schema, and implements the portal's
// one non-trivial contract: on a 401 it performs exactly one silent
// session refresh and replays the failing request once. A second 401
// surfaces as-is; a failed refresh clears the local tab identity and
// surfaces the original 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/itportal/go-portal-client/internal/config"
	"github.com/itportal/go-portal-client/internal/errors"
	"github.com/itportal/go-portal-client/session"
	"github.com/itportal/go-portal-client/tabid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Client talks to the portal API. Construct one at application start and
// inject it where needed; it is safe for concurrent use.
type Client struct {
	httpclient    *http.Client
	api           string
	strategy      session.Strategy
	tabs          *tabid.Manager
	timeout       time.Duration
	uploadTimeout time.Duration
	log           zerolog.Logger
	refreshes     singleflight.Group
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client (primarily for
// testing or custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpclient = hc
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithTimeout overrides the per-request timeout for JSON calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUploadTimeout overrides the timeout for multipart uploads.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.uploadTimeout = d
	}
}

// New creates a portal client from config, a tab identity manager and a
// session strategy.
func New(cfg config.Config, tabs *tabid.Manager, strategy session.Strategy, options ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[client New] config is required")
	}
	if tabs == nil {
		return nil, fmt.Errorf("[client New] tab identity manager is required")
	}
	if strategy == nil {
		return nil, fmt.Errorf("[client New] session strategy is required")
	}

	c := &Client{
		api:           strings.TrimSuffix(cfg.GetAPIBaseURL(), "/"),
		strategy:      strategy,
		tabs:          tabs,
		timeout:       cfg.GetRequestTimeout(),
		uploadTimeout: cfg.GetUploadTimeout(),
		log:           zerolog.Nop(),
	}

	for _, opt := range options {
		opt(c)
	}

	if c.httpclient == nil {
		c.httpclient = new(http.Client)
	}
	// Cookies must travel with every request: the cookie+tab strategy
	// keeps its whole credential in the jar.
	if c.httpclient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrapf(err, "[client New] creating cookie jar")
		}
		c.httpclient.Jar = jar
	}

	return c, nil
}

// TabIdentity exposes the tab identity manager for guards and callers
// that need the sign-in entry-point behavior.
func (c *Client) TabIdentity() *tabid.Manager {
	return c.tabs
}

// call describes one API request in replayable form: the body is held as
// bytes so the refresh path can reissue it unchanged.
type call struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	timeout     time.Duration
}

// response is a fully drained HTTP response.
type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// validatable lets endpoint schemas verify required fields after decode.
type validatable interface {
	validate() error
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, call{method: http.MethodGet, path: path, query: query}, out)
}

// sendJSON issues a request with a JSON body and decodes the response
// into out (which may be nil when the caller only cares about success).
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "[client sendJSON] encoding request for %s", path)
		}
		body = b
	}
	return c.do(ctx, call{
		method:      method,
		path:        path,
		body:        body,
		contentType: "application/json",
	}, out)
}

// do runs a call through the retry contract: at most one refresh and one
// replay per request, never for the login endpoint.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	resp, err := c.send(ctx, cl, false)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && cl.path != routeLogin {
		if refreshErr := c.refresh(ctx); refreshErr != nil {
			// The refresh outcome is deliberately folded into the
			// original 401 so callers keep a single auth-failure path.
			c.invalidate()
			return httpErrorFrom(resp)
		}
		replayed, err := c.send(ctx, cl, true)
		if err != nil {
			return err
		}
		resp = replayed
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return httpErrorFrom(resp)
	}
	return decode(cl.path, resp, out)
}

// send performs one network attempt and drains the body.
func (c *Client) send(ctx context.Context, cl call, replay bool) (*response, error) {
	timeout := cl.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.apipath(cl.path)
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var reader io.Reader
	if cl.body != nil {
		reader = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "[client send] building %s %s", cl.method, cl.path)
	}

	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	c.strategy.Attach(req)

	c.log.Debug().
		Str("method", cl.method).
		Str("path", cl.path).
		Str("request_id", requestID).
		Bool("replay", replay).
		Msg("portal request")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}

	return &response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// refresh performs the silent session renewal. Concurrent 401 handlers
// collapse onto a single in-flight refresh call.
func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshes.Do("refresh-session", func() (any, error) {
		// The refresh outlives the triggering request's cancellation so
		// every coalesced waiter gets a consistent answer.
		resp, err := c.send(context.WithoutCancel(ctx), call{
			method: http.MethodGet,
			path:   routeRefreshSession,
		}, false)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, errors.ErrSessionExpired
		}

		var result RefreshResult
		if err := decode(routeRefreshSession, resp, &result); err != nil {
			return nil, err
		}
		if !result.Success {
			return nil, errors.ErrSessionExpired
		}
		c.log.Debug().Msg("session refreshed")
		return nil, nil
	})
	return err
}

// invalidate clears all local session evidence after an unrecoverable
// auth failure.
func (c *Client) invalidate() {
	if err := c.strategy.Invalidate(); err != nil {
		c.log.Warn().Err(err).Msg("failed to invalidate session credentials")
	}
	c.tabs.Clear()
}

// apipath builds a full URL from the base URL and a route path.
func (c *Client) apipath(path string) string {
	return c.api + "/" + strings.TrimPrefix(path, "/")
}

// decode unmarshals a drained response into out and runs schema
// validation when the target supports it.
func decode(endpoint string, resp *response, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	if v, ok := out.(validatable); ok {
		if err := v.validate(); err != nil {
			return &DecodeError{Endpoint: endpoint, Err: err}
		}
	}
	return nil
}
