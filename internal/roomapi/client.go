// Package roomapi talks to the REST side of the game server.
package roomapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/park285/rcboard/pkg/boarddto"
	"github.com/valyala/fasthttp"
)

var ErrNotStarted = boarddto.DomainError{Code: "not_started", Message: "room has not started"}

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// NewClient takes the API prefix, e.g. config.Endpoint.APIBaseURL().
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Room is the server's hash of room fields.
type Room map[string]string

type typedReply struct {
	Type string `json:"type"`
}

// GetRoom fetches a room. A room that exists but has no game yet yields
// ErrNotStarted.
func (c *Client) GetRoom(ctx context.Context, id string) (Room, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("room id is required")
	}
	status, body, err := c.get(ctx, "/rooms/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var tagged typedReply
	if json.Unmarshal(body, &tagged) == nil && tagged.Type == "not_started" {
		return nil, ErrNotStarted
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("room api error: status=%d body=%s", status, truncate(string(body), 512))
	}
	var room Room
	if err := json.Unmarshal(body, &room); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	return room, nil
}

// get retries transport failures and 5xx replies; other statuses are
// returned to the caller together with the body.
func (c *Client) get(ctx context.Context, path string) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set("Accept", "application/json")
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		switch {
		case err != nil:
			lastErr = fmt.Errorf("request failed: %w", err)
		case shouldRetryStatus(resp.StatusCode()):
			lastErr = fmt.Errorf("room api error: status=%d body=%s", resp.StatusCode(), truncate(string(resp.Body()), 512))
		default:
			body := append([]byte(nil), resp.Body()...)
			return resp.StatusCode(), body, nil
		}
		if attempt == attempts {
			break
		}
		if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return 0, nil, lastErr
		}
	}
	return 0, nil, lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
