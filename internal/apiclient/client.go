package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketplace-admin/internal/repository"
)

// Options configures a Client.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	RefreshTimeout time.Duration
	Sessions       repository.SessionRepository
	Logger         *logrus.Logger
	// BaseTransport carries both authenticated and plain requests;
	// http.DefaultTransport when nil.
	BaseTransport    http.RoundTripper
	OnSessionExpired func()
}

// Client talks to the marketplace admin API. Resource calls go through the
// refreshing auth Transport; login, refresh and password recovery use a
// plain client so a 401 there never triggers a refresh.
type Client struct {
	baseURL  string
	authed   *http.Client
	plain    *http.Client
	sessions repository.SessionRepository
	logger   *logrus.Logger

	Auth         *AuthService
	Categories   *CategoryService
	Jobs         *JobService
	Locations    *LocationService
	Users        *UserService
	Transactions *TransactionService
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("session repository is required")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	rt := opts.BaseTransport
	if rt == nil {
		rt = http.DefaultTransport
	}

	c := &Client{
		baseURL:  base,
		plain:    &http.Client{Transport: rt, Timeout: opts.Timeout},
		sessions: opts.Sessions,
		logger:   opts.Logger,
	}
	c.Auth = &AuthService{client: c}
	c.authed = &http.Client{
		Transport: &Transport{
			Base:             rt,
			Sessions:         opts.Sessions,
			Refresher:        c.Auth,
			RefreshTimeout:   opts.RefreshTimeout,
			OnSessionExpired: opts.OnSessionExpired,
			Logger:           opts.Logger,
		},
		Timeout: opts.Timeout,
	}
	c.Categories = &CategoryService{client: c}
	c.Jobs = &JobService{client: c}
	c.Locations = &LocationService{client: c}
	c.Users = &UserService{client: c}
	c.Transactions = &TransactionService{client: c}
	return c, nil
}

// payload is an encoded request body.
type payload struct {
	contentType string
	body        []byte
}

func jsonPayload(v any) (*payload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return &payload{contentType: "application/json", body: b}, nil
}

// envelope is the wrapper every backend response uses.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Success *bool           `json:"success,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// send performs one request and returns the raw body of a 2xx response.
// Failures become *APIError carrying the server message or fallback.
func (c *Client) send(ctx context.Context, hc *http.Client, method, path string, query url.Values, in *payload, fallback string) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		body = bytes.NewReader(in.body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", fallback, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", in.contentType)
	}

	started := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", fallback, err)
	}

	c.logger.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"request_id": req.Header.Get("X-Request-ID"),
		"duration":   time.Since(started).Milliseconds(),
	}).Debug("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, raw, fallback)
	}
	return raw, nil
}

// call sends an authenticated request and decodes the envelope data into out.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, in *payload, out any, fallback string) (*envelope, error) {
	raw, err := c.send(ctx, c.authed, method, path, query, in, fallback)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(raw, out, fallback)
}

func decodeEnvelope(raw []byte, out any, fallback string) (*envelope, error) {
	var env envelope
	if len(bytes.TrimSpace(raw)) == 0 {
		return &env, nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", fallback, err)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("%s: decode data: %w", fallback, err)
		}
	}
	return &env, nil
}

func escape(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}

func requireID(id, what string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s id is required", what)
	}
	return nil
}
