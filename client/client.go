// Package client is the Go consumer of the Meal Maker API. It renders
// server values as-is, falls back to zeroed defaults on read failures and
// surfaces server error messages verbatim on writes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ReadTimeout   = 10 * time.Second
	WriteTimeout  = 15 * time.Second
	UploadTimeout = 30 * time.Second

	DefaultWeeklyGoalKg = 2.0
)

// ErrTimeout is returned when a call exceeds its per-call timeout.
var ErrTimeout = errors.New("request timed out")

// APIError is a non-2xx response. Message holds the server's detail (or
// message) text unchanged.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// DecodeError is a 2xx response whose body does not match the expected
// shape. Reads never fall back on it.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Timeouts bound each class of call.
type Timeouts struct {
	Read   time.Duration
	Write  time.Duration
	Upload time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	timeouts   Timeouts
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBearerToken sets the Authorization header sent on every call.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeouts(t Timeouts) Option {
	return func(c *Client) { c.timeouts = t }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a client for baseURL, e.g. "http://localhost:8000/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		timeouts:   Timeouts{Read: ReadTimeout, Write: WriteTimeout, Upload: UploadTimeout},
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	method      string
	path        string
	timeout     time.Duration
	body        io.Reader
	contentType string
}

func (c *Client) jsonRequest(method, path string, timeout time.Duration, payload interface{}) (request, error) {
	req := request{method: method, path: path, timeout: timeout}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("encoding %s body: %w", path, err)
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return req, nil
}

// do performs r and decodes a 2xx body into out. The caller's
// cancellation is returned unchanged; the per-call deadline becomes
// ErrTimeout.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, callCtx, r, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportError(ctx, callCtx, r, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Path: r.path, Err: err}
	}
	return nil
}

func (c *Client) transportError(ctx, callCtx context.Context, r request, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s %s after %s: %w", r.method, r.path, r.timeout, ErrTimeout)
	}
	return fmt.Errorf("%s %s: %w", r.method, r.path, err)
}

func decodeAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Detail
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// fallback decides whether a failed read may be replaced by defaults.
// Cancellation and malformed success bodies never are.
func (c *Client) fallback(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return err
	}
	c.logger.Warn("Request failed, using defaults", zap.String("op", op), zap.Error(err))
	return nil
}

// weekStart is the UTC Monday of the current ISO week.
func (c *Client) weekStart() string {
	now := c.now().UTC()
	offset := (int(now.Weekday()) + 6) % 7
	return now.AddDate(0, 0, -offset).Format("2006-01-02")
}
