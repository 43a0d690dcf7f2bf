package apiclient

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zoobzio/clockz"
)

// Defaults forming the request contract every caller relies on.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultAttempts   = 3
	DefaultRetryDelay = time.Second
)

// Config describes one backend the client talks to.
type Config struct {
	BaseURL string
	Token   string

	// Zero values fall back to the package defaults above.
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// Client issues timestamped, retryable JSON requests and unwraps the
// backend's {code, msg, data} envelope. Retries apply only to network,
// timeout and 5xx failures; application errors and 4xx statuses surface
// immediately as *Error.
type Client struct {
	cfg        Config
	httpClient *http.Client
	clock      clockz.Clock
}

type envelope struct {
	Code json.RawMessage `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// New builds a client for baseURL. The underlying transport carries no
// timeout of its own; each request gets a per-attempt deadline instead.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		clock:      clockz.RealClock,
	}
}

// WithClock sets a custom clock for testing.
func (c *Client) WithClock(clock clockz.Clock) *Client {
	c.clock = clock
	return c
}

// Get issues a GET with a cache-busting _ts query parameter.
func (c *Client) Get(ctx context.Context, path string, params map[string]string, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body, out any) error {
	u, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	if method == http.MethodGet {
		q.Set("_ts", strconv.FormatInt(c.clock.Now().UnixMilli(), 10))
	}
	u.RawQuery = q.Encode()

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	requestID := newRequestID()

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.clock.After(c.cfg.RetryDelay):
			}
		}

		retryable, err := c.attempt(ctx, method, u.String(), payload, requestID, out)
		if err == nil {
			return nil
		}
		if !retryable {
			return err
		}
		lastErr = err
		slog.Warn("request attempt failed",
			slog.String("method", method),
			slog.String("url", u.Path),
			slog.String("request_id", requestID),
			slog.Int("attempt", attempt),
			slog.Any("err", err))
	}
	return lastErr
}

// attempt performs one HTTP exchange. The bool result reports whether the
// failure class is retryable (network/timeout/5xx).
func (c *Client) attempt(ctx context.Context, method, rawURL string, payload []byte, requestID string, out any) (bool, error) {
	reqCtx, cancel := c.clock.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, bodyReader)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("request failed: %w", err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return true, fmt.Errorf("read response: %w", readErr)
	}

	switch {
	case resp.StatusCode >= 500:
		return true, &Error{
			Code:       strconv.Itoa(resp.StatusCode),
			Message:    http.StatusText(resp.StatusCode),
			HTTPStatus: resp.StatusCode,
			RequestID:  requestID,
		}
	case resp.StatusCode >= 400:
		return false, &Error{
			Code:       strconv.Itoa(resp.StatusCode),
			Message:    http.StatusText(resp.StatusCode),
			HTTPStatus: resp.StatusCode,
			RequestID:  requestID,
		}
	}

	return false, unwrap(raw, resp.StatusCode, requestID, out)
}

// unwrap extracts the envelope payload, tolerating non-envelope and
// non-JSON bodies defensively.
func unwrap(raw []byte, httpStatus int, requestID string, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Code) == 0 {
		return decodeLoose(raw, out)
	}

	code := normalizeCode(env.Code)
	if !isSuccessCode(code) {
		return &Error{
			Code:       code,
			Message:    env.Msg,
			HTTPStatus: httpStatus,
			RequestID:  requestID,
		}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// decodeLoose handles payloads that arrive without the envelope: JSON is
// decoded directly, anything else is handed over as the raw text body.
func decodeLoose(raw []byte, out any) error {
	if out == nil {
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = string(raw)
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func normalizeCode(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

func isSuccessCode(code string) bool {
	switch code {
	case "0", "200", "success":
		return true
	default:
		return false
	}
}

func newRequestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b[:])
}
