package uiautomator2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/logger"
)

// Transport defaults.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultRetryMax = 3
)

// Client communicates with UIAutomator2 server.
type Client struct {
	http       *retryablehttp.Client
	baseURL    string
	sessionID  string
	socketPath string
}

// NewClient creates a client using Unix socket (Linux/Mac).
func NewClient(socketPath string) *Client {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
	}

	return &Client{
		http:       newRetryClient(transport),
		baseURL:    "http://localhost",
		socketPath: socketPath,
	}
}

// NewClientTCP creates a client using TCP port (Windows, adb forward).
func NewClientTCP(port int) *Client {
	return NewClientURL(fmt.Sprintf("http://127.0.0.1:%d", port))
}

// NewClientURL creates a client for a server reachable at baseURL.
func NewClientURL(baseURL string) *Client {
	return &Client{
		http:    newRetryClient(nil),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func newRetryClient(transport http.RoundTripper) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.Logger = leveledLogger{}
	rc.RetryMax = DefaultRetryMax
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.CheckRetry = checkRetry
	rc.HTTPClient.Timeout = DefaultTimeout
	if transport != nil {
		rc.HTTPClient.Transport = transport
	}
	return rc
}

type noRetryKey struct{}

// checkRetry retries connection failures of idempotent requests only. Any HTTP
// response, even an error status, is final: the server has already acted on it.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil || ctx.Value(noRetryKey{}) != nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// leveledLogger routes transport retries to the package logger.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, kv ...interface{}) { logger.Error("uia2: %s %v", msg, kv) }
func (leveledLogger) Warn(msg string, kv ...interface{})  { logger.Warn("uia2: %s %v", msg, kv) }
func (leveledLogger) Info(msg string, kv ...interface{})  { logger.Debug("uia2: %s %v", msg, kv) }
func (leveledLogger) Debug(msg string, kv ...interface{}) {}

// SetRetryMax sets how many times a failed connection is retried. 0 disables retries.
func (c *Client) SetRetryMax(n int) {
	c.http.RetryMax = n
}

// SessionID returns the current session ID.
func (c *Client) SessionID() string {
	return c.sessionID
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request makes an HTTP request to UIAutomator2. Only GET and DELETE are retried.
func (c *Client) request(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	start := time.Now()

	var (
		reqBody interface{}
		bodyStr string
	)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = data
		bodyStr = string(data)
		if len(bodyStr) > 100 {
			bodyStr = bodyStr[:100] + "..."
		}
	}

	if method != http.MethodGet && method != http.MethodDelete {
		ctx = context.WithValue(ctx, noRetryKey{}, true)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		logger.Debug("%s %s [%v] ERROR: %v", method, path, elapsed, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, core.ErrServerUnreachable.WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	status := "OK"
	if resp.StatusCode >= 400 {
		status = fmt.Sprintf("ERR:%d", resp.StatusCode)
	}
	logger.Debug("%s %s [%v] %s body=%s", method, path, elapsed, status, bodyStr)

	if resp.StatusCode >= 400 {
		return nil, parseError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// parseError turns a W3C error body into an error.
func parseError(code int, body []byte) error {
	value := gjson.GetBytes(body, "value")
	if value.IsObject() {
		errType := value.Get("error").String()
		errMsg := value.Get("message").String()
		if errType != "" || errMsg != "" {
			if errType == "no such element" {
				return core.ErrElementNotFound.WithMessage(errMsg)
			}
			return fmt.Errorf("%s: %s", errType, errMsg)
		}
	}
	return fmt.Errorf("server error %d: %s", code, string(body))
}

// sessionPath returns path with session ID prefix.
func (c *Client) sessionPath(path string) string {
	return fmt.Sprintf("/session/%s%s", c.sessionID, path)
}

func (c *Client) requireSession() error {
	if c.sessionID == "" {
		return fmt.Errorf("no active session")
	}
	return nil
}

// Status checks if the server is ready.
func (c *Client) Status(ctx context.Context) (bool, error) {
	data, err := c.request(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return false, err
	}
	ready := gjson.GetBytes(data, "value.ready")
	if !ready.Exists() {
		return false, fmt.Errorf("parse status response: %s", string(data))
	}
	return ready.Bool(), nil
}

// CreateSession starts a new automation session.
func (c *Client) CreateSession(ctx context.Context, caps Capabilities) error {
	data, err := c.request(ctx, http.MethodPost, "/session", SessionRequest{Capabilities: caps})
	if err != nil {
		return err
	}

	// Top-level sessionId, or the W3C value.sessionId
	id := gjson.GetBytes(data, "sessionId").String()
	if id == "" {
		id = gjson.GetBytes(data, "value.sessionId").String()
	}
	if id == "" {
		return fmt.Errorf("no session ID in response")
	}

	c.sessionID = id
	return nil
}

// DeleteSession ends the current session.
func (c *Client) DeleteSession(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}

	_, err := c.request(ctx, http.MethodDelete, c.sessionPath(""), nil)
	c.sessionID = ""
	return err
}

// Close ends the session and cleans up.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.DeleteSession(ctx)
}
