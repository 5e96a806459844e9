// Package api is the HTTP client for the interviewd backend: session
// lifecycle, per-answer analysis, the question bank, and session lookup.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prepworks/interviewd/pkg/core"
)

const defaultBaseURL = "http://localhost:8720"

// Client talks to the interviewd gateway.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer key sent on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the gateway at baseURL. An empty baseURL
// falls back to the local default.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newDefaultHTTPClient(),
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newDefaultHTTPClient configures transport-level timeouts while leaving the
// overall request lifetime to per-request context deadlines.
func newDefaultHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
	return &http.Client{Transport: transport}
}

// StartInterview creates a session and returns its question plan and
// assistant configuration.
func (c *Client) StartInterview(ctx context.Context, req *StartInterviewRequest) (*StartInterviewResponse, error) {
	var out StartInterviewResponse
	if err := c.do(ctx, http.MethodPost, "/api/interview/start", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeResponse scores one finalized answer.
func (c *Client) AnalyzeResponse(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	var out AnalyzeResponse
	if err := c.do(ctx, http.MethodPost, "/api/interview/analyze", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EndInterview closes a session and returns the aggregated feedback.
func (c *Client) EndInterview(ctx context.Context, sessionID string) (*EndInterviewResponse, error) {
	var out EndInterviewResponse
	in := struct {
		SessionID string `json:"sessionId"`
	}{SessionID: sessionID}
	if err := c.do(ctx, http.MethodPost, "/api/interview/end", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Questions fetches the question bank for an interview type.
func (c *Client) Questions(ctx context.Context, interviewType, difficulty, company string) ([]Question, error) {
	q := url.Values{}
	if difficulty != "" {
		q.Set("difficulty", difficulty)
	}
	if company != "" {
		q.Set("company", company)
	}
	path := "/api/questions/" + url.PathEscape(interviewType)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out struct {
		Questions []Question `json:"questions"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// Session fetches a session summary by ID.
func (c *Client) Session(ctx context.Context, sessionID string) (*SessionSummary, error) {
	var out SessionSummary
	if err := c.do(ctx, http.MethodGet, "/api/session/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseError decodes the gateway's error envelope. Unparseable bodies fall
// back to a generic api_error carrying the raw text.
func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var envelope struct {
		Error *core.Error `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Type != "" {
		return envelope.Error
	}
	return &core.Error{
		Type:    core.ErrAPI,
		Message: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
	}
}
