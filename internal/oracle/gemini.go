package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Client calls the Gemini generateContent endpoint. Responses are treated as
// untrusted freeform text; normalization and validation happen in the caller.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL, apiKey, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		model:          model,
		http:           &fasthttp.Client{ReadTimeout: 30 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 8},
		defaultTimeout: 30 * time.Second,
		retryMax:       2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model reports the configured model name, used for record labels.
func (c *Client) Model() string { return c.model }

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends one prompt and returns the model's raw text reply.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	var resp generateResponse

	path := "/v1beta/models/" + c.model + ":generateContent"
	if err := c.doJSON(ctx, path, req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("gemini api error: %s (%s)", resp.Error.Message, resp.Error.Status)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini response contained no candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) doJSON(ctx context.Context, path string, in any, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req.SetBody(payload)

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		deadline := c.computeDeadline(ctx)
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			if attempt == attempts {
				return fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			body := string(resp.Body())
			err := fmt.Errorf("gemini api error: status=%d body=%s", status, truncate(body, 512))
			if attempt == attempts || !shouldRetryStatus(status) {
				return err
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
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
	base := 250 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
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
