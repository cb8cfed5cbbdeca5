package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	ierr "github.com/finbridge/escalator/internal/errors"
	"github.com/finbridge/escalator/internal/logger"
)

// Request represents an HTTP request
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// Client interface for making HTTP requests
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// DefaultTimeout bounds every outbound call. The orchestration core does
// not retry; retries happen here at the transport level only.
const DefaultTimeout = 20 * time.Second

// DefaultClient implements the Client interface on top of retryablehttp.
type DefaultClient struct {
	client *http.Client
	logger *logger.Logger
}

// NewDefaultClient creates a new DefaultClient
func NewDefaultClient(log *logger.Logger) Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.Logger = nil
	rc.HTTPClient.Timeout = DefaultTimeout

	return &DefaultClient{
		client: rc.StandardClient(),
		logger: log,
	}
}

// Send makes an HTTP request and returns the response
func (c *DefaultClient) Send(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrHTTPClient)
	}

	if req.Body != nil {
		httpReq.ContentLength = int64(len(req.Body))
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Errorw("request failed",
			"method", req.Method,
			"url", req.URL,
			"headers", sanitizeHeaders(req.Headers),
			"error", err)
		return nil, ierr.WithError(err).
			WithHintf("Request to %s failed", req.URL).
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read response body").
			Mark(ierr.ErrHTTPClient)
	}

	headers := make(map[string]string)
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	// Return HTTP error for non-2xx responses
	if resp.StatusCode >= 400 {
		c.logger.Errorw("request failed",
			"method", req.Method,
			"url", req.URL,
			"status", resp.StatusCode,
			"headers", sanitizeHeaders(req.Headers),
			"body", string(respBody))
		return nil, NewError(resp.StatusCode, respBody)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    headers,
	}, nil
}

// sanitizeHeaders lower-cases header names and redacts credentials so
// request failures can be logged without leaking secrets.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	lowered := make(map[string]string, len(headers))
	for k, v := range headers {
		lowered[strings.ToLower(k)] = v
	}
	for _, secret := range []string{"authorization", "apikey", "x-webhook-secret"} {
		if _, ok := lowered[secret]; ok {
			lowered[secret] = "[REDACTED]"
		}
	}
	return lowered
}
