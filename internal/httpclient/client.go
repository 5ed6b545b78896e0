package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/flexprice/recurly-client/internal/config"
	ierr "github.com/flexprice/recurly-client/internal/errors"
	"github.com/flexprice/recurly-client/internal/logger"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"
)

const (
	HeaderAccept      = "Accept"
	HeaderContentType = "Content-Type"
	HeaderAPIVersion  = "X-Api-Version"
	HeaderRequestID   = "X-Request-Id"
	HeaderLink        = "Link"

	ContentTypeXML = "application/xml; charset=utf-8"
	ContentTypePDF = "application/pdf"

	userAgent = "recurly-client-go"
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

// Header returns the named response header, matched case-insensitively
func (r *Response) Header(name string) string {
	if r == nil {
		return ""
	}
	if v, ok := r.Headers[http.CanonicalHeaderKey(name)]; ok {
		return v
	}
	return r.Headers[name]
}

// Client interface for making HTTP requests
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// DefaultClient signs every request with the account api key and sends it
// through go-retryablehttp. Only GET and HEAD are retried.
type DefaultClient struct {
	retrying   *retryablehttp.Client
	single     *retryablehttp.Client
	limiter    *rate.Limiter
	apiKey     string
	apiVersion string
	logger     *logger.Logger
}

// NewDefaultClient creates a new DefaultClient
func NewDefaultClient(cfg *config.Configuration, log *logger.Logger) Client {
	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}

	retrying := retryablehttp.NewClient()
	retrying.HTTPClient = httpClient
	retrying.RetryMax = cfg.HTTP.RetryMax
	if cfg.HTTP.RetryWaitMin > 0 {
		retrying.RetryWaitMin = cfg.HTTP.RetryWaitMin
	}
	if cfg.HTTP.RetryWaitMax > 0 {
		retrying.RetryWaitMax = cfg.HTTP.RetryWaitMax
	}
	retrying.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retrying.Logger = log.GetRetryableLogger()

	single := retryablehttp.NewClient()
	single.HTTPClient = httpClient
	single.RetryMax = 0
	single.ErrorHandler = retryablehttp.PassthroughErrorHandler
	single.Logger = log.GetRetryableLogger()

	var limiter *rate.Limiter
	if cfg.HTTP.RateLimit > 0 {
		burst := cfg.HTTP.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.HTTP.RateLimit), burst)
	}

	return &DefaultClient{
		retrying:   retrying,
		single:     single,
		limiter:    limiter,
		apiKey:     cfg.Recurly.APIKey,
		apiVersion: cfg.Recurly.APIVersion,
		logger:     log,
	}
}

// Send makes an HTTP request and returns the response.
// Statuses of 400 and above come back as *Error carrying the body.
func (c *DefaultClient) Send(ctx context.Context, req *Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Request was cancelled while waiting for the rate limiter").
				Mark(ierr.ErrHTTPClient)
		}
	}

	var body interface{}
	if req.Body != nil {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Please check the request url").
			Mark(ierr.ErrHTTPClient)
	}

	requestID := ulid.Make().String()
	httpReq.Header.Set(HeaderAccept, "application/xml")
	httpReq.Header.Set(HeaderAPIVersion, c.apiVersion)
	httpReq.Header.Set(HeaderRequestID, requestID)
	httpReq.Header.Set("User-Agent", userAgent)
	if req.Body != nil {
		httpReq.Header.Set(HeaderContentType, ContentTypeXML)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.SetBasicAuth(c.apiKey, "")

	start := time.Now()
	resp, err := c.clientFor(req.Method).Do(httpReq)
	if err != nil {
		c.logger.Debugw("request failed",
			"request_id", requestID,
			"method", req.Method,
			"url", req.URL,
			"error", err)
		return nil, ierr.WithError(err).
			WithHint("Could not reach the billing api").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not read the response body").
			Mark(ierr.ErrHTTPClient)
	}

	c.logger.Debugw("request completed",
		"request_id", requestID,
		"method", req.Method,
		"url", req.URL,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	headers := make(map[string]string)
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	if resp.StatusCode >= 400 {
		return nil, NewError(resp.StatusCode, respBody)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    headers,
	}, nil
}

func (c *DefaultClient) clientFor(method string) *retryablehttp.Client {
	switch method {
	case http.MethodGet, http.MethodHead:
		return c.retrying
	default:
		return c.single
	}
}
