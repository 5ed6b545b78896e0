package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/flexprice/recurly-client/internal/httpclient"
	"github.com/stretchr/testify/mock"
)

var (
	_ httpclient.Client = (*MockHTTPClient)(nil)
	_ httpclient.Client = (*MockTransport)(nil)
)

// MockHTTPClient serves canned responses by method and url suffix and
// records every request it receives
type MockHTTPClient struct {
	mu       sync.Mutex
	routes   map[string][]MockResponse
	requests []*httpclient.Request
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
	Err        error
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		routes: make(map[string][]MockResponse),
	}
}

// RegisterResponse queues responses for requests whose url ends with
// suffix. The last queued response repeats once the others are used.
func (m *MockHTTPClient) RegisterResponse(method, suffix string, resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := method + " " + suffix
	m.routes[key] = append(m.routes[key], resps...)
}

// RegisterXML is a helper to register an XML response
func (m *MockHTTPClient) RegisterXML(method, suffix string, status int, body string) {
	m.RegisterResponse(method, suffix, MockResponse{
		StatusCode: status,
		Body:       []byte(body),
		Headers: map[string]string{
			"Content-Type": "application/xml; charset=utf-8",
		},
	})
}

// Send implements the httpclient.Client interface. Like the default
// client, statuses of 400 and above come back as *httpclient.Error.
func (m *MockHTTPClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	resp, found := m.next(req)
	if !found {
		return nil, httpclient.NewError(http.StatusNotFound, []byte("<error><symbol>not_found</symbol></error>"))
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.StatusCode >= 400 {
		return nil, httpclient.NewError(resp.StatusCode, resp.Body)
	}

	headers := resp.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return &httpclient.Response{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Headers:    headers,
	}, nil
}

// next pops the response for the longest matching suffix
func (m *MockHTTPClient) next(req *httpclient.Request) (MockResponse, bool) {
	var (
		bestKey string
		bestLen = -1
	)
	for key := range m.routes {
		method, suffix, _ := strings.Cut(key, " ")
		if method != req.Method || !strings.HasSuffix(req.URL, suffix) {
			continue
		}
		if len(suffix) > bestLen {
			bestKey, bestLen = key, len(suffix)
		}
	}
	if bestLen < 0 {
		return MockResponse{}, false
	}

	queue := m.routes[bestKey]
	resp := queue[0]
	if len(queue) > 1 {
		m.routes[bestKey] = queue[1:]
	}
	return resp, true
}

// Requests returns every request sent so far
func (m *MockHTTPClient) Requests() []*httpclient.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*httpclient.Request(nil), m.requests...)
}

// Clear removes all registered responses and recorded requests
func (m *MockHTTPClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string][]MockResponse)
	m.requests = nil
}

// MockTransport is a testify mock of httpclient.Client
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*httpclient.Response)
	return resp, args.Error(1)
}
