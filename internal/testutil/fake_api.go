package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// BasePlaceholder in a FakeResponse body is replaced by the server's api root
const BasePlaceholder = "{{base}}"

// FakeResponse is one canned reply of the fake billing api
type FakeResponse struct {
	Status  int
	Body    string
	Headers map[string]string
}

// RecordedRequest is a request received by the fake billing api
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// FakeAPI is an in-process billing api built on gin. Routes are matched
// on method and path; unmatched requests get a 404 error document.
type FakeAPI struct {
	server *httptest.Server
	apiKey string

	mu       sync.Mutex
	routes   map[string][]FakeResponse
	requests []RecordedRequest
}

// NewFakeAPI starts a fake api that accepts apiKey and stops it when t ends
func NewFakeAPI(t testing.TB, apiKey string) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		apiKey: apiKey,
		routes: make(map[string][]FakeResponse),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(f.record)
	router.Use(gin.BasicAuth(gin.Accounts{apiKey: ""}))
	router.NoRoute(f.serve)

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

// BaseURL returns the api root, ending in /v2/
func (f *FakeAPI) BaseURL() string {
	return f.server.URL + "/v2/"
}

// URL returns the absolute url of a path below the api root
func (f *FakeAPI) URL(path string) string {
	return f.BaseURL() + strings.TrimPrefix(path, "/")
}

// Handle queues responses for method and path (relative to the api root).
// The last queued response repeats once the others are used.
func (f *FakeAPI) Handle(method, path string, resps ...FakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " /v2/" + strings.TrimPrefix(path, "/")
	f.routes[key] = append(f.routes[key], resps...)
}

// Requests returns every request received so far
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastRequest returns the most recent request, or nil
func (f *FakeAPI) LastRequest() *RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	r := f.requests[len(f.requests)-1]
	return &r
}

func (f *FakeAPI) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
		Body:   body,
	})
	f.mu.Unlock()

	c.Next()
}

func (f *FakeAPI) serve(c *gin.Context) {
	resp, ok := f.next(c.Request.Method + " " + c.Request.URL.Path)
	if !ok {
		c.Data(http.StatusNotFound, "application/xml; charset=utf-8",
			[]byte(`<?xml version="1.0" encoding="UTF-8"?><error><symbol>not_found</symbol><description lang="en-US">Couldn't find resource</description></error>`))
		return
	}

	for k, v := range resp.Headers {
		c.Header(k, strings.ReplaceAll(v, BasePlaceholder, f.BaseURL()))
	}

	contentType := "application/xml; charset=utf-8"
	if ct, ok := resp.Headers["Content-Type"]; ok {
		contentType = ct
	}
	c.Data(resp.Status, contentType, []byte(strings.ReplaceAll(resp.Body, BasePlaceholder, f.BaseURL())))
}

func (f *FakeAPI) next(key string) (FakeResponse, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	queue, ok := f.routes[key]
	if !ok || len(queue) == 0 {
		return FakeResponse{}, false
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.routes[key] = queue[1:]
	}
	return resp, true
}
