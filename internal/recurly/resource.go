package recurly

import (
	"bytes"
	"context"
	"maps"
	"net/http"
	"net/url"
	"strconv"

	ierr "github.com/flexprice/recurly-client/internal/errors"
	"github.com/flexprice/recurly-client/internal/httpclient"
	"github.com/flexprice/recurly-client/internal/logger"
	"github.com/flexprice/recurly-client/internal/xmlcodec"
)

// Resource holds the hypermedia state shared by every api resource:
// its own href, links to related resources and the actions it allows.
type Resource struct {
	Href    string                     `json:"href,omitempty"`
	Links   map[string]string          `json:"links,omitempty"`
	Actions map[string]xmlcodec.Action `json:"actions,omitempty"`

	client *Client
}

// Link returns the href of a related resource, or ""
func (r *Resource) Link(name string) string {
	return r.Links[name]
}

// HasAction reports whether the server offered the named action
func (r *Resource) HasAction(name string) bool {
	a, ok := r.Actions[name]
	return ok && a.Href != ""
}

func (r *Resource) base() *Resource {
	return r
}

// clone copies the maps so a merge can be applied to the copy
func (r Resource) clone() Resource {
	r.Links = maps.Clone(r.Links)
	r.Actions = maps.Clone(r.Actions)
	return r
}

// inflateLinks copies href, links and actions from a payload.
// Keys absent from the payload keep their previous value.
func (r *Resource) inflateLinks(p *xmlcodec.Payload) {
	if p.Href != "" {
		r.Href = p.Href
	}
	if len(p.Links) > 0 {
		if r.Links == nil {
			r.Links = make(map[string]string, len(p.Links))
		}
		maps.Copy(r.Links, p.Links)
	}
	if len(p.Actions) > 0 {
		if r.Actions == nil {
			r.Actions = make(map[string]xmlcodec.Action, len(p.Actions))
		}
		maps.Copy(r.Actions, p.Actions)
	}
}

// bound fails for resources built outside a Client
func (r *Resource) bound() error {
	if r.client == nil {
		return ierr.NewError("resource is not bound to a client").
			WithHint("Create resources through recurly.Client").
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

func (r *Resource) log() *logger.Logger {
	if r.client == nil {
		return logger.NewNopLogger()
	}
	return r.client.logger
}

func (r *Resource) send(ctx context.Context, method, uri string, body []byte, headers map[string]string) (*httpclient.Response, error) {
	if err := r.bound(); err != nil {
		return nil, err
	}
	return r.client.send(ctx, method, uri, body, headers)
}

func (r *Resource) get(ctx context.Context, uri string, headers map[string]string) (*httpclient.Response, error) {
	return r.send(ctx, http.MethodGet, uri, nil, headers)
}

func (r *Resource) post(ctx context.Context, uri string, body []byte) (*httpclient.Response, error) {
	return r.send(ctx, http.MethodPost, uri, body, nil)
}

func (r *Resource) put(ctx context.Context, uri string, body []byte) (*httpclient.Response, error) {
	return r.send(ctx, http.MethodPut, uri, body, nil)
}

// fetchPayload GETs uri and decodes the single resource document
func (r *Resource) fetchPayload(ctx context.Context, uri string) (*xmlcodec.Payload, error) {
	resp, err := r.get(ctx, uri, nil)
	if err := Classify(err, resp, http.StatusOK); err != nil {
		return nil, err
	}
	return decodeBody(resp.Body)
}

// decodeBody decodes a resource document. An empty body gives an empty payload.
func decodeBody(body []byte) (*xmlcodec.Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return &xmlcodec.Payload{}, nil
	}
	return xmlcodec.Decode(body)
}

// member is a resource that fetchAll can build from a list document
type member interface {
	base() *Resource
	Merge(p *xmlcodec.Payload) error
}

// fetchAll GETs a collection and follows rel="next" links until the last page
func fetchAll[T member](ctx context.Context, c *Client, uri string, params url.Values, newFn func() T) ([]T, error) {
	next, err := withQuery(uri, params, c.pageSize)
	if err != nil {
		return nil, err
	}

	var (
		results []T
		seen    = make(map[string]struct{})
	)
	for next != "" {
		if _, ok := seen[next]; ok {
			break
		}
		seen[next] = struct{}{}

		c.logger.Debugw("fetching page", "uri", next, "fetched", len(results))

		resp, err := c.send(ctx, http.MethodGet, next, nil, nil)
		if err := Classify(err, resp, http.StatusOK); err != nil {
			return nil, err
		}

		if len(bytes.TrimSpace(resp.Body)) > 0 {
			payloads, err := xmlcodec.DecodeList(resp.Body)
			if err != nil {
				return nil, err
			}
			for _, p := range payloads {
				item := newFn()
				if err := item.Merge(p); err != nil {
					return nil, err
				}
				results = append(results, item)
			}
		}

		next = nextPageURI(resp.Header(httpclient.HeaderLink))
	}

	return results, nil
}

// withQuery adds params and per_page to uri without overriding values it already has
func withQuery(uri string, params url.Values, pageSize int) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", ierr.WithError(err).
			WithHintf("Invalid resource uri %q", uri).
			Mark(ierr.ErrInvalidOperation)
	}

	q := u.Query()
	for k, vs := range params {
		if q.Has(k) {
			continue
		}
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if pageSize > 0 && !q.Has("per_page") {
		q.Set("per_page", strconv.Itoa(pageSize))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
