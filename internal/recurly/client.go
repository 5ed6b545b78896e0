package recurly

import (
	"context"
	"net/url"
	"time"

	"github.com/flexprice/recurly-client/internal/cache"
	"github.com/flexprice/recurly-client/internal/config"
	"github.com/flexprice/recurly-client/internal/httpclient"
	"github.com/flexprice/recurly-client/internal/logger"
)

// Client is the parent of every resource. It owns the transport, the
// base endpoint and the PDF cache, and builds resources bound to itself.
type Client struct {
	transport httpclient.Client
	cache     cache.Cache
	logger    *logger.Logger
	baseURL   string
	pageSize  int
	pdfTTL    time.Duration
}

// NewClient creates a client. c may be nil to disable PDF caching.
func NewClient(cfg *config.Configuration, transport httpclient.Client, c cache.Cache, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		transport: transport,
		cache:     c,
		logger:    log,
		baseURL:   cfg.Recurly.BaseEndpoint(),
		pageSize:  cfg.Recurly.PageSize,
		pdfTTL:    cfg.Cache.PDFTTL,
	}
}

// BaseURL returns the api root, always ending in "/"
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Endpoint returns the collection endpoint for a plural resource name
func (c *Client) Endpoint(plural string) string {
	return c.baseURL + plural
}

// NewInvoice returns an empty invoice bound to c
func (c *Client) NewInvoice() *Invoice {
	return &Invoice{Resource: Resource{client: c}}
}

// NewAccount returns an empty account bound to c
func (c *Client) NewAccount() *Account {
	return &Account{Resource: Resource{client: c}}
}

// NewSubscription returns an empty subscription bound to c
func (c *Client) NewSubscription() *Subscription {
	return &Subscription{Resource: Resource{client: c}}
}

// GetInvoice fetches one invoice by number
func (c *Client) GetInvoice(ctx context.Context, number string) (*Invoice, error) {
	inv := c.NewInvoice()
	inv.InvoiceNumber = number
	if err := inv.Fetch(ctx); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListInvoices fetches every invoice, optionally only those in state
func (c *Client) ListInvoices(ctx context.Context, state InvoiceState) ([]*Invoice, error) {
	params := url.Values{}
	if state != "" {
		params.Set("state", string(state))
	}
	return fetchAll(ctx, c, c.Endpoint(InvoicePlural), params, c.NewInvoice)
}

// GetAccount fetches one account by account code
func (c *Client) GetAccount(ctx context.Context, code string) (*Account, error) {
	acct := c.NewAccount()
	acct.AccountCode = code
	if err := acct.Fetch(ctx); err != nil {
		return nil, err
	}
	return acct, nil
}

// GetSubscription fetches one subscription by uuid
func (c *Client) GetSubscription(ctx context.Context, uuid string) (*Subscription, error) {
	sub := c.NewSubscription()
	sub.UUID = uuid
	if err := sub.Fetch(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}

func (c *Client) send(ctx context.Context, method, uri string, body []byte, headers map[string]string) (*httpclient.Response, error) {
	return c.transport.Send(ctx, &httpclient.Request{
		Method:  method,
		URL:     uri,
		Headers: headers,
		Body:    body,
	})
}

func (c *Client) cachedPDF(ctx context.Context, href string) ([]byte, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	v, ok := c.cache.Get(ctx, cache.GenerateKey(cache.PrefixInvoicePDF, href))
	if !ok {
		return nil, false
	}
	pdf, ok := v.([]byte)
	return pdf, ok
}

func (c *Client) storePDF(ctx context.Context, href string, pdf []byte) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Set(ctx, cache.GenerateKey(cache.PrefixInvoicePDF, href), pdf, c.pdfTTL)
}

func (c *Client) evictPDF(ctx context.Context, href string) {
	if c == nil || c.cache == nil || href == "" {
		return
	}
	c.cache.Delete(ctx, cache.GenerateKey(cache.PrefixInvoicePDF, href))
}
