// Package recurly provides a public client for the invoice resource of a
// hypermedia XML billing api.
//
// Example usage:
//
//	client, err := recurly.New(recurly.Config{Subdomain: "acme", APIKey: key})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	inv, err := client.GetInvoice(ctx, "1010")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdf, err := inv.FetchPDF(ctx)
package recurly

import (
	"time"

	"github.com/flexprice/recurly-client/internal/cache"
	"github.com/flexprice/recurly-client/internal/config"
	"github.com/flexprice/recurly-client/internal/httpclient"
	"github.com/flexprice/recurly-client/internal/logger"
	"github.com/flexprice/recurly-client/internal/recurly"
)

// Re-export core types for public API
type (
	Client           = recurly.Client
	Invoice          = recurly.Invoice
	InvoiceState     = recurly.InvoiceState
	Account          = recurly.Account
	Subscription     = recurly.Subscription
	Address          = recurly.Address
	LineItem         = recurly.LineItem
	Transaction      = recurly.Transaction
	RefundOptions    = recurly.RefundOptions
	RefundLineItem   = recurly.RefundLineItem
	RefundMethod     = recurly.RefundMethod
	APIError         = recurly.APIError
	FieldError       = recurly.FieldError
	TransactionError = recurly.TransactionError
)

// Re-export invoice states
const (
	InvoiceStateOpen       = recurly.InvoiceStateOpen
	InvoiceStatePending    = recurly.InvoiceStatePending
	InvoiceStateProcessing = recurly.InvoiceStateProcessing
	InvoiceStateCollected  = recurly.InvoiceStateCollected
	InvoiceStatePaid       = recurly.InvoiceStatePaid
	InvoiceStateFailed     = recurly.InvoiceStateFailed
	InvoiceStatePastDue    = recurly.InvoiceStatePastDue
)

// Re-export refund methods
const (
	RefundMethodCreditFirst      = recurly.RefundMethodCreditFirst
	RefundMethodTransactionFirst = recurly.RefundMethodTransactionFirst
	RefundMethodAllCredit        = recurly.RefundMethodAllCredit
	RefundMethodAllTransaction   = recurly.RefundMethodAllTransaction
)

// Re-export precondition errors
var (
	ErrMissingHref          = recurly.ErrMissingHref
	ErrMissingInvoiceNumber = recurly.ErrMissingInvoiceNumber
	ErrNoAccountResource    = recurly.ErrNoAccountResource
	ErrNotFound             = recurly.ErrNotFound
)

// AsAPIError extracts the *APIError carried by err
func AsAPIError(err error) (*APIError, bool) {
	return recurly.AsAPIError(err)
}

// Config holds the settings needed to talk to one billing account.
// Zero values fall back to the library defaults.
type Config struct {
	Subdomain  string
	APIKey     string
	BaseURL    string
	APIVersion string
	PageSize   int

	Timeout   time.Duration
	RetryMax  *int
	RateLimit float64

	// CachePDFs keeps fetched PDFs in memory for PDFTTL
	CachePDFs bool
	PDFTTL    time.Duration

	// LogLevel is one of debug, info, warn or error
	LogLevel string
}

func (c Config) configuration() *config.Configuration {
	cfg := config.GetDefaultConfig()
	cfg.Recurly.Subdomain = c.Subdomain
	cfg.Recurly.APIKey = c.APIKey
	cfg.Recurly.BaseURL = c.BaseURL
	if c.APIVersion != "" {
		cfg.Recurly.APIVersion = c.APIVersion
	}
	if c.PageSize > 0 {
		cfg.Recurly.PageSize = c.PageSize
	}
	if c.Timeout > 0 {
		cfg.HTTP.Timeout = c.Timeout
	}
	if c.RetryMax != nil {
		cfg.HTTP.RetryMax = *c.RetryMax
	}
	if c.RateLimit > 0 {
		cfg.HTTP.RateLimit = c.RateLimit
	}
	cfg.Cache.Enabled = c.CachePDFs
	if c.PDFTTL > 0 {
		cfg.Cache.PDFTTL = c.PDFTTL
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
	return cfg
}

// New validates cfg and builds a client
func New(c Config) (*Client, error) {
	cfg := c.configuration()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	transport := httpclient.NewDefaultClient(cfg, log)
	return recurly.NewClient(cfg, transport, cache.NewInMemoryCache(cfg), log), nil
}
