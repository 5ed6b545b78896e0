package recurly

import (
	"context"
	"time"

	"github.com/flexprice/recurly-client/internal/xmlcodec"
)

const (
	AccountSingular = "account"
	AccountPlural   = "accounts"
)

// Account is a customer, keyed by account code
type Account struct {
	Resource

	AccountCode         string     `json:"account_code,omitempty"`
	State               string     `json:"state,omitempty"`
	Username            string     `json:"username,omitempty"`
	Email               string     `json:"email,omitempty"`
	CCEmails            string     `json:"cc_emails,omitempty"`
	FirstName           string     `json:"first_name,omitempty"`
	LastName            string     `json:"last_name,omitempty"`
	CompanyName         string     `json:"company_name,omitempty"`
	VATNumber           string     `json:"vat_number,omitempty"`
	TaxExempt           bool       `json:"tax_exempt"`
	AcceptLanguage      string     `json:"accept_language,omitempty"`
	HasLiveSubscription bool       `json:"has_live_subscription"`
	HasPastDueInvoice   bool       `json:"has_past_due_invoice"`
	Address             *Address   `json:"address,omitempty"`
	CreatedAt           *time.Time `json:"created_at,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
	ClosedAt            *time.Time `json:"closed_at,omitempty"`
}

var accountSchema = schema[Account]{
	"account_code":          stringField(func(a *Account) *string { return &a.AccountCode }),
	"state":                 stringField(func(a *Account) *string { return &a.State }),
	"username":              stringField(func(a *Account) *string { return &a.Username }),
	"email":                 stringField(func(a *Account) *string { return &a.Email }),
	"cc_emails":             stringField(func(a *Account) *string { return &a.CCEmails }),
	"first_name":            stringField(func(a *Account) *string { return &a.FirstName }),
	"last_name":             stringField(func(a *Account) *string { return &a.LastName }),
	"company_name":          stringField(func(a *Account) *string { return &a.CompanyName }),
	"vat_number":            stringField(func(a *Account) *string { return &a.VATNumber }),
	"tax_exempt":            boolField(func(a *Account) *bool { return &a.TaxExempt }),
	"accept_language":       stringField(func(a *Account) *string { return &a.AcceptLanguage }),
	"has_live_subscription": boolField(func(a *Account) *bool { return &a.HasLiveSubscription }),
	"has_past_due_invoice":  boolField(func(a *Account) *bool { return &a.HasPastDueInvoice }),
	"address":               objectField(addressSchema, func(a *Account) **Address { return &a.Address }),
	"created_at":            timeField(func(a *Account) **time.Time { return &a.CreatedAt }),
	"updated_at":            timeField(func(a *Account) **time.Time { return &a.UpdatedAt }),
	"closed_at":             timeField(func(a *Account) **time.Time { return &a.ClosedAt }),
}

// Endpoint returns the account collection uri
func (a *Account) Endpoint() string {
	if a.client == nil {
		return ""
	}
	return a.client.Endpoint(AccountPlural)
}

// Merge copies every field present in p into a. On error a is unchanged.
func (a *Account) Merge(p *xmlcodec.Payload) error {
	if p == nil {
		return nil
	}

	next := *a
	next.Resource = a.Resource.clone()
	next.inflateLinks(p)
	if err := accountSchema.apply(&next, p.Fields); err != nil {
		return err
	}

	*a = next
	return nil
}

// Fetch reloads the account from its href, or from its account code
func (a *Account) Fetch(ctx context.Context) error {
	uri := a.Href
	if uri == "" && a.AccountCode != "" {
		uri = memberURI(a.Endpoint(), a.AccountCode)
	}
	if uri == "" {
		return ErrMissingHref
	}

	p, err := a.fetchPayload(ctx, uri)
	if err != nil {
		return err
	}
	return a.Merge(p)
}

// FetchInvoices loads every invoice of the account
func (a *Account) FetchInvoices(ctx context.Context) ([]*Invoice, error) {
	if err := a.bound(); err != nil {
		return nil, err
	}
	if a.Href == "" {
		return nil, ErrMissingHref
	}
	uri := ResolveLinkURI(a.Links, "invoices", a.Href+"/invoices")
	return fetchAll(ctx, a.client, uri, nil, a.client.NewInvoice)
}
