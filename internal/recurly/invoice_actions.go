package recurly

import (
	"context"
	"net/http"

	"github.com/flexprice/recurly-client/internal/httpclient"
	"github.com/flexprice/recurly-client/internal/xmlcodec"
)

const (
	actionRefund         = "refund"
	actionMarkSuccessful = "mark_successful"
	actionMarkFailed     = "mark_failed"
)

// FetchPDF downloads the invoice as a PDF document
func (inv *Invoice) FetchPDF(ctx context.Context) ([]byte, error) {
	if inv.Href == "" {
		return nil, ErrMissingHref
	}

	if pdf, ok := inv.client.cachedPDF(ctx, inv.Href); ok {
		return pdf, nil
	}

	resp, err := inv.get(ctx, inv.Href, map[string]string{
		httpclient.HeaderAccept: httpclient.ContentTypePDF,
	})
	if err != nil {
		if httpErr, ok := httpclient.IsHTTPError(err); ok && httpErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	inv.client.storePDF(ctx, inv.Href, resp.Body)
	return resp.Body, nil
}

// Refund refunds the invoice and merges the refund invoice returned by the api.
// opts may be nil.
func (inv *Invoice) Refund(ctx context.Context, opts *RefundOptions) (*Invoice, error) {
	uri := ResolveActionURI(inv.Actions, actionRefund, inv.Endpoint(), inv.InvoiceNumber)
	if uri == "" {
		return nil, missingInvoiceNumber("refund an invoice")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	body, err := xmlcodec.Encode(InvoiceSingular, opts.Fields())
	if err != nil {
		return nil, err
	}

	inv.log().Debugw("refunding invoice",
		"invoice_number", inv.InvoiceNumber,
		"uri", uri,
		"body", string(body))

	resp, err := inv.post(ctx, uri, body)
	if err := Classify(err, resp, http.StatusCreated); err != nil {
		return nil, err
	}
	return inv.applyResult(ctx, resp)
}

// MarkSuccessful marks a pending invoice as paid
func (inv *Invoice) MarkSuccessful(ctx context.Context) (*Invoice, error) {
	return inv.mark(ctx, actionMarkSuccessful, "mark invoice as successful")
}

// MarkFailed marks a pending invoice as failed
func (inv *Invoice) MarkFailed(ctx context.Context) (*Invoice, error) {
	return inv.mark(ctx, actionMarkFailed, "mark invoice as failed")
}

func (inv *Invoice) mark(ctx context.Context, action, desc string) (*Invoice, error) {
	uri := ResolveActionURI(inv.Actions, action, inv.Endpoint(), inv.InvoiceNumber)
	if uri == "" {
		return nil, missingInvoiceNumber(desc)
	}

	inv.log().Debugw("updating invoice",
		"invoice_number", inv.InvoiceNumber,
		"action", action,
		"uri", uri)

	resp, err := inv.put(ctx, uri, nil)
	if err := Classify(err, resp, http.StatusOK); err != nil {
		return nil, err
	}
	return inv.applyResult(ctx, resp)
}

func (inv *Invoice) applyResult(ctx context.Context, resp *httpclient.Response) (*Invoice, error) {
	previousHref := inv.Href
	if err := inv.inflate(resp.Body); err != nil {
		return nil, err
	}
	inv.client.evictPDF(ctx, previousHref)
	return inv, nil
}

// FetchAccount loads the account the invoice belongs to
func (inv *Invoice) FetchAccount(ctx context.Context) (*Account, error) {
	href := inv.Link("account")
	if href == "" {
		return nil, ErrNoAccountResource
	}
	if err := inv.bound(); err != nil {
		return nil, err
	}

	acct := inv.client.NewAccount()
	acct.Href = href
	if err := acct.Fetch(ctx); err != nil {
		return nil, err
	}
	return acct, nil
}

// FetchSubscriptions loads every subscription billed on the invoice and
// stores them on inv.Subscriptions.
func (inv *Invoice) FetchSubscriptions(ctx context.Context) ([]*Subscription, error) {
	uri := ResolveLinkURI(inv.Links, "subscriptions", inv.Href+"/subscriptions")
	if err := inv.bound(); err != nil {
		return nil, err
	}

	subs, err := fetchAll(ctx, inv.client, uri, nil, inv.client.NewSubscription)
	if err != nil {
		return nil, err
	}
	inv.Subscriptions = subs
	return subs, nil
}
