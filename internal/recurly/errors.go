package recurly

import (
	ierr "github.com/flexprice/recurly-client/internal/errors"
)

// Precondition failures. They are returned before any request is sent.
var (
	ErrMissingHref = ierr.NewError("cannot fetch a record without an href").
			WithHint("Fetch or list the resource first so its href is known").
			Mark(ierr.ErrInvalidOperation)

	ErrMissingInvoiceNumber = ierr.NewError("invoice_number is required").
				WithHint("Set the invoice number or load the invoice from the api first").
				Mark(ierr.ErrInvalidOperation)

	ErrNoAccountResource = ierr.NewError("No account resource available").
				WithHint("Load the invoice from the api so its account link is known").
				Mark(ierr.ErrInvalidOperation)
)

// ErrNotFound is returned by Invoice.FetchPDF when the api answers 404
var ErrNotFound = ierr.NewError("not_found").Mark(ierr.ErrNotFound)

// missingInvoiceNumber wraps ErrMissingInvoiceNumber with the refused action
func missingInvoiceNumber(action string) error {
	return ierr.WithError(ErrMissingInvoiceNumber).
		WithMessage("cannot " + action).
		Mark(ierr.ErrInvalidOperation)
}
